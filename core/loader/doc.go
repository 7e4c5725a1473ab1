// Package loader registers the features that contribute routes to the HTTP
// surface.
//
// Each feature implements Feature:
//
//	type Feature interface {
//	    Name() string
//	    IsEnabled() bool
//	    Load(app fiber.Router) error
//	}
//
// The Manager keeps the registry and loads the enabled features in
// registration order with LoadAll.
package loader
