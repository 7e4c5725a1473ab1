// Package database handles database connections and schema inspection.
//
// It wraps GORM to configure a Postgres connection pool (or SQLite for local runs and tests)
// from the application's configuration. The pool is explicitly owned: Connect creates it,
// the caller passes it to the components that need it, and Close tears it down.
//
// # Schema Inspection
//
// GetTableColumns and MissingColumns read the live schema so the migrate command can verify
// that every table the update pipeline writes to has the columns it expects.
//
// # Usage
//
//	db, err := database.Connect(cfg.Database)
//	if err != nil {
//	    return err
//	}
//	defer database.Close(db)
//
//	missing, err := database.MissingColumns(db, "movie", []string{"the_movie_db_id", "title"})
package database
