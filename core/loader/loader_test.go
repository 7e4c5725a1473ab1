package loader

import (
	"errors"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubFeature struct {
	name    string
	enabled bool
	err     error
	loaded  bool
}

func (s *stubFeature) Name() string    { return s.name }
func (s *stubFeature) IsEnabled() bool { return s.enabled }
func (s *stubFeature) Load(fiber.Router) error {
	s.loaded = true
	return s.err
}

func TestManager_LoadAll(t *testing.T) {
	on := &stubFeature{name: "status", enabled: true}
	off := &stubFeature{name: "off"}

	m := NewManager(zap.NewNop())
	m.Register(on)
	m.Register(off)

	assert.NoError(t, m.LoadAll(fiber.New()))
	assert.True(t, on.loaded)
	assert.False(t, off.loaded)
}

func TestManager_LoadAllError(t *testing.T) {
	broken := &stubFeature{name: "broken", enabled: true, err: errors.New("boom")}
	after := &stubFeature{name: "after", enabled: true}

	m := NewManager(zap.NewNop())
	m.Register(broken)
	m.Register(after)

	err := m.LoadAll(fiber.New())
	assert.EqualError(t, err, "failed to load feature broken: boom")
	assert.False(t, after.loaded)
}
