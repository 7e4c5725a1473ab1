package server

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConfig_Addr(t *testing.T) {
	assert.Equal(t, ":8080", Config{Port: "8080"}.Addr())
	assert.Equal(t, ":9000", Config{Port: "9000", Enabled: true}.Addr())
}
