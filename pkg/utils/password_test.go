package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHashAndCheckPassword(t *testing.T) {
	h := HashPassword("Passw0rd!")
	assert.NotEqual(t, "Passw0rd!", h)
	assert.True(t, CheckPassword("Passw0rd!", h))
	assert.False(t, CheckPassword("wrong", h))
}

func TestHashPasswordSalted(t *testing.T) {
	assert.NotEqual(t, HashPassword("same"), HashPassword("same"))
}

func TestNewID(t *testing.T) {
	a, b := NewID(), NewID()
	assert.Len(t, a, 36)
	assert.NotEqual(t, a, b)
}
