package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenStore(t *testing.T) {
	s := NewTokenStore("initial")
	assert.Equal(t, "initial", s.Token())

	s.Set("rotated")
	assert.Equal(t, "rotated", s.Token())

	s.Clear()
	assert.Empty(t, s.Token())
}
