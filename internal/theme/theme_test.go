package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestAvailable(t *testing.T) {
	assert.Equal(t, []string{"dark", "light", "sepia"}, Available())
}

func TestKnown(t *testing.T) {
	assert.True(t, Known("dark"))
	assert.True(t, Known("sepia"))
	assert.False(t, Known("neon"))
	assert.False(t, Known(""))
}

func TestGet(t *testing.T) {
	for _, name := range Available() {
		css := Get(name)
		assert.NotEmpty(t, css, "theme %s has no stylesheet", name)
		assert.Contains(t, css, "body")
	}
}

func TestGet_UnknownFallsBackToDefault(t *testing.T) {
	assert.Equal(t, Get(Default), Get("no-such-theme"))
}

func TestGet_Memoizes(t *testing.T) {
	first := Get("light")
	second := Get("light")
	assert.Equal(t, first, second)
}
