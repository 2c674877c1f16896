package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestColorHexResolvesNamesLabelsAndHex(t *testing.T) {
	assert.Equal(t, "#45B7D1", ColorHex("blue"))
	assert.Equal(t, "#45B7D1", ColorHex("Blue"))
	assert.Equal(t, "#45B7D1", ColorHex("파란색"))
	assert.Equal(t, "#45B7D1", ColorHex("#45b7d1"))
	assert.Equal(t, DefaultColor.Hex, ColorHex("magenta"))
	assert.Equal(t, DefaultColor.Hex, ColorHex(""))
}

func TestColorNameRoundTrip(t *testing.T) {
	for _, c := range Palette {
		assert.Equal(t, c.Hex, ColorHex(ColorName(c.Hex)))
	}
	assert.Equal(t, DefaultColor.Name, ColorName("#000000"))
}

func TestEventSortFieldValid(t *testing.T) {
	assert.True(t, EventSortTitle.Valid())
	assert.False(t, EventSortField("id").Valid())
}
