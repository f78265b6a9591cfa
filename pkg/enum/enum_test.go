package enum

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestToEnum(t *testing.T) {
	type Color string

	red := New(Color("red"))
	blue := New(Color("blue"))
	New(Color("red"))

	v, err := ToEnum[Color]("blue")
	require.NoError(t, err)
	require.Equal(t, blue, v)

	_, err = ToEnum[Color]("green")
	require.Error(t, err)

	require.Equal(t, []Color{red, blue}, Values[Color]())

	type Unknown string
	_, err = ToEnum[Unknown]("red")
	require.Error(t, err)
	require.Empty(t, Values[Unknown]())
}
