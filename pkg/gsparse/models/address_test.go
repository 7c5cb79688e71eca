package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeAddress(t *testing.T) {
	tests := []struct {
		row, col int
		expected string
	}{
		{1, 1, "A1"},
		{3, 2, "B3"},
		{10, 26, "Z10"},
		{1, 27, "AA1"},
		{7, 52, "AZ7"},
		{1, 53, "BA1"},
		{1, 702, "ZZ1"},
		{1, 703, "AAA1"},
		{1048576, 16384, "XFD1048576"},
	}

	for _, tt := range tests {
		result, err := EncodeAddress(tt.row, tt.col)
		require.NoError(t, err)
		assert.Equal(t, tt.expected, result, "EncodeAddress(%d, %d)", tt.row, tt.col)
	}
}

func TestEncodeAddress_InvalidCoordinate(t *testing.T) {
	for _, tc := range [][2]int{{0, 1}, {1, 0}, {-1, 5}, {5, -3}} {
		_, err := EncodeAddress(tc[0], tc[1])
		assert.ErrorIs(t, err, ErrInvalidCoordinate, "EncodeAddress(%d, %d)", tc[0], tc[1])
	}
}

func TestDecodeAddress(t *testing.T) {
	tests := []struct {
		label    string
		row, col int
	}{
		{"A1", 1, 1},
		{"b3", 3, 2},
		{"Aa1", 1, 27},
		{"AZ10", 10, 52},
		{"XFD1048576", 1048576, 16384},
	}

	for _, tt := range tests {
		row, col, err := DecodeAddress(tt.label)
		require.NoError(t, err, tt.label)
		assert.Equal(t, tt.row, row, "row of %q", tt.label)
		assert.Equal(t, tt.col, col, "column of %q", tt.label)
	}
}

func TestDecodeAddress_Invalid(t *testing.T) {
	for _, label := range []string{"", "A", "123", "1A", "A1B", "A-1", "A0", " A1", "A1 ", "$A$1", "Ä1"} {
		_, _, err := DecodeAddress(label)
		assert.ErrorIs(t, err, ErrInvalidAddress, "DecodeAddress(%q)", label)
	}
}

func TestAddressRoundTrip(t *testing.T) {
	for row := 1; row <= 60; row += 7 {
		for col := 1; col <= 20000; col += 37 {
			label, err := EncodeAddress(row, col)
			require.NoError(t, err)
			r, c, err := DecodeAddress(label)
			require.NoError(t, err)
			require.Equal(t, []int{row, col}, []int{r, c}, label)
		}
	}
}

func TestColumnName(t *testing.T) {
	name, err := ColumnName(28)
	require.NoError(t, err)
	assert.Equal(t, "AB", name)

	n, err := ColumnNumber("ab")
	require.NoError(t, err)
	assert.Equal(t, 28, n)

	_, err = ColumnNumber("A1")
	assert.ErrorIs(t, err, ErrInvalidAddress)
}
