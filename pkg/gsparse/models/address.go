package models

import (
	"fmt"
	"strconv"
	"strings"
)

// ColumnName converts a 1-based column number to its letter form (1 -> A, 27 -> AA).
func ColumnName(column int) (string, error) {
	if column < 1 {
		return "", fmt.Errorf("%w: column %d", ErrInvalidCoordinate, column)
	}

	var buf [16]byte
	i := len(buf)
	for column > 0 {
		column--
		i--
		buf[i] = byte('A' + column%26)
		column /= 26
	}
	return string(buf[i:]), nil
}

// ColumnNumber converts column letters (case-insensitive) to a 1-based number.
func ColumnNumber(name string) (int, error) {
	if name == "" {
		return 0, fmt.Errorf("%w: empty column name", ErrInvalidAddress)
	}

	n := 0
	for i := 0; i < len(name); i++ {
		c := name[i]
		switch {
		case c >= 'A' && c <= 'Z':
			n = n*26 + int(c-'A') + 1
		case c >= 'a' && c <= 'z':
			n = n*26 + int(c-'a') + 1
		default:
			return 0, fmt.Errorf("%w: %q", ErrInvalidAddress, name)
		}
		if n < 0 {
			return 0, fmt.Errorf("%w: column %q overflows", ErrInvalidAddress, name)
		}
	}
	return n, nil
}

// EncodeAddress returns the A1-style label for a 1-based row and column.
func EncodeAddress(row, column int) (string, error) {
	if row < 1 {
		return "", fmt.Errorf("%w: row %d", ErrInvalidCoordinate, row)
	}
	col, err := ColumnName(column)
	if err != nil {
		return "", err
	}
	return col + strconv.Itoa(row), nil
}

// DecodeAddress parses an A1-style label into its 1-based row and column.
// Letters are case-insensitive; anything other than letters followed by
// digits is rejected.
func DecodeAddress(label string) (row, column int, err error) {
	split := strings.IndexFunc(label, func(r rune) bool {
		return !(r >= 'A' && r <= 'Z' || r >= 'a' && r <= 'z')
	})
	if split <= 0 || split == len(label) {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, label)
	}

	letters, digits := label[:split], label[split:]
	for i := 0; i < len(digits); i++ {
		if digits[i] < '0' || digits[i] > '9' {
			return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, label)
		}
	}

	row, err = strconv.Atoi(digits)
	if err != nil || row < 1 {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, label)
	}
	column, err = ColumnNumber(letters)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidAddress, label)
	}
	return row, column, nil
}
