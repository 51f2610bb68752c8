// Copyright (C) 2025, Hyperbridge Labs, Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package utils holds small helpers shared across the messenger packages.
package utils

import (
	"strings"
)

// SanitizeHexString removes the optional "0x" prefix from a hex string.
func SanitizeHexString(s string) string {
	return strings.TrimPrefix(s, "0x")
}

// IsHexHash reports whether s is a 32-byte hex string, with or without the
// "0x" prefix.
func IsHexHash(s string) bool {
	s = SanitizeHexString(s)
	if len(s) != 64 {
		return false
	}
	for _, c := range s {
		switch {
		case c >= '0' && c <= '9':
		case c >= 'a' && c <= 'f':
		case c >= 'A' && c <= 'F':
		default:
			return false
		}
	}
	return true
}
