// Package id provides short identifier generation for log correlation.
package id

import (
	"crypto/rand"
	"encoding/hex"
)

// Short generates a random 16-character hex ID.
func Short() string {
	b := make([]byte, 8)
	_, _ = rand.Read(b)
	return hex.EncodeToString(b)
}

// Prefixed generates a Short ID under a type prefix, e.g. "req_a1b2...".
func Prefixed(prefix string) string {
	return prefix + "_" + Short()
}
