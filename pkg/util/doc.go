// Package util provides small shared helpers used across remoted packages,
// currently body truncation for safe logging.
package util
