// Package logging provides structured logging configuration for remoted.
//
// It wraps log/slog so every component logs through the same configuration:
//
//	logger := logging.New(logging.Config{
//	    Level:  logging.ParseLevel("debug"),
//	    Format: logging.FormatText,
//	})
//	logger.Info("server started", "port", 4270)
//
// Subsystems take a *slog.Logger and tag it via logging.Component; code that
// needs a logger but has none configured uses logging.Nop.
package logging
