// Package logger provides a structured logging interface for matchharvest.
//
// It wraps the zerolog library to provide:
// - Multiple log levels (Debug, Info, Warn, Error)
// - Structured logging with fields
// - Pretty console output with colors
// - Optional file output alongside the console
// - Global logger instance for easy access
//
// Basic Usage:
//
//	import "matchharvest/pkg/logger"
//
//	err := logger.Initialize(&logger.Config{
//	    Level: "info",
//	    File:  "/var/log/matchharvest.log",
//	})
//
//	logger.Info("Application started")
//	logger.WithField("seq_num", 5000).Info("Resuming crawl")
//	logger.WithError(err).Error("Failed to flush dataset")
//
// Components receive a Logger in their constructors and fall back to
// GetLogger when none is given. Tests use NewTestLogger to assert on what
// was logged, or NewNopLogger to discard it.
package logger
