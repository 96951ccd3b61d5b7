// Package logger provides structured logging for the Douyin harvester.
//
// It wraps zerolog behind a small interface so components can be handed a
// TestLogger or a no-op logger in tests.
//
// Basic Usage:
//
//	err := logger.Initialize(&cfg.Logging)
//
//	runID := logger.NewRunID()
//	log := logger.ForRun(logger.GetLogger(), runID, secUserID)
//	log.Info("Harvest started")
//	log.WithError(err).Error("Page request failed")
//
// Console output is colored and goes to stderr. When a log file is
// configured every line is also appended to it.
package logger
