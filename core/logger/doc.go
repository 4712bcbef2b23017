// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance for development (console) and
// production (json) output, plus a helper that tags entries with the RayID of the
// current Fiber request.
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Server started")
//
//	// In a request handler:
//	l := logger.WithRayID(log, c)
//	l.Error("Node submission failed", zap.Error(err))
package logger
