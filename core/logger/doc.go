// Package logger provides structured logging built on Go's standard slog package.
//
// Loggers are constructed explicitly with New and passed to the components that
// need them. There is no package-level logger to reconfigure.
//
//	log := logger.New(
//		logger.WithLevel(logger.ParseLevel(os.Getenv("LOGLEVEL"))),
//		logger.WithOutput(os.Stdout),
//	)
//
//	log.Info("Renewal not needed", logger.Domain("example.com"), logger.DaysLeft(42))
//
// # Formats
//
// The default line format prints one record per line:
//
//	[INFO] 2026-10-17 09:30:00, lifecycle.(*Coordinator).Run, Renewal not needed domain=example.com days_left=42
//
// The second field is the function that emitted the record. WithJSONFormatter
// switches to slog's JSON handler with source information enabled.
//
// # Attribute Helpers
//
// Attribute helpers return an empty slog.Attr for nil or empty input, so they
// can be passed unconditionally:
//
//	log.Error("Provisioning failed", logger.Error(err), logger.Component("letsencrypt"))
package logger
