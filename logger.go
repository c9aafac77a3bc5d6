package gpucanvas

import (
	"log/slog"

	"github.com/gogpu/gpucanvas/internal/logging"
)

// SetLogger configures the logger for gpucanvas and all its sub-packages.
// By default, gpucanvas produces no log output. Call SetLogger to enable
// logging.
//
// SetLogger is safe for concurrent use: it stores the new logger atomically.
// Pass nil to disable logging (restore default silent behavior).
//
// Log levels used by gpucanvas:
//   - [slog.LevelDebug]: op combination, program compiles, mask uploads,
//     skipped draws
//   - [slog.LevelInfo]: context and device lifecycle
//   - [slog.LevelWarn]: non-fatal failures (compile errors, texture
//     allocation, render passes)
//
// Example:
//
//	// Enable info-level logging to stderr:
//	gpucanvas.SetLogger(slog.Default())
//
//	// Enable debug-level logging for full diagnostics:
//	gpucanvas.SetLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
//	    Level: slog.LevelDebug,
//	})))
func SetLogger(l *slog.Logger) {
	logging.Set(l)
}

// Logger returns the current logger used by gpucanvas.
// Sub-packages (ops, program, backend/...) share the same logger
// configuration without introducing import cycles.
//
// Logger is safe for concurrent use.
func Logger() *slog.Logger {
	return logging.Logger()
}
