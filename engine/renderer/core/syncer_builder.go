package core

import "log/slog"

// SyncerBuilderOption is a functional option used to configure a Syncer during construction.
type SyncerBuilderOption func(*syncer)

// WithSyncLogger sets the logger task failures are reported to.
//
// Parameters:
//   - logger: the logger; nil keeps slog.Default()
//
// Returns:
//   - SyncerBuilderOption: a function that sets the logger
func WithSyncLogger(logger *slog.Logger) SyncerBuilderOption {
	return func(s *syncer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithSyncQueueSize sets how many tasks can be pending before Submit blocks.
//
// Parameters:
//   - size: the queue size; values below 1 keep DefaultSyncQueueSize
//
// Returns:
//   - SyncerBuilderOption: a function that sets the queue size
func WithSyncQueueSize(size int) SyncerBuilderOption {
	return func(s *syncer) {
		if size > 0 {
			s.queueSize = size
		}
	}
}
