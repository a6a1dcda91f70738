package core

import (
	"log/slog"

	"github.com/Carmen-Shannon/oxy-params/engine/renderer/gpuparams"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/technique"
)

// MaterialBuilderOption is a functional option used to configure a Material during construction.
type MaterialBuilderOption func(*coreMaterial)

// WithTechniques appends techniques in order. Nil techniques are skipped.
//
// Parameters:
//   - techniques: the techniques
//
// Returns:
//   - MaterialBuilderOption: a function that appends the techniques
func WithTechniques(techniques ...technique.Technique) MaterialBuilderOption {
	return func(m *coreMaterial) {
		for _, t := range techniques {
			if t != nil {
				m.techniques = append(m.techniques, t)
			}
		}
	}
}

// WithParamsSetCacheSize sets how many params sets the material keeps built. Evicted sets release their
// block buffers.
//
// Parameters:
//   - size: the cache size; values below 1 keep the default
//
// Returns:
//   - MaterialBuilderOption: a function that sets the cache size
func WithParamsSetCacheSize(size int) MaterialBuilderOption {
	return func(m *coreMaterial) {
		if size > 0 {
			m.cacheSize = size
		}
	}
}

// WithLogger sets the logger passed to the material's params sets.
func WithLogger(logger *slog.Logger) MaterialBuilderOption {
	return func(m *coreMaterial) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithRecorder reports the writes of every params set update to r, typically a *profiler.Profiler.
//
// Parameters:
//   - r: the recorder
//
// Returns:
//   - MaterialBuilderOption: a function that sets the recorder
func WithRecorder(r gpuparams.UpdateRecorder) MaterialBuilderOption {
	return func(m *coreMaterial) {
		m.recorder = r
	}
}
