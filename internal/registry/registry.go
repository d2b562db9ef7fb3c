// Package registry manages the format-specific metadata extractors.
package registry

import (
	"sync"

	"github.com/simonhull/audiotag/internal/types"
)

// Extractor is the interface all format extractors implement.
type Extractor interface {
	// Extract reads the metadata record for the file at path.
	// A nil Tag with a nil error means the file holds nothing to report.
	// A non-nil error explains why; callers may treat it as absence.
	Extract(path string) (*types.Tag, error)
}

var (
	mu         sync.RWMutex
	extractors = make(map[types.Format]Extractor)
)

// Register registers an extractor for a format, replacing any previous one.
// This is called by format packages during initialization (init functions).
func Register(format types.Format, e Extractor) {
	mu.Lock()
	defer mu.Unlock()
	extractors[format] = e
}

// Get returns the extractor for a given format.
// Returns nil if no extractor is registered for the format.
func Get(format types.Format) Extractor {
	mu.RLock()
	defer mu.RUnlock()
	return extractors[format]
}

// Formats returns the formats that currently have an extractor.
func Formats() []types.Format {
	mu.RLock()
	defer mu.RUnlock()
	var out []types.Format
	for _, f := range types.Formats() {
		if _, ok := extractors[f]; ok {
			out = append(out, f)
		}
	}
	return out
}
