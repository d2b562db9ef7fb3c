package audiotag

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/simonhull/audiotag/internal/registry"

	// Register the format extractors.
	_ "github.com/simonhull/audiotag/internal/aac"
	_ "github.com/simonhull/audiotag/internal/flac"
	_ "github.com/simonhull/audiotag/internal/generic"
	_ "github.com/simonhull/audiotag/internal/m4a"
	_ "github.com/simonhull/audiotag/internal/mp3"
	_ "github.com/simonhull/audiotag/internal/ogg"
)

// Read extracts the metadata record of the audio file at path.
//
// It returns nil when the file cannot be opened, is not a supported format,
// or holds neither tags nor a duration. Use ReadDetailed to learn why.
//
// Example:
//
//	tag := audiotag.Read("song.flac")
//	if tag == nil {
//		return
//	}
//	fmt.Printf("%s - %s (%ds)\n", tag.Artist, tag.Title, tag.Time)
func Read(path string, opts ...Option) *Tag {
	tag, _ := ReadDetailed(path, opts...)
	return tag
}

// ReadDetailed is like Read but reports why no record was produced.
//
// Exactly one of the results is non-nil. The error is ErrNoMetadata when the
// extractor found nothing, an *UnsupportedFormatError when no extractor
// handles the file, or a wrapped extractor error otherwise.
func ReadDetailed(path string, opts ...Option) (*Tag, error) {
	options := applyOptions(opts)
	return read(path, options)
}

func read(path string, options *readOptions) (*Tag, error) {
	format, err := resolveFormat(path, options.format)
	if err != nil {
		return nil, err
	}

	extractor := registry.Get(format)
	if extractor == nil {
		return nil, &UnsupportedFormatError{
			Path:   path,
			Reason: fmt.Sprintf("no extractor available for format %s", format),
		}
	}

	tag, err := extractor.Extract(path)
	if err != nil {
		if errors.Is(err, ErrNoMetadata) {
			return nil, err
		}
		return nil, fmt.Errorf("extract %s: %w", format, err)
	}
	if tag == nil {
		return nil, ErrNoMetadata
	}
	return tag, nil
}

// resolveFormat picks the extractor format: forced, then by suffix, then by
// magic bytes.
func resolveFormat(path string, forced Format) (Format, error) {
	if forced != FormatUnknown {
		return forced, nil
	}
	if format := FormatFromExtension(path); format != FormatUnknown {
		return format, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return FormatUnknown, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	stat, err := f.Stat()
	if err != nil {
		return FormatUnknown, fmt.Errorf("stat file: %w", err)
	}
	return DetectFormat(f, stat.Size(), path)
}

// ReadMany reads multiple audio files concurrently.
//
// Results are returned in the same order as the input paths. A file with no
// metadata leaves a nil entry; it is not an error. The only error is the
// context's, in which case no results are returned.
//
// Example:
//
//	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
//	defer cancel()
//
//	tags, err := audiotag.ReadMany(ctx, paths, audiotag.WithConcurrency(4))
//	if err != nil {
//		log.Fatal(err)
//	}
//	for i, tag := range tags {
//		if tag != nil {
//			fmt.Printf("%s: %s\n", paths[i], tag.Title)
//		}
//	}
func ReadMany(ctx context.Context, paths []string, opts ...Option) ([]*Tag, error) {
	if len(paths) == 0 {
		return nil, nil
	}

	options := applyOptions(opts)
	limit := options.concurrency
	if limit < 1 {
		limit = runtime.NumCPU()
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(limit)

	results := make([]*Tag, len(paths))
	var progressMu sync.Mutex

	for i, path := range paths {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			select {
			case <-gctx.Done():
				return gctx.Err()
			default:
			}

			tag, _ := read(path, options)
			results[i] = tag

			if options.progress != nil {
				progressMu.Lock()
				options.progress(path, tag)
				progressMu.Unlock()
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	// The loop may have stopped scheduling without any goroutine noticing.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return results, nil
}
