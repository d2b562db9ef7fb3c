package aac

import (
	"fmt"
	"io"
	"os"

	"github.com/simonhull/audiotag/internal/id3"
	"github.com/simonhull/audiotag/internal/merge"
	"github.com/simonhull/audiotag/internal/registry"
	"github.com/simonhull/audiotag/internal/sigguard"
	"github.com/simonhull/audiotag/internal/types"
)

func init() {
	registry.Register(types.FormatAAC, &Extractor{Fallback: id3.Reader{}})
}

// Extractor reads raw AAC files. Text fields come from the ID3 tag only;
// a file whose duration cannot be determined yields no record at all.
type Extractor struct {
	Fallback id3.TagReader
}

// Extract implements registry.Extractor.
func (e *Extractor) Extract(path string) (*types.Tag, error) {
	release := sigguard.Hold()
	defer release()

	seconds, err := FileDuration(path)
	if err != nil {
		return nil, err
	}

	var fallback *types.Tag
	if e.Fallback != nil {
		fallback = e.Fallback.ReadTag(path)
	}
	return merge.WithTime(fallback, types.Seconds(seconds)), nil
}

// FileDuration opens path and returns its duration in seconds.
func FileDuration(path string) (float64, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, err
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return 0, err
	}

	d, err := Duration(f, info.Size())
	if err != nil {
		return 0, fmt.Errorf("%s: %w", path, err)
	}
	return d, nil
}

// Duration returns the duration of the AAC stream in r, which is size bytes
// long. A leading ID3v2 tag is skipped.
func Duration(r io.ReadSeeker, size int64) (float64, error) {
	start, err := skipID3(r)
	if err != nil {
		return 0, err
	}

	s := newScanner(r, start, bufferSize)
	if err := s.refill(); err != nil {
		return 0, err
	}

	head := s.window()
	switch {
	case IsADTS(head):
		info, err := scanADTS(s)
		if err != nil {
			return 0, err
		}
		if d, ok := info.Duration(); ok {
			return d, nil
		}
		return 0, fmt.Errorf("%w: ADTS duration unknown (%d frames, sample rate %d)",
			types.ErrNoMetadata, info.Frames, info.SampleRate)

	case IsADIF(head):
		info, err := ParseADIF(head, size)
		if err != nil {
			return 0, &types.CorruptedFileError{Reason: err.Error(), Offset: start}
		}
		if d, ok := info.Duration(); ok {
			return d, nil
		}
		return 0, fmt.Errorf("%w: ADIF bitrate is zero", types.ErrNoMetadata)
	}

	return 0, &types.UnsupportedFormatError{Reason: "no ADTS sync word or ADIF header"}
}

// skipID3 positions r after a leading ID3v2 tag and returns the new offset.
func skipID3(r io.ReadSeeker) (int64, error) {
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return 0, err
	}

	var header [10]byte
	n, err := io.ReadFull(r, header[:])
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return 0, err
	}

	start := int64(0)
	if size, ok := id3.HeaderSize(header[:n]); ok {
		start = size
	}
	if _, err := r.Seek(start, io.SeekStart); err != nil {
		return 0, err
	}
	return start, nil
}
