// Package audiotag extracts a small, normalized metadata record from audio
// files: artist, album, title, track number and playing time.
//
// # Quick Start
//
//	tag := audiotag.Read("song.flac")
//	if tag == nil {
//		return // unreadable, unsupported, or nothing to report
//	}
//	fmt.Printf("%s - %s (%ds)\n", tag.Artist, tag.Title, tag.Time)
//
// # Supported Formats
//
//   - AAC: ADTS and ADIF streams; duration from the bitstream, text from ID3
//   - MP4/M4A/M4B: iTunes metadata atoms, duration from the audio track
//   - Ogg Vorbis: Vorbis comments, duration from the last granule position
//   - FLAC: Vorbis comments and STREAMINFO
//   - MP3: ID3v1 and ID3v2 tags, duration from the MPEG frames
//   - WAV/AIFF: duration only
//
// Where a container carries no usable text, AAC, MP4 and FLAC fall back to an
// ID3 tag stored in the same file. Fields found in the container always win.
//
// # Absence
//
// Read returns nil rather than an error. A nil result means the file could
// not be opened, was not recognized, or held neither tags nor a duration.
// ReadDetailed reports which:
//
//	tag, err := audiotag.ReadDetailed(path)
//	switch {
//	case errors.Is(err, audiotag.ErrNoMetadata):
//		// recognized, but empty
//	case errors.As(err, new(*audiotag.UnsupportedFormatError)):
//		// no extractor for this file
//	}
//
// A record whose duration could not be determined has Time set to
// UnknownTime.
//
// # Concurrency
//
// Extractions share no state, so files may be read from any number of
// goroutines. ReadMany does this for a batch, preserving input order:
//
//	tags, err := audiotag.ReadMany(ctx, paths, audiotag.WithConcurrency(8))
//
// While an extraction runs, SIGINT and SIGTERM are held back and delivered
// once it completes, so an interrupted process never leaves a half-read file
// handle behind.
package audiotag
