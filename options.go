package audiotag

// Option configures how files are read.
//
// Example:
//
//	tag := audiotag.Read("track01.aac", audiotag.WithFormat(audiotag.FormatAAC))
type Option func(*readOptions)

type readOptions struct {
	// format forces the extractor; FormatUnknown picks by name, then content.
	format Format

	// concurrency limits ReadMany workers; 0 means runtime.NumCPU().
	concurrency int

	progress func(path string, tag *Tag)
}

func defaultOptions() *readOptions {
	return &readOptions{
		format: FormatUnknown,
	}
}

func applyOptions(opts []Option) *readOptions {
	options := defaultOptions()
	for _, opt := range opts {
		opt(options)
	}
	return options
}

// WithFormat forces the extractor used for a file, bypassing detection
// by file name and content.
//
// Example:
//
//	tag := audiotag.Read("stream.bin", audiotag.WithFormat(audiotag.FormatAAC))
func WithFormat(format Format) Option {
	return func(o *readOptions) {
		o.format = format
	}
}

// WithConcurrency limits how many files ReadMany extracts at once.
// Values below 1 select runtime.NumCPU().
func WithConcurrency(n int) Option {
	return func(o *readOptions) {
		o.concurrency = n
	}
}

// WithProgress registers a callback that ReadMany invokes once per file,
// after the file has been read. tag is nil when the file has no metadata.
//
// Calls are serialized, so fn needs no locking of its own.
func WithProgress(fn func(path string, tag *Tag)) Option {
	return func(o *readOptions) {
		o.progress = fn
	}
}
