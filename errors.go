package audiotag

import (
	"github.com/simonhull/audiotag/internal/types"
)

// ErrNoMetadata is returned by ReadDetailed when the extractor for a file ran
// but found neither tags nor a duration.
var ErrNoMetadata = types.ErrNoMetadata

// OutOfBoundsError is an alias to types.OutOfBoundsError.
type OutOfBoundsError = types.OutOfBoundsError

// UnsupportedFormatError is an alias to types.UnsupportedFormatError.
// ReadDetailed returns it when no extractor handles a file.
type UnsupportedFormatError = types.UnsupportedFormatError

// CorruptedFileError is an alias to types.CorruptedFileError.
type CorruptedFileError = types.CorruptedFileError
