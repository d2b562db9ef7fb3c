// Package m4a extracts tags from MP4 audio files (M4A, M4B).
package m4a

import (
	"fmt"

	"github.com/simonhull/audiotag/internal/binary"
	"github.com/simonhull/audiotag/internal/types"
)

// Atom represents an MP4 atom (box)
type Atom struct {
	Size     uint64 // Total size including header
	Type     string // 4-character type code
	Offset   int64  // Position in file
	Extended bool   // Whether this uses 64-bit extended size
}

// DataSize returns the size of the atom's data (excluding header)
func (a *Atom) DataSize() uint64 {
	headerSize := uint64(8)
	if a.Extended {
		headerSize = 16
	}
	if a.Size < headerSize {
		return 0
	}
	return a.Size - headerSize
}

// DataOffset returns the file offset where the atom's data starts
func (a *Atom) DataOffset() int64 {
	headerSize := int64(8)
	if a.Extended {
		headerSize = 16
	}
	return a.Offset + headerSize
}

// End returns the file offset just past the atom.
func (a *Atom) End() int64 {
	return a.Offset + int64(a.Size)
}

// readAtomHeader reads an atom header at the given offset
func readAtomHeader(sr *binary.SafeReader, offset int64) (*Atom, error) {
	size32, err := binary.Read[uint32](sr, offset, "atom size")
	if err != nil {
		return nil, err
	}

	typeBytes := make([]byte, 4)
	if err := sr.ReadAt(typeBytes, offset+4, "atom type"); err != nil {
		return nil, err
	}

	atom := &Atom{
		Type:   string(typeBytes),
		Offset: offset,
	}

	// size == 1 means a 64-bit size follows the type
	if size32 == 1 {
		size64, err := binary.Read[uint64](sr, offset+8, "extended atom size")
		if err != nil {
			return nil, err
		}
		atom.Size = size64
		atom.Extended = true
	} else {
		atom.Size = uint64(size32)
	}

	if atom.Size < 8 {
		return nil, &types.CorruptedFileError{
			Path:   sr.Path(),
			Offset: offset,
			Reason: fmt.Sprintf("invalid atom size %d (minimum is 8)", atom.Size),
		}
	}

	return atom, nil
}

// eachAtom calls fn for every atom in [start, end) until fn returns false.
func eachAtom(sr *binary.SafeReader, start, end int64, fn func(*Atom) bool) error {
	for offset := start; offset < end; {
		atom, err := readAtomHeader(sr, offset)
		if err != nil {
			return err
		}
		if !fn(atom) {
			return nil
		}
		offset = atom.End()
	}
	return nil
}

// findAtom searches for an atom of the given type within a range
// Returns the first matching atom or an error if not found
func findAtom(sr *binary.SafeReader, start, end int64, atomType string) (*Atom, error) {
	var found *Atom
	err := eachAtom(sr, start, end, func(a *Atom) bool {
		if a.Type == atomType {
			found = a
			return false
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	if found == nil {
		return nil, fmt.Errorf("atom '%s' not found", atomType)
	}
	return found, nil
}

// findPath descends through a chain of nested atoms starting inside parent.
func findPath(sr *binary.SafeReader, parent *Atom, path ...string) (*Atom, error) {
	atom := parent
	for _, typ := range path {
		child, err := findAtom(sr, atom.DataOffset(), atom.End(), typ)
		if err != nil {
			return nil, err
		}
		atom = child
	}
	return atom, nil
}
