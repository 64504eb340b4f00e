package source

import "strconv"

type (
	// FileID uniquely identifies a source file within a FileSet.
	FileID uint32
	// FileFlags encodes metadata about a source file.
	FileFlags uint8
)

const (
	// FileVirtual indicates the file was added from memory (test, stdin, etc.).
	FileVirtual FileFlags = 1 << iota
	FileHadBOM
	FileNormalizedCRLF
	// FileGenerated marks a previously generated output that is re-read to rebuild state.
	FileGenerated
)

// File captures metadata and content for a single source file.
type File struct {
	ID      FileID
	Path    string
	Content []byte
	LineIdx []uint32
	Hash    [32]byte
	Flags   FileFlags
}

// Pos is a file:line location as recorded by annotations. File is the name
// exactly as it was given (or as an @file:line$ override spelled it), so it
// may name a file that is not part of any FileSet.
type Pos struct {
	File string
	Line int
}

func (p Pos) String() string {
	if p.File == "" {
		return strconv.Itoa(p.Line)
	}
	return p.File + ":" + strconv.Itoa(p.Line)
}

// IsZero reports whether the position carries no location.
func (p Pos) IsZero() bool {
	return p.File == "" && p.Line == 0
}
