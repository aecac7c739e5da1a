package ports

import "fmt"

// FileID identifies a file for its whole lifetime in the analysis registry.
// IDs are allocated by the embedding host and compared by value.
type FileID uint32

func (id FileID) String() string {
	return fmt.Sprintf("FileID(%d)", uint32(id))
}

// FileResolver abstracts how the host maps files to paths. Relative paths are
// slash separated and interpreted against the file itself, so "../b.rs"
// relative to "src/a.rs" names "src/b.rs".
//
// Implementations must be deterministic for a given registry generation and
// safe for concurrent use.
type FileResolver interface {
	// FileStem returns the file name without its extension ("mod" for "x/mod.rs").
	FileStem(id FileID) string
	// Resolve returns the file the relative path points to, if the host knows one.
	Resolve(id FileID, rel string) (FileID, bool)
}
