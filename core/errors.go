package core

import "fmt"

// FileOpenKind classifies failures to open a file or parse its metadata.
// Callers show different UI messages for a missing file vs a corrupt one.
type FileOpenKind int

const (
	OpenNotFound FileOpenKind = iota
	OpenNotReadable
	OpenCorruptFooter
)

func (k FileOpenKind) String() string {
	switch k {
	case OpenNotFound:
		return "not found"
	case OpenNotReadable:
		return "not readable"
	case OpenCorruptFooter:
		return "corrupt footer"
	}
	return "unknown"
}

// FileOpenError is raised only by schema/open operations. There is no
// partial schema: an open either yields a complete schema or this error.
type FileOpenError struct {
	Path string
	Kind FileOpenKind
	Err  error
}

func (e *FileOpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("open %s: %s: %v", e.Path, e.Kind, e.Err)
	}
	return fmt.Sprintf("open %s: %s", e.Path, e.Kind)
}

func (e *FileOpenError) Unwrap() error { return e.Err }

// DataReadKind classifies failures during a range read. Out-of-bounds
// ranges are valid empty results, never errors.
type DataReadKind int

const (
	ReadCorruptRowGroup DataReadKind = iota
	ReadIOFailure
)

func (k DataReadKind) String() string {
	switch k {
	case ReadCorruptRowGroup:
		return "corrupt row group"
	case ReadIOFailure:
		return "io failure"
	}
	return "unknown"
}

// DataReadError aborts a single ReadRange call. It does not poison the
// cached handle: other ranges of the same file remain readable.
type DataReadError struct {
	Path  string
	Group int
	Kind  DataReadKind
	Err   error
}

func (e *DataReadError) Error() string {
	return fmt.Sprintf("read %s row group %d: %s: %v", e.Path, e.Group, e.Kind, e.Err)
}

func (e *DataReadError) Unwrap() error { return e.Err }
