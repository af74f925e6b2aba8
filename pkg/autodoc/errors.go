package autodoc

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidPath is wrapped by PathError.
	ErrInvalidPath = errors.New("path is neither a file nor a directory")
	// ErrFileTooLarge marks files over the configured size limit.
	ErrFileTooLarge = errors.New("file exceeds size limit")
)

// PathError reports an input path that cannot be analyzed.
type PathError struct {
	Path string
	Err  error
}

func (e *PathError) Error() string {
	return fmt.Sprintf("%s: %v", e.Path, e.Err)
}

func (e *PathError) Unwrap() error {
	return e.Err
}

func newPathError(path string, cause error) *PathError {
	if cause == nil {
		return &PathError{Path: path, Err: ErrInvalidPath}
	}

	return &PathError{Path: path, Err: fmt.Errorf("%w: %w", ErrInvalidPath, cause)}
}
