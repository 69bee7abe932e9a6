package task

import "fmt"

// InvalidStoreLayoutError reports a list path that exists but is a
// directory. Nothing is read or written once this is detected.
type InvalidStoreLayoutError struct {
	Path string
}

func (e *InvalidStoreLayoutError) Error() string {
	return fmt.Sprintf("task file %s is a directory", e.Path)
}

// FileAccessError wraps a failed read or write of a list file.
type FileAccessError struct {
	Path string
	Err  error
}

func (e *FileAccessError) Error() string {
	return fmt.Sprintf("%v - %s", e.Err, e.Path)
}

func (e *FileAccessError) Unwrap() error { return e.Err }

// UnknownPrefixError reports a prefix that matches no open task.
type UnknownPrefixError struct {
	Prefix string
}

func (e *UnknownPrefixError) Error() string {
	return fmt.Sprintf("the ID %q does not match any task", e.Prefix)
}

// AmbiguousPrefixError reports a prefix that matches several open tasks
// without being the full id of any of them.
type AmbiguousPrefixError struct {
	Prefix string
}

func (e *AmbiguousPrefixError) Error() string {
	return fmt.Sprintf("the ID %q matches more than one task", e.Prefix)
}
