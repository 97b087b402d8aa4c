package deb

import "fmt"

// ValidationError reports a configuration rule violated by the caller's
// options. It is always detected before any filesystem mutation and carries
// the user-facing message for the first rule broken.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

// EnvironmentError reports ambient process state that would make the
// produced package non-reproducible, such as an unsupported umask.
type EnvironmentError struct {
	Msg string
}

func (e *EnvironmentError) Error() string { return e.Msg }

// IOError reports a failed filesystem or codec operation together with the
// path that failed.
type IOError struct {
	Op   string // operation that failed, e.g. "copy", "chmod"
	Path string
	Err  error
}

func (e *IOError) Error() string {
	return fmt.Sprintf("%s %s: %v", e.Op, e.Path, e.Err)
}

func (e *IOError) Unwrap() error { return e.Err }

// ToolingError reports an external collaborator missing from the host, such
// as lintian not being installed.
type ToolingError struct {
	Tool string
	Err  error
}

func (e *ToolingError) Error() string {
	return fmt.Sprintf("%s not found on this host, install it to validate packages: %v", e.Tool, e.Err)
}

func (e *ToolingError) Unwrap() error { return e.Err }
