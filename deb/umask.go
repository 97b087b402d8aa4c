package deb

import (
	"fmt"
	"io"

	"golang.org/x/sys/unix"
)

// The only file-creation masks under which staged permission bits come out
// the same on every host.
const (
	umaskStrict = 0o022
	umaskGroup  = 0o002
)

// captureUmask reads the process-wide file-creation mask without changing
// it. The mask is ambient global state: it is captured once at build start
// and threaded through the pipeline, never re-queried.
func captureUmask() int {
	mask := unix.Umask(0)
	unix.Umask(mask)
	return mask
}

// checkUmask gates the build on a supported umask. Anything other than 0022
// or 0002 would leave unpredictable mode bits on files created during
// staging, so the build warns on w and refuses to proceed.
func checkUmask(mask int, w io.Writer) error {
	if mask == umaskStrict || mask == umaskGroup {
		return nil
	}
	fmt.Fprintf(w, "Warning: umask is %04o. You should use 0022 or 0002\n", mask)
	return &EnvironmentError{
		Msg: fmt.Sprintf("unsupported umask %04o: staged file permissions would not be reproducible (use 0022 or 0002)", mask),
	}
}
