package platform

import (
	"fmt"
	"os"
	"runtime"

	"github.com/spf13/afero"
)

// ExecBits are the user, group and other execute permission bits.
const ExecBits os.FileMode = 0o111

// Chmod sets file permissions. On Windows this is a no-op because Windows
// does not support Unix-style permission bits.
func Chmod(fs afero.Fs, path string, mode os.FileMode) error {
	if runtime.GOOS == "windows" {
		return nil
	}
	return fs.Chmod(path, mode)
}

// AddMode adds bits to the current permissions of path. Existing bits are
// kept; nothing is written when the bits are already present.
func AddMode(fs afero.Fs, path string, bits os.FileMode) error {
	info, err := fs.Stat(path)
	if err != nil {
		return fmt.Errorf("stat %s: %w", path, err)
	}
	perm := info.Mode().Perm()
	if perm&bits == bits {
		return nil
	}
	if err := Chmod(fs, path, perm|bits); err != nil {
		return fmt.Errorf("chmod %s: %w", path, err)
	}
	return nil
}

// IsExecutable reports whether any execute bit is set on path.
func IsExecutable(fs afero.Fs, path string) bool {
	if runtime.GOOS == "windows" {
		return true
	}
	info, err := fs.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&ExecBits != 0
}
