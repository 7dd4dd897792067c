//go:build !windows

package ops

import (
	"errors"
	"io/fs"
	"os"

	"golang.org/x/sys/unix"
)

// deleteResolvedPath removes base inside the already-resolved dir. Every
// step below works on directory descriptors, so a path component swapped
// for a symlink mid-delete cannot redirect it.
func deleteResolvedPath(dir, base string) error {
	dirFD, err := unix.Open(dir, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_CLOEXEC, 0)
	if err != nil {
		return err
	}
	defer unix.Close(dirFD)

	return notExist(unlinkTree(dirFD, base))
}

// unlinkTree removes name relative to dirFD, descending into directories
// without following symlinks.
func unlinkTree(dirFD int, name string) error {
	err := unix.Unlinkat(dirFD, name, 0)
	if err == nil || !(errors.Is(err, unix.EISDIR) || errors.Is(err, unix.EPERM)) {
		return err
	}

	subFD, err := unix.Openat(dirFD, name, unix.O_RDONLY|unix.O_DIRECTORY|unix.O_NOFOLLOW|unix.O_CLOEXEC, 0)
	if errors.Is(err, unix.ENOTDIR) {
		// Replaced by a file or symlink since the first unlink.
		return unix.Unlinkat(dirFD, name, 0)
	}
	if err != nil {
		return err
	}

	sub := os.NewFile(uintptr(subFD), name)
	entries, err := sub.ReadDir(-1)
	if err == nil {
		for _, e := range entries {
			if err = unlinkTree(subFD, e.Name()); err != nil {
				break
			}
		}
	}
	if closeErr := sub.Close(); err == nil {
		err = closeErr
	}
	if err != nil {
		return err
	}
	return unix.Unlinkat(dirFD, name, unix.AT_REMOVEDIR)
}

func notExist(err error) error {
	if errors.Is(err, unix.ENOENT) {
		return fs.ErrNotExist
	}
	return err
}
