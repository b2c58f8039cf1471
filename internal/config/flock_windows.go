//go:build windows

package config

import (
	"os"

	"golang.org/x/sys/windows"
)

// wholeFile covers every byte a config file could reach.
const wholeFile = 0xFFFFFFFF

// lockFile blocks until it holds an exclusive lock on f.
func lockFile(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.LockFileEx(windows.Handle(f.Fd()), windows.LOCKFILE_EXCLUSIVE_LOCK, 0, wholeFile, 0, &overlapped)
}

func unlockFile(f *os.File) error {
	var overlapped windows.Overlapped
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, wholeFile, 0, &overlapped)
}
