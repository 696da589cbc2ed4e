//go:build windows

package window

import (
	"syscall"

	"golang.org/x/sys/windows"
)

// isProcessRunning opens pid with minimal access rights to check that it
// exists.
func isProcessRunning(pid int) bool {
	handle, err := windows.OpenProcess(windows.SYNCHRONIZE, false, uint32(pid))
	if err != nil {
		return false
	}
	windows.CloseHandle(handle)
	return true
}

// signalFocus cannot reach another console process on Windows, so a new
// foreground process is opened instead.
func signalFocus(_ int) (bool, error) {
	return false, nil
}

func detachedAttr() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{
		CreationFlags: windows.CREATE_NEW_PROCESS_GROUP | windows.DETACHED_PROCESS,
	}
}
