//go:build unix

package control

import (
	"fmt"
	"os"
	"syscall"
)

func platformLock(f *os.File) error {
	err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
	if err != nil {
		if err == syscall.EWOULDBLOCK {
			return ErrLockHeld
		}
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	return nil
}

func platformUnlock(f *os.File) {
	syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}

// processAlive probes a pid with signal 0, which checks existence without
// delivering anything.
func processAlive(pid int) bool {
	return syscall.Kill(pid, 0) == nil
}
