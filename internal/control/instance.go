package control

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// ErrLockHeld means another daemon holds the instance lock.
var ErrLockHeld = errors.New("instance lock held")

// Instance guards one running daemon per state directory. An advisory file
// lock blocks concurrent starts; a pid file next to it lets other processes
// identify the holder and detect stale leftovers after a crash.
type Instance struct {
	lockPath string
	pidPath  string
	file     *os.File
}

func NewInstance(stateDir string) *Instance {
	return &Instance{
		lockPath: filepath.Join(stateDir, "daemon.lock"),
		pidPath:  filepath.Join(stateDir, "daemon.pid"),
	}
}

// Acquire takes the instance lock and records this process's pid. Returns an
// error naming the running pid when another daemon already holds the lock.
func (i *Instance) Acquire() error {
	if err := os.MkdirAll(filepath.Dir(i.lockPath), 0700); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}

	file, err := os.OpenFile(i.lockPath, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("open instance lock: %w", err)
	}

	if err := platformLock(file); err != nil {
		file.Close()
		if errors.Is(err, ErrLockHeld) {
			if pid, ok := i.RunningPID(); ok {
				return fmt.Errorf("daemon already running (pid %d)", pid)
			}
			return errors.New("daemon already running")
		}
		return err
	}

	i.file = file
	return i.writePID()
}

func (i *Instance) writePID() error {
	// Never follow a symlink planted at the pid path.
	if info, err := os.Lstat(i.pidPath); err == nil && info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("pid file %s is a symlink", i.pidPath)
	}
	pid := strconv.Itoa(os.Getpid())
	if err := os.WriteFile(i.pidPath, []byte(pid), 0600); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	return nil
}

// RunningPID reads the pid file and reports whether that process is alive.
func (i *Instance) RunningPID() (int, bool) {
	data, err := os.ReadFile(i.pidPath)
	if err != nil {
		return 0, false
	}

	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, false
	}

	return pid, processAlive(pid)
}

// Release drops the lock and removes the pid and lock files. Safe to call
// when the lock was never acquired.
func (i *Instance) Release() {
	if i.file == nil {
		return
	}

	platformUnlock(i.file)
	i.file.Close()
	i.file = nil

	os.Remove(i.pidPath)
	os.Remove(i.lockPath)
}
