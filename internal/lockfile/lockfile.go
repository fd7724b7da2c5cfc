// Package lockfile keeps a single watch daemon per data directory.
package lockfile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/mitchellh/go-ps"

	"github.com/ymhp64t9bz-png/habitus-strict-html/internal/constants"
)

var (
	findProcessFunc = ps.FindProcess
	getpidFunc      = os.Getpid
	nowFunc         = time.Now
)

// ErrHeld is returned when a live process already owns the lock.
var ErrHeld = errors.New("lock is held by another running process")

// Info is the parsed content of a lockfile: "pid|executable|started_at".
type Info struct {
	PID        int
	Executable string
	StartedAt  time.Time
}

// Lock is an acquired lockfile. Release removes it.
type Lock struct {
	path string
	info Info
}

// Acquire creates the lockfile at path. A lockfile whose owner is no longer running, or
// whose PID now belongs to a different program, is treated as stale and replaced.
func Acquire(path string) (*Lock, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create lock directory: %w", err)
	}

	info := Info{
		PID:        getpidFunc(),
		Executable: currentExecutable(),
		StartedAt:  nowFunc().UTC().Truncate(time.Second),
	}

	for attempt := 0; attempt < 2; attempt++ {
		f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
		if err == nil {
			_, werr := f.WriteString(format(info))
			cerr := f.Close()
			if werr != nil || cerr != nil {
				os.Remove(path)
				return nil, fmt.Errorf("failed to write lockfile: %w", errors.Join(werr, cerr))
			}
			return &Lock{path: path, info: info}, nil
		}
		if !errors.Is(err, os.ErrExist) {
			return nil, fmt.Errorf("failed to create lockfile: %w", err)
		}

		holder, err := Read(path)
		if err == nil && IsAlive(holder) {
			return nil, fmt.Errorf("%w (pid %d since %s)", ErrHeld, holder.PID, holder.StartedAt.Format(time.RFC3339))
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("failed to remove stale lockfile: %w", err)
		}
	}
	return nil, ErrHeld
}

// Release removes the lockfile if it still belongs to this lock.
func (l *Lock) Release() error {
	holder, err := Read(l.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	if holder.PID != l.info.PID {
		return nil
	}
	return os.Remove(l.path)
}

func (l *Lock) Path() string { return l.path }

// Read parses the lockfile at path.
func Read(path string) (Info, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return Info{}, err
	}

	parts := strings.Split(strings.TrimSpace(string(content)), "|")
	if len(parts) != 3 {
		return Info{}, errors.New("lockfile is malformed")
	}

	pid, err := strconv.Atoi(parts[0])
	if err != nil || pid <= 0 {
		return Info{}, errors.New("invalid process ID in lockfile")
	}
	if strings.TrimSpace(parts[1]) == "" {
		return Info{}, errors.New("executable in lockfile is empty")
	}
	started, err := time.Parse(time.RFC3339, parts[2])
	if err != nil {
		return Info{}, errors.New("invalid start time in lockfile")
	}

	return Info{PID: pid, Executable: parts[1], StartedAt: started}, nil
}

// IsAlive reports whether the process recorded in info is still running the same program.
func IsAlive(info Info) bool {
	process, err := findProcessFunc(info.PID)
	if err != nil || process == nil {
		return false
	}
	return strings.HasPrefix(process.Executable(), info.Executable)
}

// DefaultPath returns the watch lockfile location inside dir.
func DefaultPath(dir string) string {
	return filepath.Join(dir, constants.WatchLockfileName)
}

func format(info Info) string {
	return fmt.Sprintf("%d|%s|%s", info.PID, info.Executable, info.StartedAt.Format(time.RFC3339))
}

func currentExecutable() string {
	process, err := findProcessFunc(getpidFunc())
	if err == nil && process != nil && process.Executable() != "" {
		return process.Executable()
	}
	return constants.AppName
}
