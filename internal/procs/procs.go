// Package procs answers the process questions the rest of the tool asks:
// who holds a file open, and how do we get a browser out of the way.
package procs

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/shirou/gopsutil/v4/process"
	"go.uber.org/zap"
)

// OpenFileOwner ties a held-open file to the process holding it.
type OpenFileOwner struct {
	PID  int32
	Name string
	Path string
}

// FindLockers returns the processes that hold exactly path open. Processes we
// may not inspect are skipped; if no process could be inspected at all the
// underlying error is returned so callers can tell "nobody" from "no idea".
func FindLockers(path string) ([]OpenFileOwner, error) {
	return scanOpenFiles(func(p string) bool { return pathMatches(p, path) })
}

// FindByOpenFile returns one entry per process whose open files contain
// needle, case-insensitively.
func FindByOpenFile(needle string) ([]OpenFileOwner, error) {
	return scanOpenFiles(func(p string) bool { return pathContains(p, needle) })
}

func scanOpenFiles(match func(string) bool) ([]OpenFileOwner, error) {
	procs, err := process.Processes()
	if err != nil {
		return nil, err
	}

	var owners []OpenFileOwner
	var lastErr error
	failed := 0
	for _, p := range procs {
		files, err := p.OpenFiles()
		if err != nil {
			failed++
			lastErr = err
			continue
		}
		for _, f := range files {
			if !match(f.Path) {
				continue
			}
			name, _ := p.Name()
			owners = append(owners, OpenFileOwner{PID: p.Pid, Name: name, Path: f.Path})
			break
		}
	}

	if len(owners) == 0 && len(procs) > 0 && failed == len(procs) && lastErr != nil {
		return nil, fmt.Errorf("open file enumeration unavailable: %w", lastErr)
	}
	return owners, nil
}

// TerminateByName asks every process whose name starts with prefix to exit
// and returns how many accepted. Refusals (typically access denied) are
// logged and skipped.
func TerminateByName(prefix string, log *zap.Logger) int {
	if log == nil {
		log = zap.NewNop()
	}
	procs, err := process.Processes()
	if err != nil {
		log.Warn("process listing failed", zap.Error(err))
		return 0
	}

	terminated := 0
	for _, p := range procs {
		name, err := p.Name()
		if err != nil || !nameHasPrefix(name, prefix) {
			continue
		}
		if err := p.Terminate(); err != nil {
			log.Warn("could not terminate process",
				zap.Int32("pid", p.Pid), zap.String("name", name), zap.Error(err))
			continue
		}
		log.Debug("terminated process", zap.Int32("pid", p.Pid), zap.String("name", name))
		terminated++
	}
	return terminated
}

// Kill force-kills pid.
func Kill(pid int32) error {
	p, err := process.NewProcess(pid)
	if err != nil {
		return err
	}
	return p.Kill()
}

// WaitExit polls until pid is gone. It reports false when the process is
// still alive after timeout or the context ends first.
func WaitExit(ctx context.Context, pid int32, timeout time.Duration) bool {
	deadline := time.Now().Add(timeout)
	for {
		p, err := process.NewProcess(pid)
		if err != nil {
			return true
		}
		if running, err := p.IsRunning(); err == nil && !running {
			return true
		}
		if time.Now().After(deadline) {
			return false
		}
		select {
		case <-ctx.Done():
			return false
		case <-time.After(200 * time.Millisecond):
		}
	}
}

func pathMatches(path, target string) bool {
	return strings.EqualFold(filepath.Clean(path), filepath.Clean(target))
}

func pathContains(path, needle string) bool {
	return strings.Contains(strings.ToLower(path), strings.ToLower(needle))
}

func nameHasPrefix(name, prefix string) bool {
	return strings.HasPrefix(strings.ToLower(name), strings.ToLower(prefix))
}
