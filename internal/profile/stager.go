package profile

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"edgesearch/internal/procs"
)

// StageMode selects how a profile is handed to the browser.
type StageMode string

const (
	// ModeDirect runs the browser against the live profile directory.
	ModeDirect StageMode = "direct"
	// ModeCopy stages a disposable sibling copy first.
	ModeCopy StageMode = "copy"
)

// TempSuffix is appended to the source directory name for staged copies.
const TempSuffix = "-temp"

const probeName = "_stage_probe.tmp"

// Names with these suffixes are live-session artifacts: never worth copying,
// and usually the files Edge keeps locked.
var skipSuffixes = []string{".lock", ".tmp"}

var lockSignatures = []string{
	"being used by another process",
	"sharing violation",
	"winerror 32",
	"resource busy",
}

// Stager builds disposable working copies of profile directories. Fields left
// nil fall back to the real implementations.
type Stager struct {
	Log *zap.Logger

	// CopyFile copies a single file preserving its mode.
	CopyFile func(src, dst string) error

	// FindLockers resolves which processes hold a file open.
	FindLockers func(path string) ([]procs.OpenFileOwner, error)
}

type copyFailure struct {
	src    string
	dst    string
	reason string
}

// Stage returns the directory the browser should use for source under the
// given mode. Direct mode hands back source untouched. Copy mode stages a
// sibling named source+"-temp", reusing a writable leftover from an earlier
// run, and tolerates individual file failures unless one carries a
// cross-process lock signature, which aborts the run: the operator has to
// close whatever holds the file and rerun.
func (s *Stager) Stage(source string, mode StageMode) (string, error) {
	log := s.Log
	if log == nil {
		log = zap.NewNop()
	}

	if mode == ModeDirect {
		log.Info("using profile in place", zap.String("dir", source))
		return source, nil
	}

	copyFn := s.CopyFile
	if copyFn == nil {
		copyFn = copyFile
	}
	findLockers := s.FindLockers
	if findLockers == nil {
		findLockers = procs.FindLockers
	}

	dest := source + TempSuffix
	if _, err := os.Stat(dest); err == nil {
		if isWritable(dest) {
			log.Info("reusing staged copy from an earlier run", zap.String("dir", dest))
			return dest, nil
		}
		log.Warn("staged copy is stale, recreating", zap.String("dir", dest))
		if err := os.RemoveAll(dest); err != nil {
			return "", fmt.Errorf("stale staged copy %s cannot be removed, delete it manually and rerun: %w", dest, err)
		}
	}

	if err := os.MkdirAll(dest, 0o755); err != nil {
		return "", fmt.Errorf("create staged copy %s: %w", dest, err)
	}

	var failures []copyFailure
	walkErr := filepath.WalkDir(source, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path == source {
				return err
			}
			failures = append(failures, copyFailure{src: path, reason: err.Error()})
			return nil
		}

		rel, err := filepath.Rel(source, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}
		target := filepath.Join(dest, rel)

		if d.IsDir() {
			perm := fs.FileMode(0o755)
			if info, err := d.Info(); err == nil {
				perm = info.Mode().Perm()
			}
			if err := os.MkdirAll(target, perm); err != nil {
				failures = append(failures, copyFailure{src: path, dst: target, reason: err.Error()})
				return fs.SkipDir
			}
			return nil
		}

		if skipName(d.Name()) || !d.Type().IsRegular() {
			return nil
		}
		if err := copyFn(path, target); err != nil {
			failures = append(failures, copyFailure{src: path, dst: target, reason: err.Error()})
		}
		return nil
	})
	if walkErr != nil {
		return "", fmt.Errorf("walk %s: %w", source, walkErr)
	}

	if locked := lockedFailures(failures); len(locked) > 0 {
		for _, f := range locked {
			owners, err := findLockers(f.src)
			if err != nil {
				log.Debug("process scan failed", zap.String("file", f.src), zap.Error(err))
			}
			if len(owners) == 0 {
				log.Error("file is locked by another process",
					zap.String("file", f.src), zap.String("reason", f.reason))
				continue
			}
			for _, o := range owners {
				log.Error("file is locked by a running process",
					zap.String("file", f.src), zap.Int32("pid", o.PID), zap.String("process", o.Name))
			}
		}
		first := locked[0]
		return "", fmt.Errorf("cannot stage profile: %s is held open by another process; close it and rerun", first.src)
	}

	for _, f := range failures {
		log.Warn("skipped file during profile copy",
			zap.String("src", f.src), zap.String("reason", f.reason))
	}
	log.Info("staged profile copy",
		zap.String("dir", dest), zap.Int("skipped", len(failures)))
	return dest, nil
}

// IsLockReason reports whether a copy failure reason indicates the source
// file is held open by another process.
func IsLockReason(reason string) bool {
	r := strings.ToLower(reason)
	for _, sig := range lockSignatures {
		if strings.Contains(r, sig) {
			return true
		}
	}
	return false
}

func lockedFailures(failures []copyFailure) []copyFailure {
	var locked []copyFailure
	for _, f := range failures {
		if IsLockReason(f.reason) {
			locked = append(locked, f)
		}
	}
	return locked
}

// isWritable probes dir by creating and removing a marker file inside it.
func isWritable(dir string) bool {
	probe := filepath.Join(dir, probeName)
	f, err := os.Create(probe)
	if err != nil {
		return false
	}
	f.Close()
	return os.Remove(probe) == nil
}

func skipName(name string) bool {
	lower := strings.ToLower(name)
	for _, suffix := range skipSuffixes {
		if strings.HasSuffix(lower, suffix) {
			return true
		}
	}
	return false
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	info, err := in.Stat()
	if err != nil {
		return err
	}

	out, err := os.OpenFile(dst, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, info.Mode().Perm())
	if err != nil {
		return err
	}
	defer out.Close()

	_, err = io.Copy(out, in)
	return err
}
