// Package logging writes per-run JSONL logs and tails them.
package logging

import (
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/nibzard/prospector/internal/agents"
)

const (
	logSuffix    = ".jsonl"
	resultSuffix = ".result.json"
)

// RunLogger manages the log file of one prospecting run and the result
// files written next to it.
type RunLogger struct {
	Dir     string
	RunID   string
	LogPath string
	file    *os.File
}

// NewRunLogger creates the project log directory under baseDir and a new
// JSONL file for this run.
func NewRunLogger(baseDir, workDir string) (*RunLogger, error) {
	logDir, err := FindLogDir(baseDir, workDir)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("create log dir: %w", err)
	}

	id := NewRunID()
	logPath := filepath.Join(logDir, id+logSuffix)
	file, err := os.Create(logPath)
	if err != nil {
		return nil, fmt.Errorf("create log file: %w", err)
	}

	return &RunLogger{
		Dir:     logDir,
		RunID:   id,
		LogPath: logPath,
		file:    file,
	}, nil
}

// Writer returns the underlying log file writer.
func (r *RunLogger) Writer() io.Writer {
	return r.file
}

// LogWriter returns an agents.LogWriter that appends events to the run log.
func (r *RunLogger) LogWriter() agents.LogWriter {
	if r == nil || r.file == nil {
		return agents.NullLogWriter{}
	}
	return agents.NewLockedLogWriter(agents.NewIOStreamLogWriter(r.file))
}

// Close closes the log file.
func (r *RunLogger) Close() error {
	if r == nil || r.file == nil {
		return nil
	}
	return r.file.Close()
}

// ResultPath returns the path of the result file for a lead.
func (r *RunLogger) ResultPath(lead string) string {
	if r == nil {
		return ""
	}
	return filepath.Join(r.Dir, fmt.Sprintf("%s-%s%s", r.RunID, sanitizeLabel(lead), resultSuffix))
}

// WriteResult stores a lead's run result as JSON next to the run log.
func (r *RunLogger) WriteResult(lead string, result *agents.RunResult) (string, error) {
	if r == nil || result == nil {
		return "", nil
	}
	path := r.ResultPath(lead)
	data, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}
	if err := os.WriteFile(path, append(data, '\n'), 0o644); err != nil {
		return "", fmt.Errorf("write result: %w", err)
	}
	return path, nil
}

// NewRunID returns a sortable run identifier: UTC timestamp plus a random
// suffix.
func NewRunID() string {
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	return fmt.Sprintf("%s-%s", time.Now().UTC().Format("20060102-150405"), suffix)
}

func resolveBaseDir(baseDir, workDir string) string {
	if filepath.IsAbs(baseDir) {
		return filepath.Clean(baseDir)
	}
	return filepath.Clean(filepath.Join(workDir, baseDir))
}

func resolveProjectRoot(workDir string) string {
	if workDir == "" {
		return "."
	}
	if _, err := exec.LookPath("git"); err == nil {
		cmd := exec.Command("git", "-C", workDir, "rev-parse", "--show-toplevel")
		if output, err := cmd.Output(); err == nil {
			if root := strings.TrimSpace(string(output)); root != "" {
				return root
			}
		}
	}
	return workDir
}

func projectSlug(projectRoot string) string {
	return fmt.Sprintf("%s-%s", slugify(filepath.Base(projectRoot)), hashPath(projectRoot))
}

func slugify(input string) string {
	if strings.TrimSpace(input) == "" {
		return "project"
	}

	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if !isSlugByte(c) && c != '.' {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	slug := strings.Trim(b.String(), "_")
	if slug == "" {
		return "project"
	}
	return slug
}

// sanitizeLabel turns a lead name into a file name fragment.
func sanitizeLabel(input string) string {
	var b strings.Builder
	lastUnderscore := false
	for i := 0; i < len(input); i++ {
		c := input[i]
		if !isSlugByte(c) {
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
			continue
		}
		b.WriteByte(c)
		lastUnderscore = false
	}

	label := strings.Trim(b.String(), "_")
	if label == "" {
		return "lead"
	}
	return label
}

func isSlugByte(c byte) bool {
	return (c >= 'A' && c <= 'Z') ||
		(c >= 'a' && c <= 'z') ||
		(c >= '0' && c <= '9') ||
		c == '_' || c == '-'
}

func hashPath(input string) string {
	sum := sha1.Sum([]byte(input))
	return hex.EncodeToString(sum[:])[:8]
}

// FindLogDir returns the log directory for a given work directory.
func FindLogDir(baseDir, workDir string) (string, error) {
	if baseDir == "" {
		return "", fmt.Errorf("log base dir is empty")
	}

	resolvedWorkDir := workDir
	if resolvedWorkDir == "" {
		resolvedWorkDir = "."
	}
	if abs, err := filepath.Abs(resolvedWorkDir); err == nil {
		resolvedWorkDir = abs
	}

	baseDir = resolveBaseDir(baseDir, resolvedWorkDir)
	projectRoot := resolveProjectRoot(resolvedWorkDir)
	return filepath.Join(baseDir, projectSlug(projectRoot)), nil
}

// FindLatestLog finds the latest JSONL log file in a directory. It returns
// "" when there is none.
func FindLatestLog(logDir string) (string, error) {
	runs, err := FindLogRuns(logDir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", nil
		}
		return "", err
	}
	for _, run := range runs {
		if run.LogPath != "" {
			return run.LogPath, nil
		}
	}
	return "", nil
}

// TailLog copies the last n lines of a log file to w (all lines when n is
// zero). With follow it keeps copying appended data until ctx is done.
func TailLog(ctx context.Context, w io.Writer, path string, n int, follow bool) error {
	file, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if n > 0 {
		if err := tailSeek(file, n); err != nil {
			return fmt.Errorf("seek to tail position: %w", err)
		}
	}

	if _, err := io.Copy(w, file); err != nil {
		return err
	}
	if !follow {
		return nil
	}

	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if _, err := io.Copy(w, file); err != nil {
				return err
			}
		}
	}
}

// tailSeek positions file at the start of its last n lines.
func tailSeek(file *os.File, n int) error {
	const chunk = 4096

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	size := stat.Size()

	// Scan backwards for n+1 newlines, ignoring a trailing one.
	end := size
	if end > 0 {
		last := make([]byte, 1)
		if _, err := file.ReadAt(last, end-1); err != nil {
			return err
		}
		if last[0] == '\n' {
			end--
		}
	}

	newlines := 0
	buf := make([]byte, chunk)
	for pos := end; pos > 0; {
		readSize := int64(chunk)
		if pos < readSize {
			readSize = pos
		}
		pos -= readSize
		if _, err := file.ReadAt(buf[:readSize], pos); err != nil && err != io.EOF {
			return err
		}
		for i := readSize - 1; i >= 0; i-- {
			if buf[i] != '\n' {
				continue
			}
			newlines++
			if newlines == n {
				_, err := file.Seek(pos+i+1, io.SeekStart)
				return err
			}
		}
	}

	_, err = file.Seek(0, io.SeekStart)
	return err
}

// LogRun represents a single run with its associated files.
type LogRun struct {
	RunID       string
	ModTime     time.Time
	LogPath     string
	ResultFiles []string
}

// FindLogRuns finds all runs in a directory, newest first.
func FindLogRuns(logDir string) ([]LogRun, error) {
	entries, err := os.ReadDir(logDir)
	if err != nil {
		return nil, fmt.Errorf("read log dir: %w", err)
	}

	runMap := make(map[string]*LogRun)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		runID, isResult := extractRunID(name)
		if runID == "" {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}

		run, ok := runMap[runID]
		if !ok {
			run = &LogRun{RunID: runID, ModTime: info.ModTime()}
			runMap[runID] = run
		}
		if info.ModTime().After(run.ModTime) {
			run.ModTime = info.ModTime()
		}

		fullPath := filepath.Join(logDir, name)
		if isResult {
			run.ResultFiles = append(run.ResultFiles, fullPath)
		} else {
			run.LogPath = fullPath
		}
	}

	runs := make([]LogRun, 0, len(runMap))
	for _, run := range runMap {
		sort.Strings(run.ResultFiles)
		runs = append(runs, *run)
	}
	sort.Slice(runs, func(i, j int) bool {
		if runs[i].ModTime.Equal(runs[j].ModTime) {
			return runs[i].RunID > runs[j].RunID
		}
		return runs[i].ModTime.After(runs[j].ModTime)
	})
	return runs, nil
}

// extractRunID extracts the run ID from a log filename and reports whether
// the file is a lead result.
func extractRunID(filename string) (string, bool) {
	if strings.HasSuffix(filename, logSuffix) {
		return strings.TrimSuffix(filename, logSuffix), false
	}
	if strings.HasSuffix(filename, resultSuffix) {
		// <date>-<time>-<suffix>-<lead>.result.json
		parts := strings.SplitN(strings.TrimSuffix(filename, resultSuffix), "-", 4)
		if len(parts) == 4 {
			return strings.Join(parts[:3], "-"), true
		}
	}
	return "", false
}
