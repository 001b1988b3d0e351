package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// journal appends structured failure lines to the pipeline error log. The
// dashboard reads the file back verbatim, so the line format is fixed:
// <ISO timestamp> [<LEVEL>] <slug>: <message>. Append-only; rotation is a
// deployment concern.
type journal struct {
	path string
	now  func() time.Time
}

func newJournal(path string) *journal {
	return &journal{path: path, now: time.Now}
}

func (j *journal) Error(slug, message string) {
	j.append("ERROR", slug, message)
}

func (j *journal) Warn(slug, message string) {
	j.append("WARN", slug, message)
}

func (j *journal) append(level, slug, message string) {
	line := fmt.Sprintf("%s [%s] %s: %s\n", j.now().UTC().Format(time.RFC3339), level, slug, message)
	f, err := os.OpenFile(j.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return // journalling never fails the stage
	}
	defer f.Close()
	f.WriteString(line)
}

// stampLastRun records the completion time of a stage for the dashboard.
func stampLastRun(logsDir, stage string) error {
	path := filepath.Join(logsDir, "last_run_"+stage+".txt")
	stamp := time.Now().UTC().Format(time.RFC3339) + "\n"
	return os.WriteFile(path, []byte(stamp), 0644)
}
