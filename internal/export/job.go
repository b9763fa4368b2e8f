package export

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"icsexport/internal/ics"
	appLog "icsexport/internal/log"
	"icsexport/internal/model"
)

// Job is one configured export: a source, a window and an output.
// Run may be called repeatedly (watch mode); each call is independent.
type Job struct {
	Source  string
	Window  model.Window
	Fetcher *ics.Fetcher
	Options Options

	Format string
	Header bool

	// Output is a file path; empty writes to Stdout.
	Output string
	Stdout io.Writer
}

// Run loads and parses the source, materializes rows and writes them.
// Source and output failures are returned; skipped events are only
// reported in the result unless Options.Strict is set.
func (j *Job) Run(ctx context.Context) (Result, error) {
	runID := uuid.NewString()
	started := time.Now()

	appLog.Info("export run start",
		"run_id", runID,
		"source", j.Source,
		"window_begin", j.Window.Begin.String(),
		"window_end", j.Window.End.String(),
	)

	body, err := j.Fetcher.Open(ctx, j.Source)
	if err != nil {
		return Result{}, err
	}
	events, err := ics.ParseICS(j.Source, body)
	if err != nil {
		return Result{}, err
	}

	res, err := Materialize(events, j.Window, j.Options)
	if err != nil {
		return res, err
	}

	if err := j.write(res.Rows); err != nil {
		return res, err
	}

	appLog.Info("export run finished",
		"run_id", runID,
		"events", len(events),
		"rows", len(res.Rows),
		"out_of_range", res.OutOfRange,
		"truncated", len(res.Truncated),
		"failed", len(res.Failed),
		"elapsed", time.Since(started).String(),
	)
	return res, nil
}

func (j *Job) write(rows []model.OutputRow) error {
	if j.Output == "" {
		out := j.Stdout
		if out == nil {
			out = os.Stdout
		}
		w, err := NewWriter(j.Format, out, j.Header)
		if err != nil {
			return err
		}
		return w.Write(rows)
	}

	var buf bytes.Buffer
	w, err := NewWriter(j.Format, &buf, j.Header)
	if err != nil {
		return err
	}
	if err := w.Write(rows); err != nil {
		return err
	}
	return writeFileAtomic(j.Output, buf.Bytes())
}

// writeFileAtomic writes data next to path and renames it into place, so a
// reader never sees a half-written export.
func writeFileAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}

	tmp, err := os.CreateTemp(dir, ".icsexport-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
