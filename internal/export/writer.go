package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"icsexport/internal/model"
)

const (
	FormatTable = "table"
	FormatCSV   = "csv"
)

var header = []string{"summary", "date", "detail"}

// Writer renders rows to an output stream.
type Writer interface {
	Write(rows []model.OutputRow) error
}

// NewWriter returns a Writer for format ("table" or "csv").
func NewWriter(format string, w io.Writer, withHeader bool) (Writer, error) {
	switch strings.ToLower(format) {
	case FormatTable, "":
		return &tableWriter{w: w, header: withHeader}, nil
	case FormatCSV:
		return &csvWriter{w: w, header: withHeader}, nil
	default:
		return nil, fmt.Errorf("unknown output format %q", format)
	}
}

type tableWriter struct {
	w      io.Writer
	header bool
}

func (t *tableWriter) Write(rows []model.OutputRow) error {
	tw := tabwriter.NewWriter(t.w, 0, 0, 2, ' ', 0)
	if t.header {
		fmt.Fprintln(tw, strings.ToUpper(strings.Join(header, "\t")))
	}
	for _, r := range rows {
		fmt.Fprintln(tw, strings.Join(r.Strings(), "\t"))
	}
	return tw.Flush()
}

type csvWriter struct {
	w      io.Writer
	header bool
}

func (c *csvWriter) Write(rows []model.OutputRow) error {
	cw := csv.NewWriter(c.w)
	if c.header {
		if err := cw.Write(header); err != nil {
			return err
		}
	}
	for _, r := range rows {
		if err := cw.Write(r.Strings()); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
