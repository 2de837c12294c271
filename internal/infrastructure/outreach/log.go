// Package outreach checks signal authors against the outreach log kept by the
// auto-bdr tool, so leads that were already contacted are not raised again.
package outreach

import (
	"encoding/csv"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pratik-anthromind/data-deal-monitoring/internal/ports"
)

// LogFilter reads the outreach CSV on every check. The log's schema belongs
// to auto-bdr and drifts, so matching is a case-insensitive substring scan
// over every field of every row rather than a fixed-column lookup.
type LogFilter struct {
	path   string
	logger *slog.Logger
}

var _ ports.ContactLog = (*LogFilter)(nil)

// NewLogFilter points the filter at the outreach log file.
func NewLogFilter(path string, logger *slog.Logger) *LogFilter {
	return &LogFilter{path: path, logger: logger}
}

// AlreadyContacted reports whether author appears anywhere in the log.
// A missing or unreadable log fails open: the lead is not suppressed.
func (f *LogFilter) AlreadyContacted(author string) bool {
	if author == "" {
		return false
	}

	file, err := os.Open(f.path)
	if err != nil {
		if !os.IsNotExist(err) && f.logger != nil {
			f.logger.Debug("outreach log unreadable", "path", f.path, "error", err)
		}
		return false
	}
	defer file.Close()

	reader := csv.NewReader(file)
	reader.FieldsPerRecord = -1

	needle := strings.ToLower(author)
	header := true
	for {
		record, err := reader.Read()
		if err == io.EOF {
			return false
		}
		if err != nil {
			// Malformed log: fail open rather than block notification.
			if f.logger != nil {
				f.logger.Debug("outreach log parse error", "path", f.path, "error", err)
			}
			return false
		}
		if header {
			header = false
			continue
		}
		for _, field := range record {
			if field != "" && strings.Contains(strings.ToLower(field), needle) {
				return true
			}
		}
	}
}
