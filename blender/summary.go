package blender

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"strconv"
	"time"

	"github.com/pgavriel/MOADv2/errors"
	"github.com/pgavriel/MOADv2/fs"
)

// LogDir is the folder under the search root that receives batch summaries.
const LogDir = "_blender_logs"

const (
	fileStampLayout = "20060102_150405"
	rowStampLayout  = "2006-01-02_15-04-05"
)

var summaryHeader = []string{"Timestamp", "Model", "TimeSeconds", "Status"}

// SummaryPath returns where WriteSummaryCSV writes a batch started at started.
func SummaryPath(root string, started time.Time) string {
	return filepath.Join(root, LogDir, started.Format(fileStampLayout)+"_conversion_summary.csv")
}

// WriteSummaryCSV writes one row per result and returns the file path.
func WriteSummaryCSV(fsys fs.Filesystem, root string, started time.Time, results []Result) (string, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(summaryHeader); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "encode summary")
	}
	for _, r := range results {
		row := []string{
			r.Timestamp.Format(rowStampLayout),
			r.Model,
			strconv.FormatFloat(r.Elapsed.Seconds(), 'f', 2, 64),
			string(r.Status),
		}
		if err := w.Write(row); err != nil {
			return "", errors.Wrap(err, errors.CodeInternal, "encode summary")
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return "", errors.Wrap(err, errors.CodeInternal, "encode summary")
	}

	path := SummaryPath(root, started)
	if err := fsys.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", errors.WrapWithContext(err, errors.CodeStorage, "create log folder",
			map[string]interface{}{"path": filepath.Dir(path)})
	}
	if err := fsys.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errors.WrapWithContext(err, errors.CodeStorage, "write summary",
			map[string]interface{}{"path": path})
	}
	return path, nil
}
