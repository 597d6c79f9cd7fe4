package export

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pkg/errors"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// Path returns the report file name for a run: results-<runID>.<ext> in dir
func Path(dir, runID, ext string) string {
	return filepath.Join(dir, fmt.Sprintf("results-%s.%s", runID, ext))
}

// Write renders the results in every requested format ("html", "csv",
// "json") and returns the files it created
func Write(results *benchmark.Results, dir string, formats []string) ([]string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create output directory %s", dir)
	}

	var written []string
	for _, format := range formats {
		var err error
		path := Path(dir, results.RunID, format)
		switch format {
		case "html":
			err = ToHTML(results, path)
		case "json":
			err = ToJSON(results, path)
		case "csv":
			err = SummariesToCSV(results, path)
			if err == nil && len(results.BreakingPoints) > 0 {
				written = append(written, path)
				path = filepath.Join(dir, fmt.Sprintf("results-%s-breaking.csv", results.RunID))
				err = ProbesToCSV(results, path)
			}
		default:
			err = errors.Errorf("unknown output format %q", format)
		}
		if err != nil {
			return written, errors.Wrapf(err, "write %s report", format)
		}
		written = append(written, path)
	}
	return written, nil
}
