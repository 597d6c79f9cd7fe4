package export

import (
	"encoding/json"
	"os"

	"github.com/pkg/errors"

	"github.com/moguls753/runtime-benchmark/internal/benchmark"
)

// ToJSON writes the complete results as indented JSON. Durations are
// nanoseconds.
func ToJSON(results *benchmark.Results, outputPath string) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return errors.Wrap(err, "marshal results")
	}
	if err := os.WriteFile(outputPath, append(data, '\n'), 0o644); err != nil {
		return errors.Wrapf(err, "write %s", outputPath)
	}
	return nil
}
