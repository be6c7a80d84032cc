package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/paleolab/fossilscan/internal/fossil"
)

// ErrExport marks a failed export: unwritable path or unsupported format.
var ErrExport = errors.New("export failed")

// csvHeader mirrors the JSON field names; nested fields are flattened to
// scalar columns.
var csvHeader = []string{
	"source_path",
	"classification",
	"geological_period",
	"age_range_million_years",
	"preservation_quality",
	"species_candidates",
	"confidence",
	"analyzed_at",
	"image_width",
	"image_height",
	"error",
}

// Results writes the result set to path in the given format (json or csv).
// The file appears fully written or not at all.
func Results(results []fossil.Result, path, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "json":
		data, err = encodeJSON(results)
	case "csv":
		data, err = encodeCSV(results)
	default:
		return fmt.Errorf("%w: unknown format %q (want json or csv)", ErrExport, format)
	}
	if err != nil {
		return fmt.Errorf("%w: %v", ErrExport, err)
	}

	if err := writeAtomic(path, data); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrExport, path, err)
	}
	return nil
}

func encodeJSON(results []fossil.Result) ([]byte, error) {
	if results == nil {
		results = []fossil.Result{}
	}
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

func encodeCSV(results []fossil.Result) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)

	if err := w.Write(csvHeader); err != nil {
		return nil, err
	}
	for _, r := range results {
		row := []string{
			r.SourcePath,
			string(r.Classification),
			r.GeologicalPeriod,
			r.AgeRange.String(),
			formatScore(r.PreservationQuality),
			flattenCandidates(r.SpeciesCandidates),
			formatScore(r.Confidence),
			r.AnalyzedAt.Format(time.RFC3339),
			strconv.Itoa(r.ImageWidth),
			strconv.Itoa(r.ImageHeight),
			r.Error,
		}
		if err := w.Write(row); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}

// flattenCandidates joins candidates as "name:confidence" pairs, keeping
// their descending order.
func flattenCandidates(candidates []fossil.SpeciesCandidate) string {
	parts := make([]string, 0, len(candidates))
	for _, c := range candidates {
		parts = append(parts, fmt.Sprintf("%s:%.2f", c.Name, c.Confidence))
	}
	return strings.Join(parts, ";")
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// writeAtomic writes to a temp file in the target directory and renames it
// into place, so a failure never leaves a partial file at path.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".fossilscan-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Chmod(tmpName, 0o644); err != nil {
		os.Remove(tmpName)
		return err
	}
	if err := os.Rename(tmpName, path); err != nil {
		os.Remove(tmpName)
		return err
	}
	return nil
}
