package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	qrcode "github.com/skip2/go-qrcode"

	"github.com/paleolab/fossilscan/internal/fossil"
)

// label is the compact payload encoded into a specimen QR tag.
type label struct {
	Run    string      `json:"run"`
	Source string      `json:"source"`
	Type   fossil.Type `json:"type"`
	Period string      `json:"period"`
}

// WriteLabels renders one QR label PNG per successfully classified specimen
// into dir, for physical tagging of trays and drawers. Failed entries are
// skipped. Returns the number of labels written.
func WriteLabels(results []fossil.Result, dir, runID string) (int, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return 0, fmt.Errorf("%w: %s: %v", ErrExport, dir, err)
	}

	written := 0
	for i, r := range results {
		if r.Failed() {
			continue
		}
		payload, err := json.Marshal(label{
			Run:    runID,
			Source: r.SourcePath,
			Type:   r.Classification,
			Period: r.GeologicalPeriod,
		})
		if err != nil {
			return written, fmt.Errorf("%w: %v", ErrExport, err)
		}

		name := fmt.Sprintf("label_%03d_%s.png", i+1, labelStem(r.SourcePath))
		if err := qrcode.WriteFile(string(payload), qrcode.Medium, 256, filepath.Join(dir, name)); err != nil {
			return written, fmt.Errorf("%w: %s: %v", ErrExport, name, err)
		}
		written++
	}
	return written, nil
}

// labelStem reduces a source path to a filesystem-safe file name fragment.
func labelStem(path string) string {
	base := filepath.Base(path)
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
			return r
		default:
			return '_'
		}
	}, base)
}
