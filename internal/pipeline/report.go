package pipeline

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/google/uuid"
)

// Report statuses.
const (
	StatusOK    = "ok"
	StatusError = "error"
)

// Report is the machine-readable record of one pipeline run, written
// next to the output drawing as <output>.report.json on success and
// failure alike.
type Report struct {
	RunID        string   `json:"run_id"`
	Status       string   `json:"status"`
	Input        string   `json:"input"`
	Output       string   `json:"output"`
	Width        int      `json:"width_px"`
	Height       int      `json:"height_px"`
	MMPerPixel   float64  `json:"mm_per_px"`
	NumPaths     int      `json:"num_paths"`
	DroppedPaths int      `json:"dropped_paths"`
	Errors       []string `json:"errors"`
	DurationMS   int64    `json:"duration_ms"`
}

func newReport(req Request) Report {
	return Report{
		RunID:  uuid.NewString(),
		Input:  req.InputPath,
		Output: req.OutputPath,
		Errors: []string{},
	}
}

// WriteFile writes the report as indented JSON.
func (r Report) WriteFile(path string) error {
	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

func reportPath(outputPath string) string {
	return outputPath + ".report.json"
}
