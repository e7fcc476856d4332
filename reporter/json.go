package reporter

import (
	"encoding/json"
	"fmt"
	"time"

	"umico-analytics/models"
)

// jsonReport is the report.json document: every report section plus the
// timestamp the file was generated at.
type jsonReport struct {
	GeneratedAt time.Time `json:"generated_at"`
	*models.AnalyticsReport
}

// renderJSON serializes the report for downstream tooling, indented and
// newline-terminated.
func renderJSON(r *models.AnalyticsReport, generatedAt time.Time) ([]byte, error) {
	b, err := json.MarshalIndent(jsonReport{GeneratedAt: generatedAt, AnalyticsReport: r}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("report: marshal json: %w", err)
	}
	return append(b, '\n'), nil
}
