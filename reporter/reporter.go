package reporter

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"umico-analytics/models"
	"umico-analytics/utils"
)

// Reporter renders a computed AnalyticsReport into the output directory as
// report.md, report.json, and report.xlsx.
type Reporter struct {
	logger *utils.Logger
	outDir string
}

// New returns a Reporter writing into outDir.
func New(logger *utils.Logger, outDir string) *Reporter {
	return &Reporter{logger: logger, outDir: outDir}
}

// Render writes all three report files. Text files are written to a temp
// file and renamed into place so a crash cannot leave a half-written
// report behind.
func (r *Reporter) Render(report *models.AnalyticsReport) error {
	if err := os.MkdirAll(r.outDir, 0755); err != nil {
		return fmt.Errorf("report: create output dir %q: %w", r.outDir, err)
	}

	mdPath := filepath.Join(r.outDir, "report.md")
	if err := writeFileAtomic(mdPath, renderMarkdown(report)); err != nil {
		return err
	}
	r.logger.Info("[report] Wrote %s", mdPath)

	jsonPath := filepath.Join(r.outDir, "report.json")
	data, err := renderJSON(report, time.Now().UTC())
	if err != nil {
		return err
	}
	if err := writeFileAtomic(jsonPath, data); err != nil {
		return err
	}
	r.logger.Info("[report] Wrote %s", jsonPath)

	xlsxPath := filepath.Join(r.outDir, "report.xlsx")
	xl, err := buildWorkbook(report)
	if err != nil {
		return err
	}
	defer func() { _ = xl.Close() }()
	if err := xl.SaveAs(xlsxPath); err != nil {
		return fmt.Errorf("report: save %q: %w", xlsxPath, err)
	}
	r.logger.Info("[report] Wrote %s", xlsxPath)

	return nil
}

func writeFileAtomic(path string, data []byte) error {
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("report: write %q: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("report: rename %q into place: %w", tmp, err)
	}
	return nil
}
