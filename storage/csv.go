package storage

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"umico-analytics/config"
	"umico-analytics/models"
)

// snapshotHeader is the canonical column order of the snapshot file.
// It matches the marketplace export format, so snapshots produced by
// older collection tooling stay readable.
var snapshotHeader = []string{
	"id", "name", "brand", "category_id", "category_name", "status",
	"retail_price", "old_price", "discount_pct", "seller_name",
	"seller_rating", "rating_value", "review_count", "in_stock",
	"installment_enabled", "max_installment_months", "image_url", "product_url",
}

// CSVWriter writes the cleaned snapshot to a CSV file.
// It is safe for concurrent use.
type CSVWriter struct {
	mu     sync.Mutex
	file   *os.File
	writer *csv.Writer
}

// NewCSVWriter creates (or truncates) the CSV file at the given path and
// writes the header row. Intermediate directories are created automatically.
func NewCSVWriter(path string) (*CSVWriter, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("csv: create output dir: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("csv: create file %q: %w", path, err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(snapshotHeader); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("csv: write header: %w", err)
	}
	w.Flush()

	return &CSVWriter{file: f, writer: w}, nil
}

// Write appends every cleaned listing to the snapshot file.
func (c *CSVWriter) Write(_ context.Context, listings []*models.Listing) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	for _, l := range listings {
		row := []string{
			strconv.FormatInt(l.ID, 10),
			l.Name,
			l.Brand,
			strconv.FormatInt(l.CategoryID, 10),
			l.CategoryName,
			l.Status,
			formatPrice(l.RetailPrice),
			formatPrice(l.OldPrice),
			strconv.FormatFloat(l.DiscountPct, 'f', 1, 64),
			l.SellerName,
			strconv.FormatFloat(l.SellerRating, 'f', -1, 64),
			strconv.FormatFloat(l.RatingValue, 'f', -1, 64),
			strconv.Itoa(l.ReviewCount),
			formatBool(l.InStock),
			formatBool(l.InstallmentEnabled),
			strconv.Itoa(l.MaxInstallmentMonths),
			l.ImageURL,
			l.ProductURL,
		}
		if err := c.writer.Write(row); err != nil {
			return fmt.Errorf("csv: write row: %w", err)
		}
	}

	c.writer.Flush()
	return c.writer.Error()
}

// Close flushes and closes the underlying file.
func (c *CSVWriter) Close() error {
	c.writer.Flush()
	return c.file.Close()
}

// formatPrice writes a zero price as an empty cell, the marker the
// export format uses for "offer carried no price".
func formatPrice(v float64) string {
	if v == 0 {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}

// formatBool matches the export format's capitalized booleans.
func formatBool(b bool) string {
	if b {
		return "True"
	}
	return "False"
}

// CSVReader loads a snapshot file back into listings, re-attaching the
// English category names, so reports can be rebuilt without a database
// or a fresh crawl.
type CSVReader struct {
	path       string
	categories *config.CategoryMap
}

func NewCSVReader(path string, categories *config.CategoryMap) *CSVReader {
	return &CSVReader{path: path, categories: categories}
}

// FetchAll reads every row of the snapshot. Rows without a parseable
// product ID are skipped, mirroring what cleaning would have dropped.
// The listings' fetch time is taken from the file's modification time.
func (r *CSVReader) FetchAll(_ context.Context) ([]*models.Listing, error) {
	f, err := os.Open(r.path)
	if err != nil {
		return nil, fmt.Errorf("csv: open snapshot %q: %w", r.path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("csv: stat snapshot: %w", err)
	}
	fetchedAt := info.ModTime().UTC()

	cr := csv.NewReader(f)
	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("csv: read header: %w", err)
	}

	col := make(map[string]int, len(header))
	for i, name := range header {
		col[strings.TrimSpace(name)] = i
	}
	for _, want := range snapshotHeader {
		if _, ok := col[want]; !ok {
			return nil, fmt.Errorf("csv: snapshot missing column %q", want)
		}
	}

	var listings []*models.Listing
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("csv: read row: %w", err)
		}

		id, err := strconv.ParseInt(strings.TrimSpace(record[col["id"]]), 10, 64)
		if err != nil || id <= 0 {
			continue
		}

		name := record[col["category_name"]]
		listings = append(listings, &models.Listing{
			ID:                   id,
			Name:                 record[col["name"]],
			Brand:                record[col["brand"]],
			CategoryID:           parseInt64(record[col["category_id"]]),
			CategoryName:         name,
			CategoryEN:           r.categories.Translate(name),
			Status:               record[col["status"]],
			RetailPrice:          parseFloat(record[col["retail_price"]]),
			OldPrice:             parseFloat(record[col["old_price"]]),
			DiscountPct:          parseFloat(record[col["discount_pct"]]),
			SellerName:           record[col["seller_name"]],
			SellerRating:         parseFloat(record[col["seller_rating"]]),
			RatingValue:          parseFloat(record[col["rating_value"]]),
			ReviewCount:          int(parseInt64(record[col["review_count"]])),
			InStock:              parseBool(record[col["in_stock"]]),
			InstallmentEnabled:   parseBool(record[col["installment_enabled"]]),
			MaxInstallmentMonths: int(parseInt64(record[col["max_installment_months"]])),
			ImageURL:             record[col["image_url"]],
			ProductURL:           record[col["product_url"]],
			FetchedAt:            fetchedAt,
		})
	}

	return listings, nil
}

// Close exists to satisfy SnapshotReader; the file handle is scoped to
// FetchAll.
func (r *CSVReader) Close() error { return nil }

func parseFloat(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return v
}

func parseInt64(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	// Exports from spreadsheet tooling sometimes carry int columns as
	// floats ("12.0").
	if v, err := strconv.ParseInt(s, 10, 64); err == nil {
		return v
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil {
		return int64(f)
	}
	return 0
}

func parseBool(s string) bool {
	switch strings.TrimSpace(strings.ToLower(s)) {
	case "true", "1", "t", "yes":
		return true
	}
	return false
}
