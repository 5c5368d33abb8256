package pricefeed

import (
	"context"
	"encoding/csv"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"smacross/internal/series"
)

// CSVProvider reads daily closes from a local file with "date,close" rows.
// A header row is skipped if present. Rows outside the requested range are
// ignored.
type CSVProvider struct {
	Path string
}

func NewCSVProvider(path string) *CSVProvider {
	return &CSVProvider{Path: path}
}

func (c *CSVProvider) Name() string { return "csv" }

func (c *CSVProvider) FetchDailyCloses(ctx context.Context, _ string, from, to time.Time) ([]series.PricePoint, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	f, err := os.Open(c.Path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", c.Path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = 2

	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", c.Path, err)
	}

	var points []series.PricePoint
	for i, row := range rows {
		if i == 0 && strings.EqualFold(strings.TrimSpace(row[0]), "date") {
			continue
		}
		date, err := time.Parse("2006-01-02", strings.TrimSpace(row[0]))
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad date %q: %w", c.Path, i+1, row[0], err)
		}
		close, err := strconv.ParseFloat(strings.TrimSpace(row[1]), 64)
		if err != nil {
			return nil, fmt.Errorf("%s row %d: bad close %q: %w", c.Path, i+1, row[1], err)
		}
		if date.Before(from) || date.After(to) {
			continue
		}
		points = append(points, series.PricePoint{Date: date.UTC(), Close: close})
	}
	return points, nil
}
