// Package export flattens stored records into JSON, CSV and Markdown.
// Exporters are small and stateless: one row per record, with the daily
// temperature list serialized into a single cell where the format is flat.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"weatherdesk/internal/records"
)

// row is the flat, denormalized export view of one record.
type row struct {
	ID            int64         `json:"id"`
	LocationInput string        `json:"location_input"`
	ResolvedName  string        `json:"resolved_name"`
	Country       string        `json:"country"`
	State         string        `json:"state"`
	Lat           float64       `json:"lat"`
	Lon           float64       `json:"lon"`
	StartDate     string        `json:"start_date"`
	EndDate       string        `json:"end_date"`
	DailyTemps    []weatherTemp `json:"daily_temps"`
	CreatedAt     string        `json:"created_at"`
	UpdatedAt     string        `json:"updated_at"`
}

type weatherTemp struct {
	Date string  `json:"date"`
	TMin float64 `json:"tmin"`
	TMax float64 `json:"tmax"`
}

func toRow(rec records.Record) row {
	temps := make([]weatherTemp, 0, len(rec.DailyTemps))
	for _, t := range rec.DailyTemps {
		temps = append(temps, weatherTemp{Date: t.Date, TMin: t.TMin, TMax: t.TMax})
	}
	return row{
		ID:            rec.ID,
		LocationInput: rec.LocationInput,
		ResolvedName:  rec.ResolvedName,
		Country:       rec.Country,
		State:         rec.State,
		Lat:           rec.Lat,
		Lon:           rec.Lon,
		StartDate:     rec.StartDate.Format("2006-01-02"),
		EndDate:       rec.EndDate.Format("2006-01-02"),
		DailyTemps:    temps,
		CreatedAt:     rec.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     rec.UpdatedAt.Format(time.RFC3339),
	}
}

// JSON exports records as pretty-printed JSON.
func JSON(recs []records.Record) (string, error) {
	rows := make([]row, 0, len(recs))
	for _, rec := range recs {
		rows = append(rows, toRow(rec))
	}
	data, err := json.MarshalIndent(rows, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to encode records: %w", err)
	}
	return string(data), nil
}

var csvHeader = []string{
	"id", "location_input", "resolved_name", "country", "state",
	"lat", "lon", "start_date", "end_date", "daily_temps", "created_at", "updated_at",
}

// CSV exports one row per record. The daily temperature list becomes a JSON
// string in its cell.
func CSV(recs []records.Record) (string, error) {
	if len(recs) == 0 {
		return "", nil
	}

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write(csvHeader); err != nil {
		return "", fmt.Errorf("failed to write csv header: %w", err)
	}

	for _, rec := range recs {
		r := toRow(rec)
		temps, err := json.Marshal(r.DailyTemps)
		if err != nil {
			return "", fmt.Errorf("failed to encode daily temps: %w", err)
		}
		record := []string{
			fmt.Sprintf("%d", r.ID),
			r.LocationInput, r.ResolvedName, r.Country, r.State,
			fmt.Sprintf("%g", r.Lat), fmt.Sprintf("%g", r.Lon),
			r.StartDate, r.EndDate, string(temps), r.CreatedAt, r.UpdatedAt,
		}
		if err := w.Write(record); err != nil {
			return "", fmt.Errorf("failed to write csv row: %w", err)
		}
	}

	w.Flush()
	if err := w.Error(); err != nil {
		return "", fmt.Errorf("failed to flush csv: %w", err)
	}
	return buf.String(), nil
}

var markdownCols = []string{
	"id", "location_input", "resolved_name", "country", "state",
	"lat", "lon", "start_date", "end_date", "created_at", "updated_at",
}

// Markdown exports a simple report table. Daily temps are left out to keep
// the table readable; they remain available on the record detail endpoint.
func Markdown(recs []records.Record) string {
	if len(recs) == 0 {
		return "# Weather Records\n\n_No records._\n"
	}

	var b strings.Builder
	b.WriteString("# Weather Records\n\n")
	b.WriteString("| " + strings.Join(markdownCols, " | ") + " |\n")
	b.WriteString("|" + strings.Repeat(" --- |", len(markdownCols)) + "\n")

	for _, rec := range recs {
		r := toRow(rec)
		cells := []string{
			fmt.Sprintf("%d", r.ID),
			r.LocationInput, r.ResolvedName, r.Country, r.State,
			fmt.Sprintf("%g", r.Lat), fmt.Sprintf("%g", r.Lon),
			r.StartDate, r.EndDate, r.CreatedAt, r.UpdatedAt,
		}
		b.WriteString("| " + strings.Join(cells, " | ") + " |\n")
	}

	b.WriteString("\n## Notes\n- `daily_temps` is available via the record detail endpoint/page.\n")
	return b.String()
}
