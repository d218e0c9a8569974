package export

import (
	"encoding/csv"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"weatherdesk/internal/records"
	"weatherdesk/internal/weather"
)

func sampleRecords() []records.Record {
	created := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	return []records.Record{
		{
			ID:            1,
			LocationInput: "10001,US",
			ResolvedName:  "New York",
			Country:       "US",
			Lat:           40.75,
			Lon:           -73.99,
			StartDate:     time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
			EndDate:       time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC),
			DailyTemps: []weather.DailyTemperature{
				{Date: "2025-01-01", TMin: 2.1, TMax: 6.2},
				{Date: "2025-01-02", TMin: 1.4, TMax: 7.1},
			},
			CreatedAt: created,
			UpdatedAt: created,
		},
	}
}

func TestJSONExport(t *testing.T) {
	out, err := JSON(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}

	var decoded []map[string]interface{}
	if err := json.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("export is not valid JSON: %v", err)
	}
	if len(decoded) != 1 {
		t.Fatalf("expected 1 record, got %d", len(decoded))
	}
	if decoded[0]["start_date"] != "2025-01-01" {
		t.Errorf("expected ISO start_date, got %v", decoded[0]["start_date"])
	}
	temps, ok := decoded[0]["daily_temps"].([]interface{})
	if !ok || len(temps) != 2 {
		t.Errorf("expected 2 daily temps, got %v", decoded[0]["daily_temps"])
	}
}

func TestCSVExport(t *testing.T) {
	out, err := CSV(sampleRecords())
	if err != nil {
		t.Fatal(err)
	}

	rows, err := csv.NewReader(strings.NewReader(out)).ReadAll()
	if err != nil {
		t.Fatalf("export is not valid CSV: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d rows", len(rows))
	}
	if rows[0][0] != "id" || rows[0][1] != "location_input" {
		t.Errorf("unexpected header: %v", rows[0])
	}

	// Daily temps are a JSON string in their cell.
	tempsCol := -1
	for i, name := range rows[0] {
		if name == "daily_temps" {
			tempsCol = i
		}
	}
	if tempsCol == -1 {
		t.Fatal("missing daily_temps column")
	}
	var temps []weather.DailyTemperature
	if err := json.Unmarshal([]byte(rows[1][tempsCol]), &temps); err != nil {
		t.Fatalf("daily_temps cell is not valid JSON: %v", err)
	}
	if len(temps) != 2 {
		t.Errorf("expected 2 temps in cell, got %d", len(temps))
	}
}

func TestCSVExportEmpty(t *testing.T) {
	out, err := CSV(nil)
	if err != nil {
		t.Fatal(err)
	}
	if out != "" {
		t.Errorf("expected empty output for no records, got %q", out)
	}
}

func TestMarkdownExport(t *testing.T) {
	out := Markdown(sampleRecords())

	if !strings.HasPrefix(out, "# Weather Records") {
		t.Error("missing report title")
	}
	if !strings.Contains(out, "| 1 | 10001,US | New York |") {
		t.Errorf("missing record row:\n%s", out)
	}
	if strings.Contains(out, "2025-01-01\",\"tmin") {
		t.Error("markdown table must not embed daily temps")
	}
}

func TestMarkdownExportEmpty(t *testing.T) {
	out := Markdown(nil)
	if !strings.Contains(out, "_No records._") {
		t.Errorf("expected empty-state message, got %q", out)
	}
}
