package export

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"turfbook/internal/config"
	"turfbook/internal/domain"
	"turfbook/internal/models"
	"turfbook/internal/pricing"

	"github.com/rs/zerolog"
	"github.com/xuri/excelize/v2"
)

// Exporter serializes the booking store for download. The JSON form is a
// pass-through of the persisted layout; the Excel form is a human-readable
// table for venue staff.
type Exporter struct {
	store  domain.BookingStore
	cfg    config.ExportConfig
	logger zerolog.Logger
}

func NewExporter(st domain.BookingStore, cfg config.ExportConfig, logger zerolog.Logger) *Exporter {
	return &Exporter{store: st, cfg: cfg, logger: logger}
}

// JSON renders the full store unchanged, in the persisted field layout.
func (e *Exporter) JSON() ([]byte, error) {
	records := e.store.Records()
	if records == nil {
		records = []models.BookingRecord{}
	}
	return json.MarshalIndent(records, "", "  ")
}

// WriteJSON saves the JSON export under the export directory and returns the
// file path.
func (e *Exporter) WriteJSON() (string, error) {
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	data, err := e.JSON()
	if err != nil {
		return "", err
	}

	filePath := filepath.Join(e.cfg.Path, "turf-bookings.json")
	if err := os.WriteFile(filePath, data, 0o644); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("JSON export created")
	return filePath, nil
}

// Excel builds an XLSX workbook with one bookings sheet, sorted the way the
// bookings table renders (date, then start hour).
func (e *Exporter) Excel() (*excelize.File, error) {
	f := excelize.NewFile()

	sheetName := "Bookings"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("error creating sheet: %w", err)
	}
	f.SetActiveSheet(index)

	headers := []string{"ID", "Name", "Date", "Start", "Duration", "Turf", "Players", "Total", "Coupon"}
	for col, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(col+1, 1)
		_ = f.SetCellValue(sheetName, cell, h)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#DDEBF7"}, Pattern: 1},
		Font:      &excelize.Font{Bold: true},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	lastHeader, _ := excelize.CoordinatesToCellName(len(headers), 1)
	_ = f.SetCellStyle(sheetName, "A1", lastHeader, headerStyle)

	records := e.records()
	for i, rec := range records {
		row := i + 2
		coupon := ""
		if rec.Coupon != nil {
			coupon = *rec.Coupon
		}
		values := []interface{}{
			rec.ID,
			rec.Name,
			rec.Date,
			pricing.FormatHour(rec.Start),
			fmt.Sprintf("%dh", rec.Duration),
			rec.Turf.Label(),
			rec.Players,
			rec.Total,
			coupon,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row)
			_ = f.SetCellValue(sheetName, cell, v)
		}
	}

	_ = f.SetColWidth(sheetName, "A", "A", 16)
	_ = f.SetColWidth(sheetName, "B", "I", 14)
	_ = f.DeleteSheet("Sheet1")

	return f, nil
}

// WriteExcel saves the workbook under the export directory and returns the
// file path.
func (e *Exporter) WriteExcel() (string, error) {
	if err := os.MkdirAll(e.cfg.Path, 0o755); err != nil {
		return "", fmt.Errorf("error creating export directory: %w", err)
	}

	f, err := e.Excel()
	if err != nil {
		return "", err
	}
	defer f.Close()

	fileName := fmt.Sprintf("turf-bookings_%s.xlsx", time.Now().Format("2006-01-02"))
	filePath := filepath.Join(e.cfg.Path, fileName)
	if err := f.SaveAs(filePath); err != nil {
		return "", fmt.Errorf("error saving file: %w", err)
	}

	e.logger.Info().Str("file_path", filePath).Msg("Excel export created")
	return filePath, nil
}

func (e *Exporter) records() []models.BookingRecord {
	records := e.store.Records()
	sort.SliceStable(records, func(i, j int) bool {
		if records[i].Date != records[j].Date {
			return records[i].Date < records[j].Date
		}
		return records[i].Start < records[j].Start
	})
	return records
}
