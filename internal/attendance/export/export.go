package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"time"

	"ms-attendance/internal/models"

	"github.com/xuri/excelize/v2"
)

const sheetName = "Attendance"

var header = []string{"Participant", "Email", "Event", "Code", "Confirmed At"}

func row(rec models.AttendanceRecord) []string {
	return []string{
		rec.ParticipantName,
		rec.ParticipantEmail,
		rec.EventTitle,
		rec.EventCode,
		rec.ConfirmedAt.UTC().Format(time.RFC3339),
	}
}

// WriteCSV serializes attendance records as comma-separated values.
func WriteCSV(w io.Writer, records []models.AttendanceRecord) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	for _, rec := range records {
		if err := cw.Write(row(rec)); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	cw.Flush()
	return cw.Error()
}

// WriteXLSX serializes attendance records as a single-sheet workbook
// with a bold header row.
func WriteXLSX(w io.Writer, records []models.AttendanceRecord) error {
	f := excelize.NewFile()
	defer f.Close()

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return fmt.Errorf("failed to create sheet: %w", err)
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	for col, name := range header {
		cell, err := excelize.CoordinatesToCellName(col+1, 1)
		if err != nil {
			return err
		}
		if err := f.SetCellValue(sheetName, cell, name); err != nil {
			return err
		}
	}

	style, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err == nil {
		endCell, _ := excelize.CoordinatesToCellName(len(header), 1)
		f.SetCellStyle(sheetName, "A1", endCell, style)
	}

	for i, rec := range records {
		for col, value := range row(rec) {
			cell, err := excelize.CoordinatesToCellName(col+1, i+2)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheetName, cell, value); err != nil {
				return err
			}
		}
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
