package handlers

import (
	"fmt"
	"net/http"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/eccleston-labs/lfg-hackathon/models"
)

// ExportReports exports all reports to an Excel workbook.
// GET /api/v1/reports/export
func (a *API) ExportReports(w http.ResponseWriter, r *http.Request) {
	reports, err := a.Store.ListReports(r.Context())
	if err != nil {
		http.Error(w, "Failed to fetch reports", http.StatusInternalServerError)
		return
	}

	f, err := createExportFile(reports)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	filename := fmt.Sprintf("reports-%s.xlsx", time.Now().Format("20060102-150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := f.Write(w); err != nil {
		http.Error(w, "Failed to write export", http.StatusInternalServerError)
	}
}

func createExportFile(reports []models.Report) (*excelize.File, error) {
	f := excelize.NewFile()
	sheetName := "Reports"

	index, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	titleStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{
			Bold: true,
			Size: 16,
		},
		Alignment: &excelize.Alignment{
			Horizontal: "left",
			Vertical:   "center",
		},
	})
	f.SetCellValue(sheetName, "A1", "Community Crime Reports")
	f.SetCellStyle(sheetName, "A1", "A1", titleStyle)
	f.SetRowHeight(sheetName, 1, 30)

	f.SetCellValue(sheetName, "A2", fmt.Sprintf("Generated: %s", time.Now().Format("2006-01-02 15:04:05")))

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})

	headers := []string{"ID", "Created", "Crime Type", "Postcode", "Description",
		"When", "People", "Vehicle", "Weapon", "Status", "Summary"}
	for i, h := range headers {
		cell, _ := excelize.CoordinatesToCellName(i+1, 4)
		f.SetCellValue(sheetName, cell, h)
		f.SetCellStyle(sheetName, cell, cell, headerStyle)
	}

	for row, report := range reports {
		summary := ""
		if report.AISummary != nil {
			summary = *report.AISummary
		}
		values := []interface{}{
			report.ID.String(),
			report.CreatedAt.Format("2006-01-02 15:04"),
			report.CrimeType,
			report.Postcode,
			report.RawText,
			report.TimeDescription,
			report.PeopleDescription,
			report.HasVehicle,
			report.HasWeapon,
			report.Status,
			summary,
		}
		for col, v := range values {
			cell, _ := excelize.CoordinatesToCellName(col+1, row+5)
			f.SetCellValue(sheetName, cell, v)
		}
	}

	return f, nil
}
