package service

import (
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"

	"property-web/internal/models"
)

// Required column headers, matched case-sensitively against row 1.
const (
	HeaderBuildingName  = "Building Name"
	HeaderStreetAddress = "Street Address"
	HeaderUnit          = "Unit"
	HeaderCity          = "City"
	HeaderState         = "State"
	HeaderZipCode       = "Zip Code"
)

// RequiredHeaders lists the six headers every import file must carry.
// Extra unrecognized columns are ignored, as is column order.
var RequiredHeaders = []string{
	HeaderBuildingName,
	HeaderStreetAddress,
	HeaderUnit,
	HeaderCity,
	HeaderState,
	HeaderZipCode,
}

// MissingHeadersError is fatal: the whole batch is aborted when any
// required header is absent from the header row.
type MissingHeadersError struct {
	Missing []string
}

func (e *MissingHeadersError) Error() string {
	return fmt.Sprintf("missing required headers: %s", strings.Join(e.Missing, ", "))
}

type ExcelService struct{}

func NewExcelService() *ExcelService {
	return &ExcelService{}
}

// ParseImportFile reads the first sheet of an Excel file into an ordered
// table of string cells. Row 1 is expected to hold the header labels.
func (s *ExcelService) ParseImportFile(filePath string) ([][]string, error) {
	f, err := excelize.OpenFile(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open Excel file: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found in Excel file")
	}

	rows, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, fmt.Errorf("failed to read rows: %w", err)
	}

	return rows, nil
}

// IngestRows turns a cell table into raw row records keyed by header
// label, keeping the 1-based source row number and skipping rows whose
// every trimmed cell is empty. A *MissingHeadersError is returned when any
// required header is absent from row 1.
func (s *ExcelService) IngestRows(table [][]string) ([]models.RawData, error) {
	var header []string
	if len(table) > 0 {
		header = table[0]
	}

	present := make(map[string]bool, len(header))
	for _, h := range header {
		present[strings.TrimSpace(h)] = true
	}

	var missing []string
	for _, required := range RequiredHeaders {
		if !present[required] {
			missing = append(missing, required)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingHeadersError{Missing: missing}
	}

	var out []models.RawData
	for i := 1; i < len(table); i++ {
		row := table[i]

		blank := true
		for _, cell := range row {
			if strings.TrimSpace(cell) != "" {
				blank = false
				break
			}
		}
		if blank {
			continue
		}

		values := make(map[string]string, len(header))
		for col, h := range header {
			label := strings.TrimSpace(h)
			if label == "" {
				continue
			}
			values[label] = getCellValue(row, col)
		}

		out = append(out, models.RawData{Values: values, SourceRow: i + 1})
	}

	return out, nil
}

// GenerateImportTemplate creates a template Excel file for property upload
func (s *ExcelService) GenerateImportTemplate(outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Properties"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	// Write headers
	for i, header := range RequiredHeaders {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(RequiredHeaders)-1)), headerStyle)

	// Add sample data
	sampleData := [][]interface{}{
		{"Maple Court", "12 Maple Ave", "1", "Springfield", "IL", "62701"},
		{"Maple Court", "12 Maple Ave", "2", "Springfield", "IL", "62701"},
		{"Oak House", "7 Oak St", "", "Springfield", "IL", "62702"},
	}

	for rowIdx, rowData := range sampleData {
		row := rowIdx + 2
		for colIdx, value := range rowData {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Set column widths
	f.SetColWidth(sheetName, "A", "A", 25)
	f.SetColWidth(sheetName, "B", "B", 30)
	f.SetColWidth(sheetName, "C", "C", 10)
	f.SetColWidth(sheetName, "D", "D", 20)
	f.SetColWidth(sheetName, "E", "E", 10)
	f.SetColWidth(sheetName, "F", "F", 12)

	// Add instructions
	instructionsStartRow := len(sampleData) + 4
	instructions := []string{
		"Instructions:",
		"1. Building Name: Name of the building (must be unique per address)",
		"2. Street Address: Street address of the building",
		"3. Unit: Unit label, leave empty for single-family buildings",
		"4. City: City name",
		"5. State: Two-letter state code or full state name",
		"6. Zip Code: 5-digit zip code",
		"",
		"Note: Do not modify the header row. Fill data starting from row 2.",
		"Repeat the building columns on every unit row of the same building.",
	}

	for i, instruction := range instructions {
		cell := fmt.Sprintf("A%d", instructionsStartRow+i)
		f.SetCellValue(sheetName, cell, instruction)
	}

	instructionStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true, Size: 10},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#F0F8FF"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", instructionsStartRow), fmt.Sprintf("A%d", instructionsStartRow), instructionStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// ExportErrorReport creates an Excel report with the rejected rows of a
// batch and their validation messages.
func (s *ExcelService) ExportErrorReport(batch *models.ImportBatch, rows []*models.StagedRow, outputPath string) error {
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Import Errors"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		return err
	}

	headers := []string{
		"Source Row", "Record Type", "Building Name", "Unit", "Errors",
	}

	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFE6E6"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	rejected := models.RowsByStatus(rows, models.RowRejected)
	for rowIdx, staged := range rejected {
		row := rowIdx + 2
		values := []interface{}{
			staged.Original.SourceRow,
			string(staged.Kind),
			staged.Parsed.BuildingName,
			staged.Parsed.UnitNumber,
			strings.Join(staged.Errors, "; "),
		}

		for colIdx, value := range values {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), row)
			f.SetCellValue(sheetName, cell, value)
		}

		errorStyle, _ := f.NewStyle(&excelize.Style{
			Fill: excelize.Fill{Type: "pattern", Color: []string{"#FFFFCC"}, Pattern: 1},
		})
		f.SetCellStyle(sheetName, fmt.Sprintf("A%d", row), fmt.Sprintf("%s%d", getColumnName(len(headers)-1), row), errorStyle)
	}

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "B", 15)
	f.SetColWidth(sheetName, "C", "C", 30)
	f.SetColWidth(sheetName, "D", "D", 10)
	f.SetColWidth(sheetName, "E", "E", 70)

	// Add summary section
	summaryStartRow := len(rejected) + 4
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow), "Import Summary")
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+1), "File:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+1), batch.Filename)
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+2), "Staged Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+2), len(rows))
	f.SetCellValue(sheetName, fmt.Sprintf("A%d", summaryStartRow+3), "Rejected Rows:")
	f.SetCellValue(sheetName, fmt.Sprintf("B%d", summaryStartRow+3), len(rejected))

	summaryStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
	})
	f.SetCellStyle(sheetName, fmt.Sprintf("A%d", summaryStartRow), fmt.Sprintf("A%d", summaryStartRow), summaryStyle)

	f.SetActiveSheet(index)
	f.DeleteSheet("Sheet1")

	return f.SaveAs(outputPath)
}

// Helper functions
func getCellValue(row []string, index int) string {
	if index < len(row) {
		return row[index]
	}
	return ""
}

func getColumnName(index int) string {
	result := ""
	for index >= 0 {
		result = string(rune('A'+(index%26))) + result
		index = index/26 - 1
	}
	return result
}
