package main

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

func main() {
	// Create new Excel file
	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Properties"
	index, err := f.NewSheet(sheetName)
	if err != nil {
		fmt.Printf("Error creating sheet: %v\n", err)
		return
	}

	// Set headers
	headers := []string{
		"Building Name", "Street Address", "Unit", "City", "State", "Zip Code",
	}

	// Write headers
	for i, header := range headers {
		cell := fmt.Sprintf("%s1", getColumnName(i))
		f.SetCellValue(sheetName, cell, header)
	}

	// Set header style
	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E0E0E0"}, Pattern: 1},
	})
	f.SetCellStyle(sheetName, "A1", fmt.Sprintf("%s1", getColumnName(len(headers)-1)), headerStyle)

	// Sample rows covering the main cases:
	// a multi-unit building appearing once per unit, a building with no
	// units, messy casing and whitespace, numeric-looking zip codes, a
	// duplicate unit, and a row with an unknown state.
	sampleData := [][]interface{}{
		{"Maple Court", "12 Maple St", "Apt 101", "Springfield", "IL", "62704"},
		{"Maple Court", "12 Maple St", "Apt 102", "springfield", "IL", "62704.0"},
		{"Maple Court", "12 Maple St", "#103", "Springfield", "IL", "62704"},
		{"Oak House", "9 Oak Ave.", "", "Portland", "OR", "97205"},
		{"  Pine  Lofts ", "44 Pine Rd", "Unit 2B", "Denver", "CO", "80203"},
		{"Pine Lofts", "44 Pine Rd", "unit 2B", "Denver", "CO", "80203"},
		{"Elm Towers", "7 Elm Blvd", "Suite 300", "Austin", "XX", "73301"},
	}

	// Write sample data
	for rowIdx, row := range sampleData {
		for colIdx, value := range row {
			cell := fmt.Sprintf("%s%d", getColumnName(colIdx), rowIdx+2)
			f.SetCellValue(sheetName, cell, value)
		}
	}

	// Auto-fit columns
	for i := range headers {
		col := getColumnName(i)
		f.SetColWidth(sheetName, col, col, 18)
	}

	// Remove default sheet and set active
	f.DeleteSheet("Sheet1")
	f.SetActiveSheet(index)

	outputPath := "sample_property_import.xlsx"
	if err := f.SaveAs(outputPath); err != nil {
		fmt.Printf("Error saving file: %v\n", err)
		return
	}

	fmt.Printf("Sample import file created: %s (%d rows)\n", outputPath, len(sampleData))
}

func getColumnName(index int) string {
	name, _ := excelize.ColumnNumberToName(index + 1)
	return name
}
