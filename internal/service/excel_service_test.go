package service

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestIngestRows(t *testing.T) {
	table := [][]string{
		{"Building Name", "Street Address", "Unit", "City", "State", "Zip Code", "Notes"},
		{"Maple Court", "12 Maple St", "Apt 101", "Springfield", "IL", "62704", "ignored"},
		{"", "  ", "", "", "", "", ""},
		{"Oak House", "9 Oak Ave", "", "Portland", "OR"},
	}

	svc := NewExcelService()
	rows, err := svc.IngestRows(table)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	// Source row numbers are 1-based file positions, the blank row keeps
	// its slot.
	assert.Equal(t, 2, rows[0].SourceRow)
	assert.Equal(t, 4, rows[1].SourceRow)

	assert.Equal(t, "Maple Court", rows[0].Values[HeaderBuildingName])
	assert.Equal(t, "Apt 101", rows[0].Values[HeaderUnit])
	assert.Equal(t, "ignored", rows[0].Values["Notes"])

	// Short rows read as empty cells for the trailing columns.
	assert.Equal(t, "", rows[1].Values[HeaderZipCode])
}

func TestIngestRowsMissingHeaders(t *testing.T) {
	table := [][]string{
		{"Building Name", "Street Address", "Unit", "City"},
		{"Maple Court", "12 Maple St", "Apt 101", "Springfield"},
	}

	svc := NewExcelService()
	_, err := svc.IngestRows(table)
	require.Error(t, err)

	var missingErr *MissingHeadersError
	require.True(t, errors.As(err, &missingErr))
	assert.Equal(t, []string{HeaderState, HeaderZipCode}, missingErr.Missing)
	assert.Contains(t, err.Error(), "missing required headers")
}

func TestIngestRowsIgnoresHeaderOrder(t *testing.T) {
	table := [][]string{
		{"Zip Code", "State", "City", "Unit", "Street Address", "Building Name"},
		{"62704", "IL", "Springfield", "", "12 Maple St", "Maple Court"},
	}

	svc := NewExcelService()
	rows, err := svc.IngestRows(table)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Maple Court", rows[0].Values[HeaderBuildingName])
	assert.Equal(t, "62704", rows[0].Values[HeaderZipCode])
}

func TestIngestRowsEmptyTable(t *testing.T) {
	svc := NewExcelService()
	_, err := svc.IngestRows(nil)

	var missingErr *MissingHeadersError
	require.True(t, errors.As(err, &missingErr))
	assert.Len(t, missingErr.Missing, 6)
}
