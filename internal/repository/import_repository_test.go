package repository

import (
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-web/internal/models"
)

func TestCreateBatchAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_batches")).
		WithArgs("IMPORT-abcd1234", "buildings.xlsx", "./storage/uploads/IMPORT-abcd1234.xlsx", models.BatchPending).
		WillReturnResult(sqlmock.NewResult(5, 1))

	batch := &models.ImportBatch{
		BatchCode: "IMPORT-abcd1234",
		Filename:  "buildings.xlsx",
		FilePath:  "./storage/uploads/IMPORT-abcd1234.xlsx",
		Status:    models.BatchPending,
	}
	require.NoError(t, repo.CreateBatch(batch))
	assert.Equal(t, int64(5), batch.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkInsertRowsBackfillsIDs(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_rows")).
		WillReturnResult(sqlmock.NewResult(10, 2))

	rows := []*models.StagedRow{
		{
			BatchID:  5,
			Kind:     models.KindProperty,
			Original: models.RawData{Values: map[string]string{"Building Name": "Maple Court"}, SourceRow: 2},
			Parsed:   models.NewPropertyFields("Maple Court", "12 Maple St", "Springfield", "Illinois", "62704"),
			Status:   models.RowVerified,
		},
		{
			BatchID:  5,
			Kind:     models.KindUnit,
			Original: models.RawData{Values: map[string]string{"Unit": "Apt 101"}, SourceRow: 2},
			Parsed:   models.NewUnitFields("Maple Court", "12 Maple St", "Springfield", "Illinois", "62704", "101"),
			Status:   models.RowVerified,
		},
	}

	require.NoError(t, repo.BulkInsertRows(rows))

	// MySQL reports the first id of a multi-row insert; the rest follow
	// sequentially.
	assert.Equal(t, int64(10), rows[0].ID)
	assert.Equal(t, int64(11), rows[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkInsertRowsReportsInsertIDError(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO import_rows")).
		WillReturnResult(sqlmock.NewErrorResult(errors.New("no insert id")))

	rows := []*models.StagedRow{
		{
			BatchID:  5,
			Kind:     models.KindProperty,
			Original: models.RawData{Values: map[string]string{"Building Name": "Maple Court"}, SourceRow: 2},
			Parsed:   models.NewPropertyFields("Maple Court", "12 Maple St", "Springfield", "Illinois", "62704"),
			Status:   models.RowVerified,
		},
	}

	err := repo.BulkInsertRows(rows)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no insert id")
	assert.Zero(t, rows[0].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkInsertRowsEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	require.NoError(t, repo.BulkInsertRows(nil))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateRowStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_rows SET status = ? WHERE id IN (?, ?)")).
		WithArgs(models.RowImported, int64(10), int64(11)).
		WillReturnResult(sqlmock.NewResult(0, 2))

	require.NoError(t, repo.BulkUpdateRowStatus([]int64{10, 11}, models.RowImported))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestBulkUpdateRowStatusEmpty(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	require.NoError(t, repo.BulkUpdateRowStatus(nil, models.RowImported))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateBatchStatus(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE import_batches SET status = ? WHERE id = ?")).
		WithArgs(models.BatchFailed, int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateBatchStatus(5, models.BatchFailed))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRowsByBatchFiltered(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewImportRepository(db)

	rowColumns := []string{
		"id", "batch_id", "record_type", "original_data", "parsed_data",
		"status", "errors", "existing_property_id", "created_property_id",
		"created_at", "updated_at",
	}

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM import_rows WHERE batch_id = ? AND status = ? AND record_type = ?")).
		WithArgs(int64(5), models.RowRejected, models.KindUnit).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM import_rows WHERE batch_id = ? AND status = ? AND record_type = ?")).
		WithArgs(int64(5), models.RowRejected, models.KindUnit, 25, 0).
		WillReturnRows(sqlmock.NewRows(rowColumns).
			AddRow(11, 5, "unit", `{"values":{"Unit":"Apt 101"},"source_row":2}`,
				`{"building_name":"Maple Court","street_address":"12 Maple St","city":"Springfield","state":"Illinois","zip_code":"62704","unit_number":"101"}`,
				"rejected", `Unit "101" already exists for property "Maple Court"`, nil, nil, now, now))

	rows, total, err := repo.GetRowsByBatchFiltered(5, models.RowRejected, models.KindUnit, 25, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, rows, 1)
	assert.Equal(t, models.KindUnit, rows[0].Kind)
	assert.Equal(t, 2, rows[0].Original.SourceRow)
	assert.Equal(t, "101", rows[0].Parsed.UnitNumber)
	require.Len(t, rows[0].Errors, 1)
	assert.NoError(t, mock.ExpectationsWereMet())
}
