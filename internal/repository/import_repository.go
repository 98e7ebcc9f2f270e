package repository

import (
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"property-web/internal/models"
)

// ImportRepository is the staging store: import batches and their staged
// rows.
type ImportRepository struct {
	q sqlx.Ext
}

func NewImportRepository(db *sqlx.DB) *ImportRepository {
	return &ImportRepository{q: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *ImportRepository) WithTx(tx *sqlx.Tx) *ImportRepository {
	return &ImportRepository{q: tx}
}

// Import batches

func (r *ImportRepository) CreateBatch(batch *models.ImportBatch) error {
	query := `INSERT INTO import_batches (batch_code, filename, file_path, status)
	          VALUES (:batch_code, :filename, :file_path, :status)`
	result, err := sqlx.NamedExec(r.q, query, batch)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	batch.ID = id
	return nil
}

func (r *ImportRepository) GetBatchByID(id int64) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	query := "SELECT * FROM import_batches WHERE id = ? LIMIT 1"
	err := sqlx.Get(r.q, &batch, query, id)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *ImportRepository) GetBatchByCode(code string) (*models.ImportBatch, error) {
	var batch models.ImportBatch
	query := "SELECT * FROM import_batches WHERE batch_code = ? LIMIT 1"
	err := sqlx.Get(r.q, &batch, query, code)
	if err != nil {
		return nil, err
	}
	return &batch, nil
}

func (r *ImportRepository) GetBatches(limit, offset int) ([]models.ImportBatch, int, error) {
	var batches []models.ImportBatch
	var total int

	err := sqlx.Get(r.q, &total, "SELECT COUNT(*) FROM import_batches")
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM import_batches ORDER BY created_at DESC LIMIT ? OFFSET ?"
	err = sqlx.Select(r.q, &batches, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return batches, total, nil
}

func (r *ImportRepository) UpdateBatch(batch *models.ImportBatch) error {
	query := `UPDATE import_batches SET
	          status = :status,
	          summary = :summary,
	          error_summary = :error_summary,
	          properties_created = :properties_created,
	          units_created = :units_created,
	          completed_at = :completed_at
	          WHERE id = :id`
	_, err := sqlx.NamedExec(r.q, query, batch)
	return err
}

func (r *ImportRepository) UpdateBatchStatus(id int64, status models.BatchStatus) error {
	query := "UPDATE import_batches SET status = ? WHERE id = ?"
	_, err := r.q.Exec(query, status, id)
	return err
}

// Staged rows

// BulkInsertRows inserts staged rows in one multi-row statement and
// backfills their ids from the insert cursor.
func (r *ImportRepository) BulkInsertRows(rows []*models.StagedRow) error {
	if len(rows) == 0 {
		return nil
	}

	placeholders := make([]string, 0, len(rows))
	args := make([]interface{}, 0, len(rows)*7)
	for _, row := range rows {
		placeholders = append(placeholders, "(?, ?, ?, ?, ?, ?, ?)")
		args = append(args,
			row.BatchID,
			row.Kind,
			row.Original,
			row.Parsed,
			row.Status,
			row.Errors,
			row.ExistingPropertyID,
		)
	}

	query := fmt.Sprintf(`INSERT INTO import_rows
	        (batch_id, record_type, original_data, parsed_data, status, errors, existing_property_id)
	        VALUES %s`, strings.Join(placeholders, ", "))

	result, err := r.q.Exec(query, args...)
	if err != nil {
		return err
	}

	// MySQL returns the id of the first row of a multi-row insert.
	firstID, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read first inserted row id: %w", err)
	}
	for i, row := range rows {
		row.ID = firstID + int64(i)
	}
	return nil
}

// GetRowsByBatch returns every staged row of a batch in staging order.
func (r *ImportRepository) GetRowsByBatch(batchID int64) ([]*models.StagedRow, error) {
	var rows []*models.StagedRow
	query := "SELECT * FROM import_rows WHERE batch_id = ? ORDER BY id"
	err := sqlx.Select(r.q, &rows, query, batchID)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

// GetRowsByBatchFiltered returns a page of staged rows, optionally
// narrowed by status and record kind.
func (r *ImportRepository) GetRowsByBatchFiltered(batchID int64, status models.RowStatus, kind models.RowKind, limit, offset int) ([]*models.StagedRow, int, error) {
	where := "WHERE batch_id = ?"
	args := []interface{}{batchID}

	if status != "" {
		where += " AND status = ?"
		args = append(args, status)
	}
	if kind != "" {
		where += " AND record_type = ?"
		args = append(args, kind)
	}

	var total int
	err := sqlx.Get(r.q, &total, "SELECT COUNT(*) FROM import_rows "+where, args...)
	if err != nil {
		return nil, 0, err
	}

	var rows []*models.StagedRow
	query := "SELECT * FROM import_rows " + where + " ORDER BY id LIMIT ? OFFSET ?"
	args = append(args, limit, offset)
	err = sqlx.Select(r.q, &rows, query, args...)
	if err != nil {
		return nil, 0, err
	}

	return rows, total, nil
}

func (r *ImportRepository) UpdateRow(row *models.StagedRow) error {
	query := `UPDATE import_rows SET
	          status = :status,
	          errors = :errors,
	          existing_property_id = :existing_property_id,
	          created_property_id = :created_property_id
	          WHERE id = :id`
	_, err := sqlx.NamedExec(r.q, query, row)
	return err
}

// BulkUpdateRowStatus moves every row in ids to the given status.
func (r *ImportRepository) BulkUpdateRowStatus(ids []int64, status models.RowStatus) error {
	if len(ids) == 0 {
		return nil
	}

	query, args, err := sqlx.In("UPDATE import_rows SET status = ? WHERE id IN (?)", status, ids)
	if err != nil {
		return err
	}
	_, err = r.q.Exec(query, args...)
	return err
}

func (r *ImportRepository) DeleteRowsByBatch(batchID int64) error {
	_, err := r.q.Exec("DELETE FROM import_rows WHERE batch_id = ?", batchID)
	return err
}
