package service

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"property-web/internal/models"
	"property-web/internal/repository"
)

// Commit materializes the verified rows of a previewed batch into
// canonical properties and units as one all-or-nothing unit of work.
// Rows left pending or rejected are never touched; their destiny was
// decided at validation time. Any write failure rolls the whole commit
// back and marks the batch failed.
func (s *ImportService) Commit(batchID int64) (*models.ImportBatch, error) {
	batch, err := s.importRepo.GetBatchByID(batchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get batch: %w", err)
	}

	if batch.Status != models.BatchPreviewed {
		return nil, ErrBatchNotPreviewed
	}

	tx, err := s.db.Beginx()
	if err != nil {
		return nil, s.failBatch(batch, fmt.Errorf("failed to begin transaction: %w", err))
	}

	propertyRepo := s.propertyRepo.WithTx(tx)
	importRepo := s.importRepo.WithTx(tx)

	rows, err := importRepo.GetRowsByBatch(batch.ID)
	if err != nil {
		tx.Rollback()
		return nil, s.failBatch(batch, fmt.Errorf("failed to load staged rows: %w", err))
	}

	verifiedRows := models.RowsByStatus(rows, models.RowVerified)
	propertyRows := models.RowsByKind(verifiedRows, models.KindProperty)
	unitRows := models.RowsByKind(verifiedRows, models.KindUnit)

	unitCountByBuilding := make(map[string]int)
	for _, row := range unitRows {
		unitCountByBuilding[row.Parsed.BuildingName]++
	}

	// Step 1: create canonical properties for verified rows without an
	// existing match. One verified unit row is enough to classify the
	// building multi-family.
	createdByName := make(map[string]int64)
	var createdPropertyIDs []int64
	for _, row := range propertyRows {
		if row.ExistingPropertyID != nil {
			continue
		}

		classification := models.SingleFamily
		if unitCountByBuilding[row.Parsed.BuildingName] > 0 {
			classification = models.MultiFamily
		}

		property := &models.Property{
			Name:           row.Parsed.BuildingName,
			Classification: classification,
			StreetAddress:  row.Parsed.StreetAddress,
			City:           row.Parsed.City,
			State:          row.Parsed.State,
			ZipCode:        row.Parsed.ZipCode,
		}
		if err := propertyRepo.CreateProperty(property); err != nil {
			tx.Rollback()
			return nil, s.failBatch(batch, fmt.Errorf("failed to create property %q: %w", property.Name, err))
		}

		createdByName[property.Name] = property.ID
		createdPropertyIDs = append(createdPropertyIDs, property.ID)

		row.CreatedPropertyID = &property.ID
		row.Status = models.RowImported
		if err := importRepo.UpdateRow(row); err != nil {
			tx.Rollback()
			return nil, s.failBatch(batch, fmt.Errorf("failed to update row %d: %w", row.ID, err))
		}
	}

	// Step 2: rows matched to an existing property need no canonical
	// write, only the status transition.
	var existingRowIDs []int64
	for _, row := range propertyRows {
		if row.ExistingPropertyID != nil {
			existingRowIDs = append(existingRowIDs, row.ID)
			row.Status = models.RowImported
		}
	}
	if err := importRepo.BulkUpdateRowStatus(existingRowIDs, models.RowImported); err != nil {
		tx.Rollback()
		return nil, s.failBatch(batch, fmt.Errorf("failed to import matched rows: %w", err))
	}

	// Step 3: create units, resolving each parent from the properties
	// created above, then the canonical store, then the row's own
	// existing-property link.
	var createdUnitIDs []int64
	var unitRowIDs []int64
	for _, row := range unitRows {
		parentID, err := s.resolveUnitParent(propertyRepo, createdByName, row)
		if err != nil {
			tx.Rollback()
			return nil, s.failBatch(batch, err)
		}

		unit := &models.Unit{PropertyID: parentID, UnitNumber: row.Parsed.UnitNumber}
		if err := propertyRepo.CreateUnit(unit); err != nil {
			tx.Rollback()
			return nil, s.failBatch(batch, fmt.Errorf("failed to create unit %q: %w", unit.UnitNumber, err))
		}

		createdUnitIDs = append(createdUnitIDs, unit.ID)
		unitRowIDs = append(unitRowIDs, row.ID)
		row.Status = models.RowImported
	}
	if err := importRepo.BulkUpdateRowStatus(unitRowIDs, models.RowImported); err != nil {
		tx.Rollback()
		return nil, s.failBatch(batch, fmt.Errorf("failed to import unit rows: %w", err))
	}

	// Step 4: finalize the batch.
	now := time.Now()
	batch.Status = models.BatchImported
	batch.CompletedAt = &now
	batch.PropertiesCreated = len(createdPropertyIDs)
	batch.UnitsCreated = len(createdUnitIDs)
	if batch.Summary == nil {
		summary := BuildBatchSummary(rows)
		batch.Summary = &summary
	}
	batch.Summary.CreatedPropertyIDs = createdPropertyIDs
	batch.Summary.CreatedUnitIDs = createdUnitIDs
	if err := importRepo.UpdateBatch(batch); err != nil {
		tx.Rollback()
		return nil, s.failBatch(batch, fmt.Errorf("failed to finalize batch: %w", err))
	}

	if err := tx.Commit(); err != nil {
		return nil, s.failBatch(batch, fmt.Errorf("failed to commit import: %w", err))
	}

	s.log.WithFields(logrus.Fields{
		"batch":      batch.BatchCode,
		"properties": batch.PropertiesCreated,
		"units":      batch.UnitsCreated,
	}).Info("import committed")

	return batch, nil
}

func (s *ImportService) resolveUnitParent(propertyRepo *repository.PropertyRepository, createdByName map[string]int64, row *models.StagedRow) (int64, error) {
	name := row.Parsed.BuildingName

	if id, ok := createdByName[name]; ok {
		return id, nil
	}

	property, err := propertyRepo.GetPropertyByName(name)
	if err != nil {
		return 0, fmt.Errorf("failed to look up property %q: %w", name, err)
	}
	if property != nil {
		return property.ID, nil
	}

	if row.ExistingPropertyID != nil {
		return *row.ExistingPropertyID, nil
	}

	return 0, fmt.Errorf("no parent property found for unit %q of %q", row.Parsed.UnitNumber, name)
}

// BuildBatchSummary computes the summary document for a batch from its
// staged rows.
func BuildBatchSummary(rows []*models.StagedRow) models.BatchSummary {
	summary := models.BatchSummary{
		TotalRows:         len(rows),
		ByStatus:          make(map[string]int),
		ByRecordType:      make(map[string]int),
		PropertyBreakdown: make(map[string]models.PropertyBreakdown),
	}

	for _, row := range rows {
		summary.ByStatus[string(row.Status)]++
		summary.ByRecordType[string(row.Kind)]++
	}

	propertyRows := models.RowsByKind(rows, models.KindProperty)
	unitRows := models.RowsByKind(rows, models.KindUnit)
	summary.Properties = len(propertyRows)
	summary.Units = len(unitRows)
	summary.VerifiedRows = len(models.RowsByStatus(rows, models.RowVerified))
	summary.RejectedRows = len(models.RowsByStatus(rows, models.RowRejected))

	verifiedUnitCount := make(map[string]int)
	for _, row := range models.RowsByStatus(unitRows, models.RowVerified) {
		verifiedUnitCount[row.Parsed.BuildingName]++
	}

	for _, row := range propertyRows {
		isNew := row.ExistingPropertyID == nil
		if row.Status == models.RowVerified || row.Status == models.RowImported {
			if isNew {
				summary.NewProperties++
			} else {
				summary.ExistingProperties++
			}
		}

		summary.PropertyBreakdown[row.Parsed.BuildingName] = models.PropertyBreakdown{
			Address:   row.Parsed.StreetAddress,
			City:      row.Parsed.City,
			State:     row.Parsed.State,
			Zip:       row.Parsed.ZipCode,
			UnitCount: verifiedUnitCount[row.Parsed.BuildingName],
			IsNew:     isNew,
		}
	}

	return summary
}
