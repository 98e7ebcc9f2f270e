package service

import (
	"fmt"

	"property-web/internal/models"
)

// CanonicalStore is the read surface of the canonical property store the
// validator cross-references staged rows against. Lookups return nil
// without an error when nothing matches.
type CanonicalStore interface {
	GetPropertyByName(name string) (*models.Property, error)
	GetPropertyByAddress(street, city, state, zip string) (*models.Property, error)
	UnitExists(propertyID int64, unitNumber string) (bool, error)
}

// ConflictValidator assigns every staged row a terminal pre-commit status:
// verified when no validation message applies, rejected otherwise. Rows
// are checked against the canonical store and against sibling rows of the
// same batch in two sweeps, all property rows first, then all unit rows.
type ConflictValidator struct {
	store CanonicalStore
}

func NewConflictValidator(store CanonicalStore) *ConflictValidator {
	return &ConflictValidator{store: store}
}

// Validate runs both sweeps over the batch rows in staging order. Rows
// marked verified earlier in a sweep are the comparison set for later
// rows, so the first occurrence of a duplicate wins. Only store access
// failures return an error; those abort the whole phase.
func (v *ConflictValidator) Validate(rows []*models.StagedRow) error {
	var verifiedProperties []*models.StagedRow
	for _, row := range models.RowsByKind(rows, models.KindProperty) {
		if err := v.validatePropertyRow(row, verifiedProperties); err != nil {
			return err
		}
		if row.Status == models.RowVerified {
			verifiedProperties = append(verifiedProperties, row)
		}
	}

	var verifiedUnits []*models.StagedRow
	for _, row := range models.RowsByKind(rows, models.KindUnit) {
		if err := v.validateUnitRow(row, rows, verifiedUnits); err != nil {
			return err
		}
		if row.Status == models.RowVerified {
			verifiedUnits = append(verifiedUnits, row)
		}
	}

	return nil
}

func (v *ConflictValidator) validatePropertyRow(row *models.StagedRow, verified []*models.StagedRow) error {
	var msgs models.ErrorList
	f := row.Parsed

	msgs = appendRequired(msgs, HeaderBuildingName, f.BuildingName)
	msgs = appendRequired(msgs, HeaderStreetAddress, f.StreetAddress)
	msgs = appendRequired(msgs, HeaderCity, f.City)
	msgs = appendRequired(msgs, HeaderState, f.State)
	msgs = appendRequired(msgs, HeaderZipCode, f.ZipCode)

	if f.State != "" && !models.IsValidState(f.State) {
		msgs = append(msgs, fmt.Sprintf("State %q is not a recognized state", f.State))
	}

	var existing *models.Property
	if f.BuildingName != "" {
		var err error
		existing, err = v.store.GetPropertyByName(f.BuildingName)
		if err != nil {
			return fmt.Errorf("failed to look up property %q: %w", f.BuildingName, err)
		}
	}

	if existing != nil && propertyAddressEquals(existing, f) {
		// Exact canonical match: link it and skip every conflict check.
		id := existing.ID
		row.ExistingPropertyID = &id
		finishRow(row, msgs)
		return nil
	}

	// An explicit flag, not message inspection, decides whether the
	// address checks run.
	nameConflict := false

	if existing != nil {
		msgs = append(msgs, fmt.Sprintf("A property named %q already exists at a different address (%s)",
			f.BuildingName, formatAddress(existing.StreetAddress, existing.City, existing.State, existing.ZipCode)))
		nameConflict = true
	}
	if f.BuildingName != "" {
		for _, other := range verified {
			if other.Parsed.BuildingName == f.BuildingName && !addressEquals(other.Parsed, f) {
				msgs = append(msgs, fmt.Sprintf("Duplicate building name %q at a different address in row %d",
					f.BuildingName, other.Original.SourceRow))
				nameConflict = true
			}
		}
	}

	if !nameConflict {
		atAddress, err := v.store.GetPropertyByAddress(f.StreetAddress, f.City, f.State, f.ZipCode)
		if err != nil {
			return fmt.Errorf("failed to look up address %q: %w", f.StreetAddress, err)
		}
		if atAddress != nil && atAddress.Name != f.BuildingName {
			msgs = append(msgs, fmt.Sprintf("Another property (%q) already exists at this address", atAddress.Name))
		}
		for _, other := range verified {
			if addressEquals(other.Parsed, f) {
				msgs = append(msgs, fmt.Sprintf("Row %d in this import uses the same address", other.Original.SourceRow))
			}
		}
	}

	finishRow(row, msgs)
	return nil
}

func (v *ConflictValidator) validateUnitRow(row *models.StagedRow, all, verified []*models.StagedRow) error {
	var msgs models.ErrorList
	f := row.Parsed

	msgs = appendRequired(msgs, HeaderBuildingName, f.BuildingName)
	msgs = appendRequired(msgs, HeaderStreetAddress, f.StreetAddress)
	msgs = appendRequired(msgs, HeaderCity, f.City)
	msgs = appendRequired(msgs, HeaderState, f.State)
	msgs = appendRequired(msgs, HeaderZipCode, f.ZipCode)
	msgs = appendRequired(msgs, HeaderUnit, f.UnitNumber)

	// Resolve the parent building: canonical store first, then a staged
	// property row of this batch. The parent address the unit must agree
	// with comes from whichever resolves.
	var parent *models.ParsedFields
	var parentID *int64

	if f.BuildingName != "" {
		canonical, err := v.store.GetPropertyByName(f.BuildingName)
		if err != nil {
			return fmt.Errorf("failed to look up property %q: %w", f.BuildingName, err)
		}

		switch {
		case canonical != nil:
			fields := models.NewPropertyFields(canonical.Name, canonical.StreetAddress, canonical.City, canonical.State, canonical.ZipCode)
			parent = &fields
			id := canonical.ID
			parentID = &id
			row.ExistingPropertyID = &id
		default:
			batchRow := findPropertyRowByName(all, f.BuildingName)
			if batchRow == nil {
				msgs = append(msgs, fmt.Sprintf("No property named %q found in this import or the database", f.BuildingName))
			} else if batchRow.Status == models.RowRejected {
				msgs = append(msgs, fmt.Sprintf("Property %q failed validation in this import", f.BuildingName))
				finishRow(row, msgs)
				return nil
			} else {
				fields := batchRow.Parsed
				parent = &fields
				parentID = batchRow.ExistingPropertyID
			}
		}
	}

	if parent != nil {
		msgs = appendMismatch(msgs, HeaderStreetAddress, f.StreetAddress, parent.StreetAddress, f.BuildingName)
		msgs = appendMismatch(msgs, HeaderCity, f.City, parent.City, f.BuildingName)
		msgs = appendMismatch(msgs, HeaderState, f.State, parent.State, f.BuildingName)
		msgs = appendMismatch(msgs, HeaderZipCode, f.ZipCode, parent.ZipCode, f.BuildingName)
	}

	if f.BuildingName != "" && f.UnitNumber != "" {
		for _, other := range verified {
			if other.Parsed.BuildingName == f.BuildingName && other.Parsed.UnitNumber == f.UnitNumber {
				msgs = append(msgs, fmt.Sprintf("Unit %q is listed more than once for %q in this import",
					f.UnitNumber, f.BuildingName))
				break
			}
		}
		if parentID != nil {
			exists, err := v.store.UnitExists(*parentID, f.UnitNumber)
			if err != nil {
				return fmt.Errorf("failed to look up unit %q: %w", f.UnitNumber, err)
			}
			if exists {
				msgs = append(msgs, fmt.Sprintf("Unit %q already exists for property %q", f.UnitNumber, f.BuildingName))
			}
		}
	}

	finishRow(row, msgs)
	return nil
}

func finishRow(row *models.StagedRow, msgs models.ErrorList) {
	row.Errors = msgs
	if len(msgs) == 0 {
		row.Status = models.RowVerified
	} else {
		row.Status = models.RowRejected
	}
}

func appendRequired(msgs models.ErrorList, label, value string) models.ErrorList {
	if value == "" {
		msgs = append(msgs, fmt.Sprintf("%s is required", label))
	}
	return msgs
}

func appendMismatch(msgs models.ErrorList, label, got, want, building string) models.ErrorList {
	if got != want {
		msgs = append(msgs, fmt.Sprintf("%s does not match property %q (expected %q)", label, building, want))
	}
	return msgs
}

func findPropertyRowByName(rows []*models.StagedRow, name string) *models.StagedRow {
	for _, r := range rows {
		if r.Kind == models.KindProperty && r.Parsed.BuildingName == name {
			return r
		}
	}
	return nil
}

func addressEquals(a, b models.ParsedFields) bool {
	return a.StreetAddress == b.StreetAddress &&
		a.City == b.City &&
		a.State == b.State &&
		a.ZipCode == b.ZipCode
}

func propertyAddressEquals(p *models.Property, f models.ParsedFields) bool {
	return p.StreetAddress == f.StreetAddress &&
		p.City == f.City &&
		p.State == f.State &&
		p.ZipCode == f.ZipCode
}

func formatAddress(street, city, state, zip string) string {
	return fmt.Sprintf("%s, %s, %s %s", street, city, state, zip)
}
