package service

import (
	"strings"

	"property-web/internal/models"
)

// buildingKeySeparator joins the five normalized building fields into the
// dedup key. A field containing the separator itself can collide keys.
const buildingKeySeparator = "|"

// RowBuilder stages raw rows as pending property and unit rows. Building
// rows are deduplicated by their five-field key; unit rows are staged for
// every raw row with a unit value, duplicates included, so that the
// validator can report them instead of silently dropping them.
type RowBuilder struct{}

func NewRowBuilder() *RowBuilder {
	return &RowBuilder{}
}

// BuildingKey returns the dedup key for a set of parsed building fields.
func BuildingKey(f models.ParsedFields) string {
	return strings.Join([]string{
		f.BuildingName,
		f.StreetAddress,
		f.City,
		f.State,
		f.ZipCode,
	}, buildingKeySeparator)
}

// BuildRows turns ingested raw rows into staged rows. The first raw row
// seen for a building key becomes the representative property row.
func (b *RowBuilder) BuildRows(batchID int64, raw []models.RawData) []*models.StagedRow {
	seen := make(map[string]bool)
	var out []*models.StagedRow

	for _, r := range raw {
		fields := models.NewUnitFields(
			NormalizeBuildingName(r.Values[HeaderBuildingName]),
			NormalizeStreetAddress(r.Values[HeaderStreetAddress]),
			NormalizeCity(r.Values[HeaderCity]),
			NormalizeState(r.Values[HeaderState]),
			NormalizeZipCode(r.Values[HeaderZipCode]),
			NormalizeUnitNumber(r.Values[HeaderUnit]),
		)

		key := BuildingKey(fields)
		if !seen[key] {
			seen[key] = true
			out = append(out, &models.StagedRow{
				BatchID:  batchID,
				Kind:     models.KindProperty,
				Original: r,
				Parsed: models.NewPropertyFields(
					fields.BuildingName,
					fields.StreetAddress,
					fields.City,
					fields.State,
					fields.ZipCode,
				),
				Status: models.RowPending,
			})
		}

		if fields.UnitNumber != "" {
			out = append(out, &models.StagedRow{
				BatchID:  batchID,
				Kind:     models.KindUnit,
				Original: r,
				Parsed:   fields,
				Status:   models.RowPending,
			})
		}
	}

	return out
}
