package models

import (
	"fmt"
	"time"
)

// Classification of a property by how many rentable units it holds.
type Classification string

const (
	SingleFamily Classification = "single_family"
	MultiFamily  Classification = "multi_family"
)

func ParseClassification(s string) (Classification, error) {
	switch Classification(s) {
	case SingleFamily, MultiFamily:
		return Classification(s), nil
	}
	return "", fmt.Errorf("unknown classification %q", s)
}

type Property struct {
	ID             int64          `db:"id" json:"id"`
	Name           string         `db:"name" json:"name"`
	Classification Classification `db:"classification" json:"classification"`
	StreetAddress  string         `db:"street_address" json:"street_address"`
	City           string         `db:"city" json:"city"`
	State          string         `db:"state" json:"state"`
	ZipCode        string         `db:"zip_code" json:"zip_code"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`
}

type Unit struct {
	ID         int64     `db:"id" json:"id"`
	PropertyID int64     `db:"property_id" json:"property_id"`
	UnitNumber string    `db:"unit_number" json:"unit_number"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
	UpdatedAt  time.Time `db:"updated_at" json:"updated_at"`
}
