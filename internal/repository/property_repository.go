package repository

import (
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"property-web/internal/models"
)

// PropertyRepository is the canonical store of accepted properties and
// units.
type PropertyRepository struct {
	q sqlx.Ext
}

func NewPropertyRepository(db *sqlx.DB) *PropertyRepository {
	return &PropertyRepository{q: db}
}

// WithTx returns a copy of the repository scoped to the given transaction.
func (r *PropertyRepository) WithTx(tx *sqlx.Tx) *PropertyRepository {
	return &PropertyRepository{q: tx}
}

// GetPropertyByName looks a property up by its unique name. Returns
// (nil, nil) when no property matches.
func (r *PropertyRepository) GetPropertyByName(name string) (*models.Property, error) {
	var property models.Property
	query := "SELECT * FROM properties WHERE name = ? LIMIT 1"
	err := sqlx.Get(r.q, &property, query, name)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

// GetPropertyByAddress looks a property up by its unique four-part
// address. Returns (nil, nil) when no property matches.
func (r *PropertyRepository) GetPropertyByAddress(street, city, state, zip string) (*models.Property, error) {
	var property models.Property
	query := `SELECT * FROM properties
	          WHERE street_address = ? AND city = ? AND state = ? AND zip_code = ? LIMIT 1`
	err := sqlx.Get(r.q, &property, query, street, city, state, zip)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepository) GetPropertyByID(id int64) (*models.Property, error) {
	var property models.Property
	query := "SELECT * FROM properties WHERE id = ? LIMIT 1"
	err := sqlx.Get(r.q, &property, query, id)
	if err != nil {
		return nil, err
	}
	return &property, nil
}

func (r *PropertyRepository) GetProperties(limit, offset int) ([]models.Property, int, error) {
	var properties []models.Property
	var total int

	err := sqlx.Get(r.q, &total, "SELECT COUNT(*) FROM properties")
	if err != nil {
		return nil, 0, err
	}

	query := "SELECT * FROM properties ORDER BY name LIMIT ? OFFSET ?"
	err = sqlx.Select(r.q, &properties, query, limit, offset)
	if err != nil {
		return nil, 0, err
	}

	return properties, total, nil
}

func (r *PropertyRepository) CreateProperty(property *models.Property) error {
	query := `INSERT INTO properties (name, classification, street_address, city, state, zip_code)
	          VALUES (:name, :classification, :street_address, :city, :state, :zip_code)`
	result, err := sqlx.NamedExec(r.q, query, property)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	property.ID = id
	return nil
}

// UnitExists reports whether the property already has a unit with the
// given label.
func (r *PropertyRepository) UnitExists(propertyID int64, unitNumber string) (bool, error) {
	var count int
	query := "SELECT COUNT(*) FROM units WHERE property_id = ? AND unit_number = ?"
	err := sqlx.Get(r.q, &count, query, propertyID, unitNumber)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *PropertyRepository) GetUnitsByProperty(propertyID int64) ([]models.Unit, error) {
	var units []models.Unit
	query := "SELECT * FROM units WHERE property_id = ? ORDER BY unit_number"
	err := sqlx.Select(r.q, &units, query, propertyID)
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *PropertyRepository) CreateUnit(unit *models.Unit) error {
	query := `INSERT INTO units (property_id, unit_number)
	          VALUES (:property_id, :unit_number)`
	result, err := sqlx.NamedExec(r.q, query, unit)
	if err != nil {
		return err
	}
	id, _ := result.LastInsertId()
	unit.ID = id
	return nil
}
