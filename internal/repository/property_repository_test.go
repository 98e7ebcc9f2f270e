package repository

import (
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"property-web/internal/models"
)

func newMockDB(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return sqlx.NewDb(db, "sqlmock"), mock
}

func propertyColumns() []string {
	return []string{"id", "name", "classification", "street_address", "city", "state", "zip_code", "created_at", "updated_at"}
}

func TestGetPropertyByName(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	now := time.Now()
	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties WHERE name = ? LIMIT 1")).
		WithArgs("Ave Apts").
		WillReturnRows(sqlmock.NewRows(propertyColumns()).
			AddRow(42, "Ave Apts", "multi_family", "123 Main St", "Springfield", "Illinois", "62701", now, now))

	property, err := repo.GetPropertyByName("Ave Apts")
	require.NoError(t, err)
	require.NotNil(t, property)
	assert.Equal(t, int64(42), property.ID)
	assert.Equal(t, models.MultiFamily, property.Classification)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPropertyByNameNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT * FROM properties WHERE name = ? LIMIT 1")).
		WithArgs("Ghost Tower").
		WillReturnRows(sqlmock.NewRows(propertyColumns()))

	property, err := repo.GetPropertyByName("Ghost Tower")
	require.NoError(t, err)
	assert.Nil(t, property)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetPropertyByAddressNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectQuery("SELECT \\* FROM properties").
		WithArgs("1 New Rd", "Austin", "Texas", "73301").
		WillReturnRows(sqlmock.NewRows(propertyColumns()))

	property, err := repo.GetPropertyByAddress("1 New Rd", "Austin", "Texas", "73301")
	require.NoError(t, err)
	assert.Nil(t, property)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreatePropertyAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO properties")).
		WithArgs("Fresh House", models.SingleFamily, "1 New Rd", "Austin", "Texas", "73301").
		WillReturnResult(sqlmock.NewResult(7, 1))

	property := &models.Property{
		Name:           "Fresh House",
		Classification: models.SingleFamily,
		StreetAddress:  "1 New Rd",
		City:           "Austin",
		State:          "Texas",
		ZipCode:        "73301",
	}
	require.NoError(t, repo.CreateProperty(property))
	assert.Equal(t, int64(7), property.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUnitExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM units WHERE property_id = ? AND unit_number = ?")).
		WithArgs(int64(42), "101").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	exists, err := repo.UnitExists(42, "101")
	require.NoError(t, err)
	assert.True(t, exists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreateUnitAssignsID(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPropertyRepository(db)

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO units")).
		WithArgs(int64(42), "101").
		WillReturnResult(sqlmock.NewResult(3, 1))

	unit := &models.Unit{PropertyID: 42, UnitNumber: "101"}
	require.NoError(t, repo.CreateUnit(unit))
	assert.Equal(t, int64(3), unit.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}
