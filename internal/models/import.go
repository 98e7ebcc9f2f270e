package models

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// BatchStatus is the lifecycle of one import batch.
type BatchStatus string

const (
	BatchPending   BatchStatus = "pending"
	BatchPreviewed BatchStatus = "previewed"
	BatchImported  BatchStatus = "imported"
	BatchFailed    BatchStatus = "failed"
)

func ParseBatchStatus(s string) (BatchStatus, error) {
	switch BatchStatus(s) {
	case BatchPending, BatchPreviewed, BatchImported, BatchFailed:
		return BatchStatus(s), nil
	}
	return "", fmt.Errorf("unknown batch status %q", s)
}

// RowStatus is the lifecycle of one staged row. A row always ends a batch
// as rejected or imported; verified only holds between validation and
// commit.
type RowStatus string

const (
	RowPending  RowStatus = "pending"
	RowVerified RowStatus = "verified"
	RowRejected RowStatus = "rejected"
	RowImported RowStatus = "imported"
)

func ParseRowStatus(s string) (RowStatus, error) {
	switch RowStatus(s) {
	case RowPending, RowVerified, RowRejected, RowImported:
		return RowStatus(s), nil
	}
	return "", fmt.Errorf("unknown row status %q", s)
}

// RowKind distinguishes staged property rows from staged unit rows.
type RowKind string

const (
	KindProperty RowKind = "property"
	KindUnit     RowKind = "unit"
)

func ParseRowKind(s string) (RowKind, error) {
	switch RowKind(s) {
	case KindProperty, KindUnit:
		return RowKind(s), nil
	}
	return "", fmt.Errorf("unknown row kind %q", s)
}

// ImportBatch is one staging session: created when a file is accepted,
// moved to previewed by validation, to imported by commit, to failed with
// a rollback on any fatal error in either phase.
type ImportBatch struct {
	ID                int64         `db:"id" json:"id"`
	BatchCode         string        `db:"batch_code" json:"batch_code"`
	Filename          string        `db:"filename" json:"filename"`
	FilePath          string        `db:"file_path" json:"file_path"`
	Status            BatchStatus   `db:"status" json:"status"`
	Summary           *BatchSummary `db:"summary" json:"summary,omitempty"`
	Errors            ErrorList     `db:"error_summary" json:"errors,omitempty"`
	PropertiesCreated int           `db:"properties_created" json:"properties_created"`
	UnitsCreated      int           `db:"units_created" json:"units_created"`
	CompletedAt       *time.Time    `db:"completed_at" json:"completed_at,omitempty"`
	CreatedAt         time.Time     `db:"created_at" json:"created_at"`
	UpdatedAt         time.Time     `db:"updated_at" json:"updated_at"`
}

// PropertyBreakdown summarizes one building inside a batch summary.
type PropertyBreakdown struct {
	Address   string `json:"address"`
	City      string `json:"city"`
	State     string `json:"state"`
	Zip       string `json:"zip"`
	UnitCount int    `json:"unit_count"`
	IsNew     bool   `json:"is_new"`
}

// BatchSummary is the summary document persisted on a batch after the
// preview phase and merged with created identifiers at commit.
type BatchSummary struct {
	TotalRows          int                          `json:"total_rows"`
	ByStatus           map[string]int               `json:"by_status"`
	ByRecordType       map[string]int               `json:"by_record_type"`
	Properties         int                          `json:"properties"`
	Units              int                          `json:"units"`
	VerifiedRows       int                          `json:"verified_rows"`
	RejectedRows       int                          `json:"rejected_rows"`
	NewProperties      int                          `json:"new_properties"`
	ExistingProperties int                          `json:"existing_properties"`
	PropertyBreakdown  map[string]PropertyBreakdown `json:"property_breakdown"`
	CreatedPropertyIDs []int64                      `json:"created_property_ids,omitempty"`
	CreatedUnitIDs     []int64                      `json:"created_unit_ids,omitempty"`
}

func (s BatchSummary) Value() (driver.Value, error) {
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (s *BatchSummary) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, s)
	case string:
		return json.Unmarshal([]byte(v), s)
	}
	return fmt.Errorf("cannot scan %T into BatchSummary", src)
}

// ErrorList is an ordered list of validation messages, persisted as a
// semicolon-joined string.
type ErrorList []string

func (e ErrorList) Value() (driver.Value, error) {
	return strings.Join(e, "; "), nil
}

func (e *ErrorList) Scan(src interface{}) error {
	var s string
	switch v := src.(type) {
	case nil:
		*e = nil
		return nil
	case []byte:
		s = string(v)
	case string:
		s = v
	default:
		return fmt.Errorf("cannot scan %T into ErrorList", src)
	}
	if s == "" {
		*e = nil
		return nil
	}
	*e = strings.Split(s, "; ")
	return nil
}

// RawData holds the untouched cell values of one source row plus its
// 1-based row number in the uploaded file.
type RawData struct {
	Values    map[string]string `json:"values"`
	SourceRow int               `json:"source_row"`
}

func (d RawData) Value() (driver.Value, error) {
	b, err := json.Marshal(d)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (d *RawData) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, d)
	case string:
		return json.Unmarshal([]byte(v), d)
	}
	return fmt.Errorf("cannot scan %T into RawData", src)
}

// ParsedFields holds the normalized field values of a staged row.
// UnitNumber is only set for unit rows.
type ParsedFields struct {
	BuildingName  string `json:"building_name"`
	StreetAddress string `json:"street_address"`
	City          string `json:"city"`
	State         string `json:"state"`
	ZipCode       string `json:"zip_code"`
	UnitNumber    string `json:"unit_number,omitempty"`
}

// NewPropertyFields builds the parsed field set for a property row.
func NewPropertyFields(name, street, city, state, zip string) ParsedFields {
	return ParsedFields{
		BuildingName:  name,
		StreetAddress: street,
		City:          city,
		State:         state,
		ZipCode:       zip,
	}
}

// NewUnitFields builds the parsed field set for a unit row.
func NewUnitFields(name, street, city, state, zip, unitNumber string) ParsedFields {
	f := NewPropertyFields(name, street, city, state, zip)
	f.UnitNumber = unitNumber
	return f
}

func (f ParsedFields) Value() (driver.Value, error) {
	b, err := json.Marshal(f)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (f *ParsedFields) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, f)
	case string:
		return json.Unmarshal([]byte(v), f)
	}
	return fmt.Errorf("cannot scan %T into ParsedFields", src)
}

// StagedRow is one candidate property or unit extracted from an uploaded
// file, owned by its batch.
type StagedRow struct {
	ID                 int64        `db:"id" json:"id"`
	BatchID            int64        `db:"batch_id" json:"batch_id"`
	Kind               RowKind      `db:"record_type" json:"record_type"`
	Original           RawData      `db:"original_data" json:"original_data"`
	Parsed             ParsedFields `db:"parsed_data" json:"parsed_data"`
	Status             RowStatus    `db:"status" json:"status"`
	Errors             ErrorList    `db:"errors" json:"errors,omitempty"`
	ExistingPropertyID *int64       `db:"existing_property_id" json:"existing_property_id,omitempty"`
	CreatedPropertyID  *int64       `db:"created_property_id" json:"created_property_id,omitempty"`
	CreatedAt          time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt          time.Time    `db:"updated_at" json:"updated_at"`
}

// RowsByKind filters staged rows by record kind.
func RowsByKind(rows []*StagedRow, kind RowKind) []*StagedRow {
	var out []*StagedRow
	for _, r := range rows {
		if r.Kind == kind {
			out = append(out, r)
		}
	}
	return out
}

// RowsByStatus filters staged rows by status.
func RowsByStatus(rows []*StagedRow, status RowStatus) []*StagedRow {
	var out []*StagedRow
	for _, r := range rows {
		if r.Status == status {
			out = append(out, r)
		}
	}
	return out
}
