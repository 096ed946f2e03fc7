// Package roster reads participant rosters from CSV or XLSX files.
//
// A roster must carry the columns name, course and date (matched
// case-insensitively, extra columns ignored). Rows are read lazily, one at a
// time, and each row is validated on its own: a bad row is reported through
// RowResult.Invalid without stopping the read.
package roster

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const (
	ColumnName   = "name"
	ColumnCourse = "course"
	ColumnDate   = "date"

	// CanonicalDateLayout is the single form every accepted date is normalized to.
	CanonicalDateLayout = "2006-01-02"
)

var RequiredColumns = []string{ColumnName, ColumnCourse, ColumnDate}

var (
	ErrSchema            = errors.New("roster schema error")
	ErrUnsupportedFormat = errors.New("unsupported roster format")
	ErrInvalidDate       = errors.New("invalid date")
)

// SchemaError reports required columns absent from the header row.
type SchemaError struct {
	Missing []string
}

func (e *SchemaError) Error() string {
	if len(e.Missing) == 0 {
		return "roster has no header row"
	}
	return fmt.Sprintf("roster is missing required column(s): %s", strings.Join(e.Missing, ", "))
}

func (e *SchemaError) Unwrap() error {
	return ErrSchema
}

type Participant struct {
	// Row is the 1-based data row number, header excluded.
	Row    int
	Name   string
	Course string
	Date   time.Time
}

func (p Participant) DateString() string {
	return p.Date.Format(CanonicalDateLayout)
}

// RowError marks one rejected roster row.
type RowError struct {
	Row    int    `json:"row" bson:"row"`
	Reason string `json:"reason" bson:"reason"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Reason)
}

// RowResult holds exactly one of Participant or Invalid.
type RowResult struct {
	Participant *Participant
	Invalid     *RowError
}

func (r RowResult) Valid() bool {
	return r.Participant != nil
}

func (r RowResult) Row() int {
	if r.Participant != nil {
		return r.Participant.Row
	}
	if r.Invalid != nil {
		return r.Invalid.Row
	}
	return 0
}
