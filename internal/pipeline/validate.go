package pipeline

import (
	"energy-pipeline/internal/model"
	"energy-pipeline/pkg/utils"
	"errors"
	"fmt"
	"math"
	"strings"
)

// Column positions in the energy usage dataset (0-indexed)
const (
	colCommunityArea   = 0
	colBuildingType    = 2
	colBuildingSubtype = 3
	colTotalKWh        = 16
	colTotalTherms     = 29
	colTotalPopulation = 65
	multiUnitPrefix    = "Multi"
)

// ErrSkipRow marks a row that does not qualify for a report. It is dropped
// silently.
var ErrSkipRow = errors.New("row skipped")

// ErrNotFinite rejects NaN and infinite field values
var ErrNotFinite = errors.New("value is not finite")

// InvalidFieldError is returned when a required field is not a number.
// The row is dropped and logged.
type InvalidFieldError struct {
	Column int
	Value  string
	Err    error
}

func (e *InvalidFieldError) Error() string {
	return fmt.Sprintf("column %d: invalid number %q: %v", e.Column, e.Value, e.Err)
}

func (e *InvalidFieldError) Unwrap() error { return e.Err }

// Extractor pulls the grouping key and value a report needs out of a
// record. It returns ErrSkipRow or an *InvalidFieldError for rows the
// report must not count.
type Extractor func(rec model.Record) (key string, value float64, err error)

// ExtractBuildingKWh keys total kWh by building type.
func ExtractBuildingKWh(rec model.Record) (string, float64, error) {
	if len(rec) <= colTotalKWh || rec[colBuildingType] == "" || rec[colTotalKWh] == "" {
		return "", 0, ErrSkipRow
	}
	kwh, err := numericField(rec, colTotalKWh)
	if err != nil {
		return "", 0, err
	}
	return rec[colBuildingType], kwh, nil
}

// ExtractMultiUnitTherms keys therms per person by community area, for
// multi-unit buildings only.
func ExtractMultiUnitTherms(rec model.Record) (string, float64, error) {
	if len(rec) <= colTotalPopulation || rec[colCommunityArea] == "" || rec[colBuildingSubtype] == "" ||
		rec[colTotalTherms] == "" || rec[colTotalPopulation] == "" {
		return "", 0, ErrSkipRow
	}
	if !strings.HasPrefix(rec[colBuildingSubtype], multiUnitPrefix) {
		return "", 0, ErrSkipRow
	}
	perCapita, err := thermsPerPerson(rec)
	if err != nil {
		return "", 0, err
	}
	return rec[colCommunityArea], perCapita, nil
}

// ExtractThermsPerCapita keys therms per person by community area.
func ExtractThermsPerCapita(rec model.Record) (string, float64, error) {
	if len(rec) <= colTotalPopulation || rec[colCommunityArea] == "" ||
		rec[colTotalTherms] == "" || rec[colTotalPopulation] == "" {
		return "", 0, ErrSkipRow
	}
	perCapita, err := thermsPerPerson(rec)
	if err != nil {
		return "", 0, err
	}
	return rec[colCommunityArea], perCapita, nil
}

// thermsPerPerson divides total therms by total population. A population
// that is not strictly positive disqualifies the row.
func thermsPerPerson(rec model.Record) (float64, error) {
	therms, err := numericField(rec, colTotalTherms)
	if err != nil {
		return 0, err
	}
	population, err := numericField(rec, colTotalPopulation)
	if err != nil {
		return 0, err
	}
	if !(population > 0) {
		return 0, ErrSkipRow
	}
	return therms / population, nil
}

func numericField(rec model.Record, col int) (float64, error) {
	v, err := utils.ParseNumber(rec[col])
	if err != nil {
		return 0, &InvalidFieldError{Column: col, Value: rec[col], Err: err}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &InvalidFieldError{Column: col, Value: rec[col], Err: ErrNotFinite}
	}
	return v, nil
}
