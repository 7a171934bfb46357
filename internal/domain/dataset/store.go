package dataset

import (
	"encoding/csv"
	"errors"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

var (
	// ErrDataUnavailable means the population table is missing or cannot be
	// parsed. No computation is possible for the session.
	ErrDataUnavailable = errors.New("dataset unavailable")

	// ErrPatientNotFound means no row matches the given identifier exactly.
	ErrPatientNotFound = errors.New("patient not found")
)

// Required column headers, in canonical order.
const (
	ColPatientID         = "Patient ID"
	ColPatientName       = "Patient Name"
	ColBirthDate         = "Birth Date"
	ColAge               = "Age"
	ColGender            = "Gender"
	ColBloodGroup        = "Blood Group"
	ColInsuranceProvider = "Insurance Provider"
	ColHeightCM          = "Height (cm)"
	ColWeightKG          = "Weight (kg)"
	ColHeartRate         = "Heart Rate (bpm)"
	ColBloodOxygen       = "Blood Oxygen Level (%)"
	ColSugarLevel        = "Sugar Level (mg/dL)"
	ColSymptoms          = "Symptoms"
)

func requiredColumns() []string {
	return []string{
		ColPatientID, ColPatientName, ColBirthDate, ColAge, ColGender,
		ColBloodGroup, ColInsuranceProvider, ColHeightCM, ColWeightKG,
		ColHeartRate, ColBloodOxygen, ColSugarLevel, ColSymptoms,
	}
}

// Accepted Birth Date layouts, tried in order.
var birthDateLayouts = []string{
	"2006-01-02",
	"01/02/2006",
	"02-01-2006",
	time.RFC3339,
}

// Store holds the population table for the process lifetime. It is immutable
// after Load returns; lookups and aggregations borrow its rows read-only, so
// concurrent readers need no locking.
type Store struct {
	source   string
	loadedAt time.Time
	columns  []string
	records  []PatientRecord
	index    map[string]int
}

// Load reads a population table from a CSV or XLSX file. Rows are retained in
// file order. Any miss (file absent, unreadable, missing required column,
// unparseable cell, duplicate identifier) wraps ErrDataUnavailable.
func Load(path string) (*Store, error) {
	var (
		rows [][]string
		err  error
	)
	switch strings.ToLower(filepath.Ext(path)) {
	case ".csv":
		rows, err = readCSV(path)
	case ".xlsx":
		rows, err = readXLSX(path)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %q", ErrDataUnavailable, filepath.Ext(path))
	}
	if err != nil {
		return nil, err
	}
	return newStore(path, rows)
}

func readCSV(path string) ([][]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.TrimLeadingSpace = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %v", ErrDataUnavailable, path, err)
	}
	return rows, nil
}

func readXLSX(path string) ([][]string, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %v", ErrDataUnavailable, path, err)
	}
	defer f.Close()

	sheet := f.GetSheetName(0)
	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: read sheet %q: %v", ErrDataUnavailable, sheet, err)
	}
	return rows, nil
}

func newStore(source string, rows [][]string) (*Store, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: %s has no header row", ErrDataUnavailable, source)
	}

	header := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		header[strings.TrimSpace(name)] = i
	}
	for _, name := range requiredColumns() {
		if _, ok := header[name]; !ok {
			return nil, fmt.Errorf("%w: missing column %q", ErrDataUnavailable, name)
		}
	}

	s := &Store{
		source:   source,
		loadedAt: time.Now().UTC(),
		columns:  requiredColumns(),
		records:  make([]PatientRecord, 0, len(rows)-1),
		index:    make(map[string]int, len(rows)-1),
	}

	for n, row := range rows[1:] {
		rec, err := parseRecord(header, row)
		if err != nil {
			return nil, fmt.Errorf("%w: row %d: %v", ErrDataUnavailable, n+2, err)
		}
		if _, dup := s.index[rec.ID]; dup {
			return nil, fmt.Errorf("%w: duplicate patient id %q at row %d", ErrDataUnavailable, rec.ID, n+2)
		}
		s.index[rec.ID] = len(s.records)
		s.records = append(s.records, rec)
	}

	return s, nil
}

func parseRecord(header map[string]int, row []string) (PatientRecord, error) {
	id := cell(row, header[ColPatientID])
	if id == "" {
		return PatientRecord{}, fmt.Errorf("empty %q", ColPatientID)
	}

	birth, err := parseBirthDate(cell(row, header[ColBirthDate]))
	if err != nil {
		return PatientRecord{}, err
	}

	age, err := strconv.Atoi(cell(row, header[ColAge]))
	if err != nil {
		return PatientRecord{}, fmt.Errorf("parse %q: %v", ColAge, err)
	}

	height, err := parseMeasure(ColHeightCM, cell(row, header[ColHeightCM]))
	if err != nil {
		return PatientRecord{}, err
	}
	weight, err := parseMeasure(ColWeightKG, cell(row, header[ColWeightKG]))
	if err != nil {
		return PatientRecord{}, err
	}
	heartRate, err := parseMeasure(ColHeartRate, cell(row, header[ColHeartRate]))
	if err != nil {
		return PatientRecord{}, err
	}
	bloodOxygen, err := parseMeasure(ColBloodOxygen, cell(row, header[ColBloodOxygen]))
	if err != nil {
		return PatientRecord{}, err
	}
	sugar, err := parseMeasure(ColSugarLevel, cell(row, header[ColSugarLevel]))
	if err != nil {
		return PatientRecord{}, err
	}

	return PatientRecord{
		ID:                id,
		Name:              cell(row, header[ColPatientName]),
		BirthDate:         birth,
		Age:               age,
		Gender:            cell(row, header[ColGender]),
		BloodGroup:        cell(row, header[ColBloodGroup]),
		InsuranceProvider: cell(row, header[ColInsuranceProvider]),
		HeightCM:          height,
		WeightKG:          weight,
		HeartRate:         heartRate,
		BloodOxygen:       bloodOxygen,
		SugarLevel:        sugar,
		Symptoms:          splitSymptoms(cell(row, header[ColSymptoms])),
	}, nil
}

// cell returns the trimmed value at idx. XLSX readers drop trailing empty
// cells, so short rows are treated as empty values rather than errors.
func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}

func parseBirthDate(s string) (time.Time, error) {
	for _, layout := range birthDateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("parse %q: unrecognized date %q", ColBirthDate, s)
}

// parseMeasure enforces the record invariant: vitals and body measurements
// are finite, non-negative numbers.
func parseMeasure(col, s string) (float64, error) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %v", col, err)
	}
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("parse %q: value %v out of range", col, v)
	}
	return v, nil
}

func splitSymptoms(s string) []string {
	if s == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

// List returns id/display-name pairs in file order.
func (s *Store) List() []PatientRef {
	refs := make([]PatientRef, len(s.records))
	for i, r := range s.records {
		refs[i] = PatientRef{ID: r.ID, DisplayName: r.Name}
	}
	return refs
}

// Lookup returns the record whose identifier matches id exactly.
func (s *Store) Lookup(id string) (PatientRecord, error) {
	i, ok := s.index[id]
	if !ok {
		return PatientRecord{}, fmt.Errorf("%w: %q", ErrPatientNotFound, id)
	}
	return s.records[i], nil
}

// Records returns a copy of all rows in file order. Callers cannot mutate
// store state through the returned slice.
func (s *Store) Records() []PatientRecord {
	out := make([]PatientRecord, len(s.records))
	copy(out, s.records)
	return out
}

func (s *Store) Len() int { return len(s.records) }

func (s *Store) Columns() []string {
	out := make([]string, len(s.columns))
	copy(out, s.columns)
	return out
}

func (s *Store) Summary() Summary {
	return Summary{
		Rows:     len(s.records),
		Columns:  s.Columns(),
		Source:   s.source,
		LoadedAt: s.loadedAt,
	}
}
