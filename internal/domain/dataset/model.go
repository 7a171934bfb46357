package dataset

import (
	"time"
)

// PatientRecord is one row of the population table, normalized: the birth
// date is a parsed calendar date and symptoms are split into an ordered list.
type PatientRecord struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	BirthDate         time.Time `json:"birth_date"`
	Age               int       `json:"age"`
	Gender            string    `json:"gender"`
	BloodGroup        string    `json:"blood_group"`
	InsuranceProvider string    `json:"insurance_provider"`
	HeightCM          float64   `json:"height_cm"`
	WeightKG          float64   `json:"weight_kg"`
	HeartRate         float64   `json:"heart_rate_bpm"`
	BloodOxygen       float64   `json:"blood_oxygen_pct"`
	SugarLevel        float64   `json:"sugar_level_mg_dl"`
	Symptoms          []string  `json:"symptoms"`
}

// PatientRef is the structured id/display pair handed to selection UIs.
// The core never encodes display metadata into the identifier itself.
type PatientRef struct {
	ID          string `json:"id"`
	DisplayName string `json:"display_name"`
}

// Summary describes the loaded table for consumers that render a dataset
// overview.
type Summary struct {
	Rows     int       `json:"rows"`
	Columns  []string  `json:"columns"`
	Source   string    `json:"source"`
	LoadedAt time.Time `json:"loaded_at"`
}
