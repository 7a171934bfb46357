package narrative

import (
	"fmt"
	"strings"

	"github.com/vitalytics/vitalytics/internal/domain/dataset"
	"github.com/vitalytics/vitalytics/internal/domain/metrics"
)

// AnalysisRequest bundles the data embedded into the prompt. It is
// constructed fresh per analysis invocation and never mutated.
type AnalysisRequest struct {
	Record     dataset.PatientRecord
	Stats      map[metrics.Vital]metrics.Statistics
	Deviations map[metrics.Vital]float64
}

// The five instruction headings are a contract with consumers: presentation
// splits the model response on them. Order and wording stay fixed.
var instructionSections = []string{
	"OVERALL HEALTH STATUS",
	"SYMPTOM ANALYSIS",
	"PRESCRIPTION SUGGESTIONS",
	"LIFESTYLE RECOMMENDATIONS",
	"PRECAUTIONS & FOLLOW-UP",
}

// BuildPrompt renders the fixed analysis template around the request data.
// The same inputs always produce a byte-identical prompt: vitals are
// serialized in tracked order, never by map iteration.
func BuildPrompt(req AnalysisRequest) string {
	var b strings.Builder
	r := req.Record

	b.WriteString("### PATIENT DATA:\n")
	fmt.Fprintf(&b, "Patient ID: %s\n", r.ID)
	fmt.Fprintf(&b, "Name: %s\n", r.Name)
	fmt.Fprintf(&b, "Age: %d\n", r.Age)
	fmt.Fprintf(&b, "Gender: %s\n", r.Gender)
	fmt.Fprintf(&b, "Blood Group: %s\n", r.BloodGroup)
	fmt.Fprintf(&b, "Insurance Provider: %s\n", r.InsuranceProvider)
	fmt.Fprintf(&b, "Height (cm): %.1f\n", r.HeightCM)
	fmt.Fprintf(&b, "Weight (kg): %.1f\n", r.WeightKG)
	fmt.Fprintf(&b, "Symptoms: %s\n", strings.Join(r.Symptoms, ", "))

	for _, vital := range metrics.TrackedVitals() {
		value, _ := vital.ValueOf(r)
		stats := req.Stats[vital]
		fmt.Fprintf(&b, "%s: value=%.2f | population mean=%.2f median=%.2f min=%.2f max=%.2f",
			vital.Label(), value, stats.Mean, stats.Median, stats.Min, stats.Max)
		if dev, ok := req.Deviations[vital]; ok {
			fmt.Fprintf(&b, " | deviation=%+.2f%%", dev)
		} else {
			b.WriteString(" | deviation=n/a")
		}
		b.WriteString("\n")
	}

	b.WriteString("\n### INSTRUCTION:\n")
	b.WriteString("Analyze the patient data above against the population statistics and respond with exactly these sections:\n")
	for i, section := range instructionSections {
		fmt.Fprintf(&b, "%d. %s\n", i+1, section)
	}
	b.WriteString("\n### ANALYSIS:\n")

	return b.String()
}
