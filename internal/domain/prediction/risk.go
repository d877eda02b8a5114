package prediction

import (
	"fmt"
	"strings"
)

// complexDiagnoses maps diagnosis groups with historically long stays to
// their impact level and approximate day range. Static, sourced from
// training-time analysis, never recomputed from the model.
var complexDiagnoses = map[string]struct {
	impact string
	days   string
}{
	"Multiple Significant Trauma":   {"high", "+4-7 days"},
	"Burns":                         {"high", "+5-10 days"},
	"Mental Diseases and Disorders": {"medium", "+2-4 days"},
	"Newborns and Other Neonates with Conditions Originating in the Perinatal Period": {"medium", "+3-5 days"},
	"Diseases and Disorders of the Circulatory System":                                {"medium", "+1-3 days"},
	"Diseases and Disorders of the Respiratory System":                                {"medium", "+1-2 days"},
}

// postAcuteDispositions require discharge coordination that tends to extend
// the stay.
var postAcuteDispositions = map[string]bool{
	"Skilled Nursing Home":              true,
	"Inpatient Rehabilitation Facility": true,
}

// Analyze derives the ordered risk-factor list for a record. Rules are
// evaluated in a fixed order and the output order matches evaluation order;
// a record matching no rule yields an empty slice. Rule-based on the raw
// record only — the model's internal feature weights play no part.
func Analyze(rec *AttributeRecord) []RiskFactor {
	factors := []RiskFactor{}

	if rec.SeverityCode >= 3 {
		factors = append(factors, RiskFactor{
			Factor:      "High Clinical Severity",
			Description: fmt.Sprintf("Severity level %d indicates complex medical needs", rec.SeverityCode),
			Impact:      "high",
			ImpactDays:  "+2-4 days",
		})
	}

	switch rec.AgeGroup {
	case AgeGroup70Older:
		factors = append(factors, RiskFactor{
			Factor:      "Advanced Age",
			Description: "Patients 70 or older typically require longer recovery periods",
			Impact:      "medium",
			ImpactDays:  "+1-2 days",
		})
	case AgeGroup50To69:
		factors = append(factors, RiskFactor{
			Factor:      "Older Adult",
			Description: "Age may contribute to extended recovery time",
			Impact:      "low",
			ImpactDays:  "+0.5-1 day",
		})
	}

	switch rec.AdmissionType {
	case AdmissionEmergency:
		factors = append(factors, RiskFactor{
			Factor:      "Emergency Admission",
			Description: "Unplanned admissions often involve more complex conditions",
			Impact:      "medium",
			ImpactDays:  "+1-3 days",
		})
	case AdmissionTrauma:
		factors = append(factors, RiskFactor{
			Factor:      "Trauma Case",
			Description: "Traumatic injuries typically require intensive care",
			Impact:      "high",
			ImpactDays:  "+3-5 days",
		})
	}

	if rec.MedicalSurgical == MedSurgSurgical {
		factors = append(factors, RiskFactor{
			Factor:      "Surgical Procedure",
			Description: "Post-operative care and recovery time needed",
			Impact:      "medium",
			ImpactDays:  "+2-3 days",
		})
	}

	if rec.EDIndicator == "Y" {
		factors = append(factors, RiskFactor{
			Factor:      "Emergency Department Admission",
			Description: "Initial ED evaluation may indicate urgent condition",
			Impact:      "low",
			ImpactDays:  "+0.5-1 day",
		})
	}

	if dx, ok := complexDiagnoses[rec.MDCDescription]; ok {
		short := rec.MDCDescription
		if i := strings.Index(short, " and "); i > 0 {
			short = short[:i]
		}
		factors = append(factors, RiskFactor{
			Factor:      "Complex Diagnosis",
			Description: fmt.Sprintf("%s typically requires extended care", short),
			Impact:      dx.impact,
			ImpactDays:  dx.days,
		})
	}

	switch rec.PaymentTypology {
	case "Self-Pay", "Unknown":
		factors = append(factors, RiskFactor{
			Factor:      "Insurance Coverage",
			Description: "Insurance status may affect discharge planning",
			Impact:      "low",
			ImpactDays:  "+0.5-1 day",
		})
	case "Medicaid":
		factors = append(factors, RiskFactor{
			Factor:      "Medicaid Coverage",
			Description: "May require additional discharge planning resources",
			Impact:      "low",
			ImpactDays:  "+0.5 day",
		})
	}

	if postAcuteDispositions[rec.Disposition] {
		factors = append(factors, RiskFactor{
			Factor:      "Post-Acute Care Planning",
			Description: fmt.Sprintf("Discharge to %s requires coordination", rec.Disposition),
			Impact:      "medium",
			ImpactDays:  "+1-2 days",
		})
	}

	if rec.ComorbidityCount != nil && *rec.ComorbidityCount >= 5 {
		factors = append(factors, RiskFactor{
			Factor:      "High Comorbidity Burden",
			Description: fmt.Sprintf("%d documented comorbidities complicate treatment", *rec.ComorbidityCount),
			Impact:      "medium",
			ImpactDays:  "+1-3 days",
		})
	}

	if rec.PriorAdmissions != nil && *rec.PriorAdmissions >= 3 {
		factors = append(factors, RiskFactor{
			Factor:      "Frequent Hospitalizations",
			Description: "A history of repeat admissions is associated with longer stays",
			Impact:      "low",
			ImpactDays:  "+0.5-1 day",
		})
	}

	return factors
}
