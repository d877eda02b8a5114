package prediction

import (
	"fmt"
	"math"
	"sort"
)

// AttributeRecord is the typed form of the 13 patient attributes the model
// was trained on, plus two optional numeric fields. Every downstream
// component operates on this type only; raw request maps never travel past
// the gateway.
type AttributeRecord struct {
	HospitalCounty     string `json:"Hospital County"`
	FacilityName       string `json:"Facility Name"`
	AgeGroup           string `json:"Age Group"`
	Gender             string `json:"Gender"`
	Race               string `json:"Race"`
	Ethnicity          string `json:"Ethnicity"`
	AdmissionType      string `json:"Type of Admission"`
	Disposition        string `json:"Patient Disposition"`
	MDCDescription     string `json:"APR MDC Description"`
	SeverityCode       int    `json:"APR Severity of Illness Code"`
	MedicalSurgical    string `json:"APR Medical Surgical Description"`
	PaymentTypology    string `json:"Payment Typology 1"`
	EDIndicator        string `json:"Emergency Department Indicator"`
	ComorbidityCount   *int   `json:"comorbidity_count,omitempty"`
	PriorAdmissions    *int   `json:"prior_admissions,omitempty"`
}

// Field keys as they appear on the wire.
const (
	FieldHospitalCounty   = "Hospital County"
	FieldFacilityName     = "Facility Name"
	FieldAgeGroup         = "Age Group"
	FieldGender           = "Gender"
	FieldRace             = "Race"
	FieldEthnicity        = "Ethnicity"
	FieldAdmissionType    = "Type of Admission"
	FieldDisposition      = "Patient Disposition"
	FieldMDCDescription   = "APR MDC Description"
	FieldSeverityCode     = "APR Severity of Illness Code"
	FieldMedicalSurgical  = "APR Medical Surgical Description"
	FieldPaymentTypology  = "Payment Typology 1"
	FieldEDIndicator      = "Emergency Department Indicator"
	FieldComorbidityCount = "comorbidity_count"
	FieldPriorAdmissions  = "prior_admissions"
)

// Optional numeric field bounds.
const (
	MaxComorbidityCount = 10
	MaxPriorAdmissions  = 50
)

// Age group values, ordered youngest to oldest.
const (
	AgeGroup0To17   = "0 to 17"
	AgeGroup18To29  = "18 to 29"
	AgeGroup30To49  = "30 to 49"
	AgeGroup50To69  = "50 to 69"
	AgeGroup70Older = "70 or Older"
)

var ageGroups = stringSet(
	AgeGroup0To17, AgeGroup18To29, AgeGroup30To49, AgeGroup50To69, AgeGroup70Older,
)

var genders = stringSet("M", "F")

var races = stringSet(
	"Black/African American", "Multi-racial", "Other Race", "White",
)

var ethnicities = stringSet(
	"Spanish/Hispanic", "Not Span/Hispanic", "Multi-ethnic", "Unknown",
)

// Admission type values.
const (
	AdmissionElective  = "Elective"
	AdmissionEmergency = "Emergency"
	AdmissionNewborn   = "Newborn"
	AdmissionTrauma    = "Trauma"
	AdmissionUrgent    = "Urgent"
)

var admissionTypes = stringSet(
	AdmissionElective, AdmissionEmergency, AdmissionNewborn,
	AdmissionTrauma, AdmissionUrgent, "Not Available",
)

var dispositions = stringSet(
	"Home or Self Care",
	"Home w/ Home Health Services",
	"Skilled Nursing Home",
	"Inpatient Rehabilitation Facility",
	"Short-term Hospital",
	"Psychiatric Hospital or Unit of Hosp",
	"Hospice - Home",
	"Hospice - Medical Facility",
	"Facility w/ Custodial/Supportive Care",
	"Federal Health Care Facility",
	"Court/Law Enforcement",
	"Cancer Center or Children's Hospital",
	"Critical Access Hospital",
	"Medicare Cert Long Term Care Hospital",
	"Medicaid Cert Nursing Facility",
	"Left Against Medical Advice",
	"Another Type Not Listed",
	"Expired",
)

const (
	MedSurgMedical  = "Medical"
	MedSurgSurgical = "Surgical"
)

var medicalSurgical = stringSet(MedSurgMedical, MedSurgSurgical, "Not Applicable")

var paymentTypologies = stringSet(
	"Blue Cross/Blue Shield",
	"Department of Corrections",
	"Federal/State/Local/VA",
	"Managed Care, Unspecified",
	"Medicaid",
	"Medicare",
	"Miscellaneous/Other",
	"Private Health Insurance",
	"Self-Pay",
	"Unknown",
)

var edIndicators = stringSet("Y", "N")

func stringSet(values ...string) map[string]bool {
	m := make(map[string]bool, len(values))
	for _, v := range values {
		m[v] = true
	}
	return m
}

// Validator checks raw request payloads against the record schema. The MDC
// description set is not static: it comes from the loaded artifact bundle so
// that validation and encoding can never disagree about the closed set.
type Validator struct {
	mdcDescriptions map[string]bool
}

func NewValidator(mdcDescriptions map[string]bool) *Validator {
	return &Validator{mdcDescriptions: mdcDescriptions}
}

// ParseRecord validates a raw payload and builds the typed record. It
// inspects every field before returning so the caller sees all problems at
// once, not just the first.
func (v *Validator) ParseRecord(raw map[string]interface{}) (*AttributeRecord, *ValidationError) {
	verr := &ValidationError{}
	rec := &AttributeRecord{}

	rec.HospitalCounty = requireString(raw, FieldHospitalCounty, verr)
	rec.FacilityName = requireString(raw, FieldFacilityName, verr)
	rec.AgeGroup = requireMember(raw, FieldAgeGroup, ageGroups, verr)
	rec.Gender = requireMember(raw, FieldGender, genders, verr)
	rec.Race = requireMember(raw, FieldRace, races, verr)
	rec.Ethnicity = requireMember(raw, FieldEthnicity, ethnicities, verr)
	rec.AdmissionType = requireMember(raw, FieldAdmissionType, admissionTypes, verr)
	rec.Disposition = requireMember(raw, FieldDisposition, dispositions, verr)
	rec.MDCDescription = requireMember(raw, FieldMDCDescription, v.mdcDescriptions, verr)
	rec.MedicalSurgical = requireMember(raw, FieldMedicalSurgical, medicalSurgical, verr)
	rec.PaymentTypology = requireMember(raw, FieldPaymentTypology, paymentTypologies, verr)
	rec.EDIndicator = requireMember(raw, FieldEDIndicator, edIndicators, verr)

	if sev, ok := requireInt(raw, FieldSeverityCode, verr); ok {
		if sev < 1 || sev > 4 {
			verr.add(FieldSeverityCode, "must be an integer between 1 and 4")
		} else {
			rec.SeverityCode = sev
		}
	}

	rec.ComorbidityCount = optionalBoundedInt(raw, FieldComorbidityCount, 0, MaxComorbidityCount, verr)
	rec.PriorAdmissions = optionalBoundedInt(raw, FieldPriorAdmissions, 0, MaxPriorAdmissions, verr)

	if len(verr.Fields) > 0 {
		return nil, verr
	}
	return rec, nil
}

func requireString(raw map[string]interface{}, field string, verr *ValidationError) string {
	val, ok := raw[field]
	if !ok || val == nil {
		verr.add(field, "is required")
		return ""
	}
	s, ok := val.(string)
	if !ok || s == "" {
		verr.add(field, "must be a non-empty string")
		return ""
	}
	return s
}

func requireMember(raw map[string]interface{}, field string, set map[string]bool, verr *ValidationError) string {
	val, ok := raw[field]
	if !ok || val == nil {
		verr.add(field, "is required")
		return ""
	}
	s, ok := val.(string)
	if !ok || s == "" {
		verr.add(field, "must be a non-empty string")
		return ""
	}
	if !set[s] {
		verr.add(field, fmt.Sprintf("%q is not a recognized value", s))
		return ""
	}
	return s
}

// requireInt accepts JSON numbers (which arrive as float64) and rejects
// non-integral values.
func requireInt(raw map[string]interface{}, field string, verr *ValidationError) (int, bool) {
	val, ok := raw[field]
	if !ok || val == nil {
		verr.add(field, "is required")
		return 0, false
	}
	n, ok := asInt(val)
	if !ok {
		verr.add(field, "must be an integer")
		return 0, false
	}
	return n, true
}

func optionalBoundedInt(raw map[string]interface{}, field string, min, max int, verr *ValidationError) *int {
	val, ok := raw[field]
	if !ok || val == nil {
		return nil
	}
	n, ok := asInt(val)
	if !ok {
		verr.add(field, "must be an integer")
		return nil
	}
	if n < min || n > max {
		verr.add(field, fmt.Sprintf("must be between %d and %d", min, max))
		return nil
	}
	return &n
}

func asInt(val interface{}) (int, bool) {
	switch n := val.(type) {
	case float64:
		if n != math.Trunc(n) {
			return 0, false
		}
		return int(n), true
	case int:
		return n, true
	default:
		return 0, false
	}
}

// RequiredFields lists the required wire keys in a stable order, used by the
// model-info endpoint.
func RequiredFields() []string {
	return []string{
		FieldHospitalCounty, FieldFacilityName, FieldAgeGroup, FieldGender,
		FieldRace, FieldEthnicity, FieldAdmissionType, FieldDisposition,
		FieldMDCDescription, FieldSeverityCode, FieldMedicalSurgical,
		FieldPaymentTypology, FieldEDIndicator,
	}
}

// LegalValues returns the closed value set for an enumerated field, sorted
// for stable output. The MDC description set lives in the artifact bundle
// and is not included here.
func LegalValues(field string) []string {
	var set map[string]bool
	switch field {
	case FieldAgeGroup:
		set = ageGroups
	case FieldGender:
		set = genders
	case FieldRace:
		set = races
	case FieldEthnicity:
		set = ethnicities
	case FieldAdmissionType:
		set = admissionTypes
	case FieldDisposition:
		set = dispositions
	case FieldMedicalSurgical:
		set = medicalSurgical
	case FieldPaymentTypology:
		set = paymentTypologies
	case FieldEDIndicator:
		set = edIndicators
	default:
		return nil
	}
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
