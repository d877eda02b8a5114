package prediction

import (
	"testing"
)

func testValidator() *Validator {
	return NewValidator(map[string]bool{
		testCirculatory: true,
		testBurns:       true,
	})
}

func validRaw() map[string]interface{} {
	return map[string]interface{}{
		FieldHospitalCounty:  "Albany",
		FieldFacilityName:    "Albany Medical Center",
		FieldAgeGroup:        "70 or Older",
		FieldGender:          "M",
		FieldRace:            "White",
		FieldEthnicity:       "Not Span/Hispanic",
		FieldAdmissionType:   "Emergency",
		FieldDisposition:     "Home or Self Care",
		FieldMDCDescription:  testCirculatory,
		FieldSeverityCode:    float64(3),
		FieldMedicalSurgical: "Surgical",
		FieldPaymentTypology: "Medicare",
		FieldEDIndicator:     "Y",
	}
}

func fieldErrorFor(verr *ValidationError, field string) bool {
	for _, f := range verr.Fields {
		if f.Field == field {
			return true
		}
	}
	return false
}

func TestParseRecord_Valid(t *testing.T) {
	rec, verr := testValidator().ParseRecord(validRaw())
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr.Fields)
	}
	if rec.HospitalCounty != "Albany" {
		t.Errorf("unexpected county %q", rec.HospitalCounty)
	}
	if rec.SeverityCode != 3 {
		t.Errorf("unexpected severity %d", rec.SeverityCode)
	}
	if rec.ComorbidityCount != nil || rec.PriorAdmissions != nil {
		t.Error("optional fields should be nil when absent")
	}
}

func TestParseRecord_ReportsAllErrorsAtOnce(t *testing.T) {
	raw := validRaw()
	delete(raw, FieldHospitalCounty)
	raw[FieldAgeGroup] = "25 to 35"
	raw[FieldGender] = "X"
	raw[FieldSeverityCode] = float64(7)

	rec, verr := testValidator().ParseRecord(raw)
	if rec != nil {
		t.Fatal("expected nil record on validation failure")
	}
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 4 {
		t.Fatalf("expected 4 field errors, got %d: %v", len(verr.Fields), verr.Fields)
	}
	for _, field := range []string{FieldHospitalCounty, FieldAgeGroup, FieldGender, FieldSeverityCode} {
		if !fieldErrorFor(verr, field) {
			t.Errorf("expected an error for %q", field)
		}
	}
}

func TestParseRecord_UnknownDiagnosisGroup(t *testing.T) {
	raw := validRaw()
	raw[FieldMDCDescription] = "Diseases of the Imagination"

	_, verr := testValidator().ParseRecord(raw)
	if verr == nil {
		t.Fatal("expected validation error")
	}
	if len(verr.Fields) != 1 || !fieldErrorFor(verr, FieldMDCDescription) {
		t.Fatalf("expected a single MDC description error, got %v", verr.Fields)
	}
}

func TestParseRecord_SeverityBounds(t *testing.T) {
	for _, sev := range []float64{0, 5, -1} {
		raw := validRaw()
		raw[FieldSeverityCode] = sev
		if _, verr := testValidator().ParseRecord(raw); verr == nil {
			t.Errorf("severity %v should be rejected", sev)
		}
	}
	for _, sev := range []float64{1, 2, 3, 4} {
		raw := validRaw()
		raw[FieldSeverityCode] = sev
		if _, verr := testValidator().ParseRecord(raw); verr != nil {
			t.Errorf("severity %v should be accepted: %v", sev, verr.Fields)
		}
	}
}

func TestParseRecord_NonIntegralSeverity(t *testing.T) {
	raw := validRaw()
	raw[FieldSeverityCode] = 2.5
	if _, verr := testValidator().ParseRecord(raw); verr == nil {
		t.Fatal("expected error for non-integral severity")
	}
}

func TestParseRecord_SeverityAsString(t *testing.T) {
	raw := validRaw()
	raw[FieldSeverityCode] = "3"
	if _, verr := testValidator().ParseRecord(raw); verr == nil {
		t.Fatal("expected error for string severity")
	}
}

func TestParseRecord_OptionalFields(t *testing.T) {
	raw := validRaw()
	raw[FieldComorbidityCount] = float64(5)
	raw[FieldPriorAdmissions] = float64(2)

	rec, verr := testValidator().ParseRecord(raw)
	if verr != nil {
		t.Fatalf("unexpected validation error: %v", verr.Fields)
	}
	if rec.ComorbidityCount == nil || *rec.ComorbidityCount != 5 {
		t.Error("expected comorbidity count 5")
	}
	if rec.PriorAdmissions == nil || *rec.PriorAdmissions != 2 {
		t.Error("expected prior admissions 2")
	}
}

func TestParseRecord_OptionalFieldBounds(t *testing.T) {
	raw := validRaw()
	raw[FieldComorbidityCount] = float64(MaxComorbidityCount + 1)
	if _, verr := testValidator().ParseRecord(raw); verr == nil {
		t.Error("expected error for out-of-range comorbidity count")
	}

	raw = validRaw()
	raw[FieldPriorAdmissions] = float64(-1)
	if _, verr := testValidator().ParseRecord(raw); verr == nil {
		t.Error("expected error for negative prior admissions")
	}
}

func TestParseRecord_EmptyCounty(t *testing.T) {
	raw := validRaw()
	raw[FieldHospitalCounty] = ""
	if _, verr := testValidator().ParseRecord(raw); verr == nil {
		t.Fatal("expected error for empty county")
	}
}

func TestRequiredFields_Count(t *testing.T) {
	if got := len(RequiredFields()); got != 13 {
		t.Errorf("expected 13 required fields, got %d", got)
	}
}

func TestLegalValues(t *testing.T) {
	ages := LegalValues(FieldAgeGroup)
	if len(ages) != 5 {
		t.Errorf("expected 5 age groups, got %d", len(ages))
	}
	if LegalValues(FieldHospitalCounty) != nil {
		t.Error("open-world fields should have no enumerated values")
	}
	if LegalValues(FieldMDCDescription) != nil {
		t.Error("diagnosis group set lives in the artifact bundle, not here")
	}
}
