package prediction

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/staycast/staycast/internal/platform/artifacts"
)

// FeatureVector is the ordered numeric representation of a record, aligned
// 1:1 with the column order the model was fit on.
type FeatureVector []float64

type slotKind int

const (
	slotOneHot slotKind = iota
	slotMDCCode
	slotSeverity
	slotLosPerMDC
	slotLosPerSeverity
	slotComorbidity
	slotPriorAdmissions
)

// slot is one compiled feature column: either a one-hot indicator for a
// (field, value) pair or a named numeric feature.
type slot struct {
	kind  slotKind
	field string                        // one-hot only
	value string                        // one-hot only
	get   func(*AttributeRecord) string // one-hot only
}

// categoricalFields maps each one-hot-encoded column prefix to its accessor.
// APR MDC Description is intentionally absent: it is replaced by the numeric
// MDC code before encoding.
var categoricalFields = map[string]func(*AttributeRecord) string{
	FieldHospitalCounty:  func(r *AttributeRecord) string { return r.HospitalCounty },
	FieldFacilityName:    func(r *AttributeRecord) string { return r.FacilityName },
	FieldAgeGroup:        func(r *AttributeRecord) string { return r.AgeGroup },
	FieldGender:          func(r *AttributeRecord) string { return r.Gender },
	FieldRace:            func(r *AttributeRecord) string { return r.Race },
	FieldEthnicity:       func(r *AttributeRecord) string { return r.Ethnicity },
	FieldAdmissionType:   func(r *AttributeRecord) string { return r.AdmissionType },
	FieldDisposition:     func(r *AttributeRecord) string { return r.Disposition },
	FieldMedicalSurgical: func(r *AttributeRecord) string { return r.MedicalSurgical },
	FieldPaymentTypology: func(r *AttributeRecord) string { return r.PaymentTypology },
	FieldEDIndicator:     func(r *AttributeRecord) string { return r.EDIndicator },
}

var numericFeatures = map[string]slotKind{
	"APR MDC Code":                 slotMDCCode,
	"APR Severity of Illness Code": slotSeverity,
	"LOS_per_MDC":                  slotLosPerMDC,
	"LOS_per_severity":             slotLosPerSeverity,
	FieldComorbidityCount:          slotComorbidity,
	FieldPriorAdmissions:           slotPriorAdmissions,
}

// Encoder turns an AttributeRecord into the exact feature vector the model
// expects. The trained column schema is compiled once at construction; a
// feature name that cannot be resolved fails the build rather than risking
// silent column misalignment at inference time.
type Encoder struct {
	slots       []slot
	mdcCodes    map[string]int
	mdcLos      map[int]float64
	severityLos map[int]float64
}

func NewEncoder(bundle *artifacts.Bundle) (*Encoder, error) {
	enc := &Encoder{
		slots:       make([]slot, 0, len(bundle.FeatureNames)),
		mdcCodes:    bundle.MDCCodes,
		mdcLos:      bundle.MDCLos,
		severityLos: bundle.SeverityLos,
	}
	for _, name := range bundle.FeatureNames {
		s, err := compileSlot(name)
		if err != nil {
			return nil, err
		}
		enc.slots = append(enc.slots, s)
	}
	return enc, nil
}

func compileSlot(name string) (slot, error) {
	if kind, ok := numericFeatures[name]; ok {
		return slot{kind: kind}, nil
	}
	// One-hot columns follow the training convention "<Field>_<Value>".
	// Field names themselves never contain underscores, so splitting on
	// the first underscore after a known prefix is unambiguous.
	for field, get := range categoricalFields {
		prefix := field + "_"
		if strings.HasPrefix(name, prefix) {
			return slot{
				kind:  slotOneHot,
				field: field,
				value: name[len(prefix):],
				get:   get,
			}, nil
		}
	}
	return slot{}, fmt.Errorf("feature %q does not match any known column", name)
}

// NumFeatures returns the compiled vector length.
func (e *Encoder) NumFeatures() int { return len(e.slots) }

// Encode produces the fixed-length ordered vector for a record. It is a pure
// function of the record and the static mapping tables. Categorical values
// unseen at training time yield all-zero indicators; a diagnosis description
// or lookup key missing from the tables is an integrity error.
func (e *Encoder) Encode(rec *AttributeRecord) (FeatureVector, error) {
	mdcCode, ok := e.mdcCodes[rec.MDCDescription]
	if !ok {
		return nil, &UnknownCategoryError{Field: FieldMDCDescription, Value: rec.MDCDescription}
	}
	losPerMDC, ok := e.mdcLos[mdcCode]
	if !ok {
		return nil, &UnmappedKeyError{Table: "MDC median LOS", Key: strconv.Itoa(mdcCode)}
	}
	losPerSeverity, ok := e.severityLos[rec.SeverityCode]
	if !ok {
		return nil, &UnmappedKeyError{Table: "severity median LOS", Key: strconv.Itoa(rec.SeverityCode)}
	}

	vec := make(FeatureVector, len(e.slots))
	for i, s := range e.slots {
		switch s.kind {
		case slotOneHot:
			if s.get(rec) == s.value {
				vec[i] = 1
			}
		case slotMDCCode:
			vec[i] = float64(mdcCode)
		case slotSeverity:
			vec[i] = float64(rec.SeverityCode)
		case slotLosPerMDC:
			vec[i] = losPerMDC
		case slotLosPerSeverity:
			vec[i] = losPerSeverity
		case slotComorbidity:
			// The model cannot take missing values; absent optional
			// numerics encode as zero.
			vec[i] = float64(intOrZero(rec.ComorbidityCount))
		case slotPriorAdmissions:
			vec[i] = float64(intOrZero(rec.PriorAdmissions))
		}
	}
	return vec, nil
}

func intOrZero(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

// NonZero returns the names and values of non-zero features, keyed by the
// trained column names. Used by the encode-debug endpoint.
func (e *Encoder) NonZero(names []string, vec FeatureVector) map[string]float64 {
	out := make(map[string]float64)
	for i, v := range vec {
		if v != 0 && i < len(names) {
			out[names[i]] = v
		}
	}
	return out
}
