package model

// Unit is a recognized physical unit for an emission factor value.
// The list is closed: validation rejects anything outside it.
type Unit string

const (
	UnitKgCO2ePerKWh  Unit = "kgCO2eq/kWh"
	UnitKgCO2ePerMJ   Unit = "kgCO2eq/MJ"
	UnitKgCO2ePerKm   Unit = "kgCO2eq/km"
	UnitKgCO2ePerTKm  Unit = "kgCO2eq/t·km"
	UnitKgCO2ePerKg   Unit = "kgCO2eq/kg"
	UnitKgCO2ePerT    Unit = "kgCO2eq/t"
	UnitKgCO2ePerM3   Unit = "kgCO2eq/m3"
	UnitKgCO2ePerL    Unit = "kgCO2eq/L"
	UnitTCO2ePerT     Unit = "tCO2eq/t"
	UnitKgCO2ePerUnit Unit = "kgCO2eq/unit"
)

// RecognizedUnits returns the closed unit enumeration in display order.
func RecognizedUnits() []Unit {
	return []Unit{
		UnitKgCO2ePerKWh,
		UnitKgCO2ePerMJ,
		UnitKgCO2ePerKm,
		UnitKgCO2ePerTKm,
		UnitKgCO2ePerKg,
		UnitKgCO2ePerT,
		UnitKgCO2ePerM3,
		UnitKgCO2ePerL,
		UnitTCO2ePerT,
		UnitKgCO2ePerUnit,
	}
}

// IsValid reports whether u is one of the recognized units.
func (u Unit) IsValid() bool {
	for _, known := range RecognizedUnits() {
		if u == known {
			return true
		}
	}
	return false
}

// Grade is a data-quality letter grade. Stored records carry A-D;
// F exists only as a computed assessment outcome.
type Grade string

const (
	GradeA Grade = "A"
	GradeB Grade = "B"
	GradeC Grade = "C"
	GradeD Grade = "D"
	GradeF Grade = "F"
)

// RecordGrades returns the grades a stored record may carry.
func RecordGrades() []Grade {
	return []Grade{GradeA, GradeB, GradeC, GradeD}
}

// IsRecordGrade reports whether g is assignable to a stored record.
func (g Grade) IsRecordGrade() bool {
	for _, known := range RecordGrades() {
		if g == known {
			return true
		}
	}
	return false
}

// Confidence is the qualitative confidence label on a record.
type Confidence string

const (
	ConfidenceHigh   Confidence = "High"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceLow    Confidence = "Low"
)

// IsValid reports whether c is a recognized confidence label.
func (c Confidence) IsValid() bool {
	return c == ConfidenceHigh || c == ConfidenceMedium || c == ConfidenceLow
}

// Status is the publication state of a stored record. Transitions are
// owned by the CRUD layer; the import path always writes draft.
type Status string

const (
	StatusDraft     Status = "draft"
	StatusPublished Status = "published"
	StatusArchived  Status = "archived"
)
