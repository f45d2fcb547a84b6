package importer

import (
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/model"
)

var countryCodeRe = regexp.MustCompile(`^[A-Z]{2}$`)

// Validator applies the business rules that decide whether a
// CandidateRecord is acceptable. Every rule is evaluated; a rejected
// row reports all of its violations, not just the first.
type Validator struct {
	minYear       int
	maxYearOffset int
	now           func() time.Time
	rules         []fieldRule
}

// fieldRule is one declarative validation rule. check returns nil when
// the rule passes.
type fieldRule struct {
	field string
	check func(v *Validator, c *model.CandidateRecord) *model.ValidationError
}

// NewValidator builds a Validator from import configuration.
func NewValidator(cfg config.ImportConfig) *Validator {
	v := &Validator{
		minYear:       cfg.MinYear,
		maxYearOffset: cfg.MaxYearOffset,
		now:           time.Now,
	}
	v.rules = buildRules()
	return v
}

// maxYear is the configured year ceiling, derived from the current year
// so it never silently expires.
func (v *Validator) maxYear() int {
	return v.now().Year() + v.maxYearOffset
}

// Validate evaluates every rule against c. rowNum is the 1-based data
// row number stamped onto each violation. Validation is a pure function
// of the candidate and the validator's configuration.
func (v *Validator) Validate(rowNum int, c *model.CandidateRecord) []model.ValidationError {
	var errs []model.ValidationError
	for _, r := range v.rules {
		if violation := r.check(v, c); violation != nil {
			violation.Row = rowNum
			violation.Field = r.field
			errs = append(errs, *violation)
		}
	}
	return errs
}

// Record builds the persisted record shape from a candidate that passed
// validation, applying the documented optional-field defaults:
// confidence falls back to Medium, the region display name to the
// region code. The import path always writes draft status.
func (v *Validator) Record(c *model.CandidateRecord) *model.EmissionFactor {
	confidence := model.Confidence(c.Confidence)
	if c.Confidence == "" {
		confidence = model.ConfidenceMedium
	}

	regionDisplay := c.RegionDisplayName
	if regionDisplay == "" {
		regionDisplay = c.Region
	}

	var pubDate string
	if c.PublicationDate != nil {
		pubDate = c.PublicationDate.Format("2006-01-02")
	}

	return &model.EmissionFactor{
		Category: model.Category{
			L1:          c.CategoryL1,
			L2:          c.CategoryL2,
			L3:          c.CategoryL3,
			DisplayName: c.DisplayNameLocal,
		},
		Geography: model.Geography{
			CountryCode:       c.CountryCode,
			Region:            c.Region,
			RegionDisplayName: regionDisplay,
		},
		Value: model.ValueInfo{
			Value:         *c.Value,
			Unit:          model.Unit(c.Unit),
			ReferenceYear: *c.ReferenceYear,
		},
		Source: model.Source{
			Organization:    c.Organization,
			Publication:     c.Publication,
			PublicationDate: pubDate,
			URL:             c.URL,
			Notes:           c.Notes,
		},
		Quality: model.QualityInfo{
			Grade:      model.Grade(c.QualityGrade),
			Confidence: confidence,
		},
		Status:    model.StatusDraft,
		CreatedBy: c.CreatedBy,
	}
}

func buildRules() []fieldRule {
	rules := []fieldRule{}

	// Required-field presence. Value and year check the raw cell text so
	// a present-but-unparseable cell is reported by the type rule below,
	// not as missing.
	required := []struct {
		field string
		get   func(c *model.CandidateRecord) string
	}{
		{FieldCategoryL1, func(c *model.CandidateRecord) string { return c.CategoryL1 }},
		{FieldCategoryL2, func(c *model.CandidateRecord) string { return c.CategoryL2 }},
		{FieldCategoryL3, func(c *model.CandidateRecord) string { return c.CategoryL3 }},
		{FieldDisplayName, func(c *model.CandidateRecord) string { return c.DisplayNameLocal }},
		{FieldCountryCode, func(c *model.CandidateRecord) string { return c.CountryCode }},
		{FieldRegion, func(c *model.CandidateRecord) string { return c.Region }},
		{FieldValue, func(c *model.CandidateRecord) string { return c.ValueRaw }},
		{FieldUnit, func(c *model.CandidateRecord) string { return c.Unit }},
		{FieldReferenceYear, func(c *model.CandidateRecord) string { return c.ReferenceYearRaw }},
		{FieldOrganization, func(c *model.CandidateRecord) string { return c.Organization }},
		{FieldQualityGrade, func(c *model.CandidateRecord) string { return c.QualityGrade }},
	}
	for _, req := range required {
		get := req.get
		rules = append(rules, fieldRule{
			field: req.field,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if get(c) == "" {
					return &model.ValidationError{Message: "is required"}
				}
				return nil
			},
		})
	}

	rules = append(rules,
		fieldRule{
			field: FieldValue,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.ValueRaw == "" {
					return nil
				}
				if c.Value == nil {
					return &model.ValidationError{Message: "must be a number", Value: c.ValueRaw}
				}
				if *c.Value <= 0 {
					return &model.ValidationError{Message: "must be greater than zero", Value: *c.Value}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldReferenceYear,
			check: func(v *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.ReferenceYearRaw == "" {
					return nil
				}
				if c.ReferenceYear == nil {
					return &model.ValidationError{Message: "must be an integer year", Value: c.ReferenceYearRaw}
				}
				if y := *c.ReferenceYear; y < v.minYear || y > v.maxYear() {
					return &model.ValidationError{
						Message: fmt.Sprintf("must be between %d and %d", v.minYear, v.maxYear()),
						Value:   y,
					}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldQualityGrade,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.QualityGrade == "" {
					return nil
				}
				if !model.Grade(c.QualityGrade).IsRecordGrade() {
					return &model.ValidationError{Message: "must be one of A, B, C, D", Value: c.QualityGrade}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldCountryCode,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.CountryCode == "" {
					return nil
				}
				if !countryCodeRe.MatchString(c.CountryCode) {
					return &model.ValidationError{Message: "must be a two-letter uppercase country code", Value: c.CountryCode}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldUnit,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.Unit == "" {
					return nil
				}
				if !model.Unit(c.Unit).IsValid() {
					return &model.ValidationError{
						Message: "is not a recognized unit: expected one of " + unitList(),
						Value:   c.Unit,
					}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldConfidence,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				// Optional: absence defaults to Medium in Record.
				if c.Confidence == "" {
					return nil
				}
				if !model.Confidence(c.Confidence).IsValid() {
					return &model.ValidationError{Message: "must be one of High, Medium, Low", Value: c.Confidence}
				}
				return nil
			},
		},
		fieldRule{
			field: FieldPublicationDate,
			check: func(_ *Validator, c *model.CandidateRecord) *model.ValidationError {
				if c.PublicationDateRaw == "" || c.PublicationDate != nil {
					return nil
				}
				return &model.ValidationError{Message: "must be a date in YYYY-MM-DD format", Value: c.PublicationDateRaw}
			},
		},
	)

	return rules
}

func unitList() string {
	units := model.RecognizedUnits()
	names := make([]string, len(units))
	for i, u := range units {
		names[i] = string(u)
	}
	return strings.Join(names, ", ")
}
