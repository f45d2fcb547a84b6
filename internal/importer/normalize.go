// Package importer implements the emission-factor ingestion pipeline:
// row normalization, rule validation and batch persistence with
// per-row failure isolation.
package importer

import (
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/carbonref/factor-cli/internal/model"
)

// Canonical field addresses used in validation errors and API payloads.
const (
	FieldCategoryL1        = "category_l1"
	FieldCategoryL2        = "category_l2"
	FieldCategoryL3        = "category_l3"
	FieldDisplayName       = "display_name"
	FieldCountryCode       = "country_code"
	FieldRegion            = "region"
	FieldRegionDisplayName = "region_display_name"
	FieldValue             = "value"
	FieldUnit              = "unit"
	FieldReferenceYear     = "reference_year"
	FieldOrganization      = "organization"
	FieldPublication       = "publication"
	FieldPublicationDate   = "publication_date"
	FieldURL               = "url"
	FieldNotes             = "notes"
	FieldQualityGrade      = "quality_grade"
	FieldConfidence        = "confidence"
)

// headerAliases maps the column labels accepted in source files onto
// canonical field addresses. Both the legacy Chinese template headers
// and English headers are recognized; lookup is case-insensitive for
// the latin labels.
var headerAliases = map[string]string{
	"活动分类l1":   FieldCategoryL1,
	"活动分类l2":   FieldCategoryL2,
	"活动分类l3":   FieldCategoryL3,
	"中文名称":     FieldDisplayName,
	"国家代码":     FieldCountryCode,
	"地区":       FieldRegion,
	"地区名称":     FieldRegionDisplayName,
	"排放值":      FieldValue,
	"单位":       FieldUnit,
	"参考年份":     FieldReferenceYear,
	"数据机构":     FieldOrganization,
	"出版物":      FieldPublication,
	"发布日期":     FieldPublicationDate,
	"网址":       FieldURL,
	"备注":       FieldNotes,
	"质量等级":     FieldQualityGrade,
	"置信度":      FieldConfidence,
	"category l1":         FieldCategoryL1,
	"category l2":         FieldCategoryL2,
	"category l3":         FieldCategoryL3,
	"category_l1":         FieldCategoryL1,
	"category_l2":         FieldCategoryL2,
	"category_l3":         FieldCategoryL3,
	"display name":        FieldDisplayName,
	"display_name":        FieldDisplayName,
	"country code":        FieldCountryCode,
	"country_code":        FieldCountryCode,
	"region":              FieldRegion,
	"region name":         FieldRegionDisplayName,
	"region_display_name": FieldRegionDisplayName,
	"value":               FieldValue,
	"emission value":      FieldValue,
	"unit":                FieldUnit,
	"reference year":      FieldReferenceYear,
	"reference_year":      FieldReferenceYear,
	"organization":        FieldOrganization,
	"publication":         FieldPublication,
	"publication date":    FieldPublicationDate,
	"publication_date":    FieldPublicationDate,
	"url":                 FieldURL,
	"notes":               FieldNotes,
	"quality grade":       FieldQualityGrade,
	"quality_grade":       FieldQualityGrade,
	"confidence":          FieldConfidence,
}

// dateLayouts are the calendar formats accepted for publication dates.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006-1-2",
	"2006/1/2",
	"2006.01.02",
}

// Normalize maps one raw header-keyed row into a CandidateRecord. Only
// syntactic coercion happens here: numbers and dates are parsed, enums
// stay raw strings. Cells that cannot be coerced keep their raw text so
// validation reports every problem of a row in one pass. Normalize is
// pure and never fails.
func Normalize(row model.RawRow, createdBy string) model.CandidateRecord {
	fields := make(map[string]string, len(row))
	for label, value := range row {
		if key, ok := canonicalField(label); ok {
			fields[key] = strings.TrimSpace(value)
		}
	}

	c := model.CandidateRecord{
		CategoryL1:         fields[FieldCategoryL1],
		CategoryL2:         fields[FieldCategoryL2],
		CategoryL3:         fields[FieldCategoryL3],
		DisplayNameLocal:   fields[FieldDisplayName],
		CountryCode:        fields[FieldCountryCode],
		Region:             fields[FieldRegion],
		RegionDisplayName:  fields[FieldRegionDisplayName],
		ValueRaw:           fields[FieldValue],
		Unit:               fields[FieldUnit],
		ReferenceYearRaw:   fields[FieldReferenceYear],
		Organization:       fields[FieldOrganization],
		Publication:        fields[FieldPublication],
		PublicationDateRaw: fields[FieldPublicationDate],
		URL:                fields[FieldURL],
		Notes:              fields[FieldNotes],
		QualityGrade:       fields[FieldQualityGrade],
		Confidence:         fields[FieldConfidence],
		CreatedBy:          createdBy,
	}

	if v, ok := parseDecimal(c.ValueRaw); ok {
		c.Value = &v
	}
	if y, ok := parseYear(c.ReferenceYearRaw); ok {
		c.ReferenceYear = &y
	}
	if d, ok := parseDate(c.PublicationDateRaw); ok {
		c.PublicationDate = &d
	}

	return c
}

// canonicalField resolves a column label to its canonical field address.
func canonicalField(label string) (string, bool) {
	key, ok := headerAliases[strings.ToLower(strings.TrimSpace(label))]
	return key, ok
}

// parseDecimal parses a decimal number in either the dot-decimal or
// comma-decimal convention, with optional thousands separators and
// surrounding whitespace. When both separators appear, the rightmost
// one is the decimal separator.
func parseDecimal(s string) (float64, bool) {
	s = strings.Map(func(r rune) rune {
		if r == ' ' || r == ' ' {
			return -1
		}
		return r
	}, s)
	if s == "" {
		return 0, false
	}

	comma := strings.LastIndex(s, ",")
	dot := strings.LastIndex(s, ".")

	switch {
	case comma >= 0 && dot >= 0:
		if comma > dot {
			// 1.234,56 — comma is decimal.
			s = strings.ReplaceAll(s, ".", "")
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234.56 — comma is thousands.
			s = strings.ReplaceAll(s, ",", "")
		}
	case comma >= 0:
		if strings.Count(s, ",") == 1 && len(s)-comma-1 != 3 {
			// 12,5 — comma is decimal.
			s = strings.Replace(s, ",", ".", 1)
		} else {
			// 1,234 or 1,234,567 — thousands grouping.
			s = strings.ReplaceAll(s, ",", "")
		}
	}

	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

// parseYear parses an integer year, tolerating the float rendering
// spreadsheet cells sometimes produce ("2024.0").
func parseYear(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	if y, err := strconv.Atoi(s); err == nil {
		return y, true
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f == math.Trunc(f) {
		return int(f), true
	}
	return 0, false
}

// parseDate tries each accepted calendar layout in order.
func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range dateLayouts {
		if d, err := time.Parse(layout, s); err == nil {
			return d, true
		}
	}
	return time.Time{}, false
}
