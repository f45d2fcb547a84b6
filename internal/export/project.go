// Package export projects stored emission factors into a fixed column
// layout and encodes it as CSV or XLSX.
package export

import (
	"math"
	"strconv"

	"github.com/rotisserie/eris"

	"github.com/carbonref/factor-cli/internal/config"
	"github.com/carbonref/factor-cli/internal/model"
)

// exportColumns is the ordered column layout shared by every encoder.
// The schema is fixed: a given projector always emits these columns in
// this order, regardless of which cells are empty.
var exportColumns = []string{
	"category_l1",
	"category_l2",
	"category_l3",
	"display_name",
	"country_code",
	"region",
	"region_display_name",
	"value",
	"unit",
	"reference_year",
	"organization",
	"publication",
	"publication_date",
	"quality_grade",
	"confidence",
	"created_at",
	"updated_at",
}

// headerLabels localizes column headers. The zh set matches the legacy
// import template headers, so an export re-imports without edits.
var headerLabels = map[string]map[string]string{
	"en": {
		"category_l1":         "Category L1",
		"category_l2":         "Category L2",
		"category_l3":         "Category L3",
		"display_name":        "Display Name",
		"country_code":        "Country Code",
		"region":              "Region",
		"region_display_name": "Region Name",
		"value":               "Value",
		"unit":                "Unit",
		"reference_year":      "Reference Year",
		"organization":        "Organization",
		"publication":         "Publication",
		"publication_date":    "Publication Date",
		"quality_grade":       "Quality Grade",
		"confidence":          "Confidence",
		"url":                 "URL",
		"notes":               "Notes",
		"created_at":          "Created At",
		"updated_at":          "Updated At",
	},
	"zh": {
		"category_l1":         "活动分类L1",
		"category_l2":         "活动分类L2",
		"category_l3":         "活动分类L3",
		"display_name":        "中文名称",
		"country_code":        "国家代码",
		"region":              "地区",
		"region_display_name": "地区名称",
		"value":               "排放值",
		"unit":                "单位",
		"reference_year":      "参考年份",
		"organization":        "数据机构",
		"publication":         "出版物",
		"publication_date":    "发布日期",
		"quality_grade":       "质量等级",
		"confidence":          "置信度",
		"url":                 "网址",
		"notes":               "备注",
		"created_at":          "创建时间",
		"updated_at":          "更新时间",
	},
}

// sheetNames localizes the XLSX sheet title.
var sheetNames = map[string]string{
	"en": "Emission Factors",
	"zh": "排放因子数据",
}

// timestampLayout is the canonical render of record timestamps.
const timestampLayout = "2006-01-02 15:04:05"

// Projector turns emission factors into export rows under one locale
// and value precision.
type Projector struct {
	locale    string
	precision int
}

// NewProjector validates the locale and builds a projector.
func NewProjector(cfg config.ExportConfig) (*Projector, error) {
	if _, ok := headerLabels[cfg.Locale]; !ok {
		return nil, eris.Errorf("export: unsupported locale %q (expected en or zh)", cfg.Locale)
	}
	precision := cfg.Precision
	if precision <= 0 {
		precision = 4
	}
	return &Projector{locale: cfg.Locale, precision: precision}, nil
}

// Header returns the localized header row.
func (p *Projector) Header() []string {
	labels := headerLabels[p.locale]
	header := make([]string, len(exportColumns))
	for i, col := range exportColumns {
		header[i] = labels[col]
	}
	return header
}

// SheetName returns the localized XLSX sheet title.
func (p *Projector) SheetName() string {
	return sheetNames[p.locale]
}

// Row projects one record onto the export columns.
func (p *Projector) Row(rec *model.EmissionFactor) []string {
	return []string{
		rec.Category.L1,
		rec.Category.L2,
		rec.Category.L3,
		rec.Category.DisplayName,
		rec.Geography.CountryCode,
		rec.Geography.Region,
		rec.Geography.RegionDisplayName,
		p.formatValue(rec.Value.Value),
		string(rec.Value.Unit),
		strconv.Itoa(rec.Value.ReferenceYear),
		rec.Source.Organization,
		rec.Source.Publication,
		rec.Source.PublicationDate,
		string(rec.Quality.Grade),
		string(rec.Quality.Confidence),
		rec.CreatedAt.Format(timestampLayout),
		rec.UpdatedAt.Format(timestampLayout),
	}
}

// formatValue rounds to the configured precision and drops trailing
// zeros, so 0.88720 exports as 0.8872 and 12.0 as 12.
func (p *Projector) formatValue(v float64) string {
	scale := math.Pow10(p.precision)
	rounded := math.Round(v*scale) / scale
	return strconv.FormatFloat(rounded, 'f', -1, 64)
}
