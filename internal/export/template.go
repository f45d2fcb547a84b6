package export

import (
	"encoding/csv"
	"io"

	"github.com/rotisserie/eris"
	"github.com/tealeg/xlsx/v2"
)

// templateColumns is the import template layout: the export columns
// minus the server-assigned timestamps, plus the optional source
// fields an importer may fill.
var templateColumns = []string{
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
	"url",
	"notes",
}

// templateSamples are two filled-in example rows showing the expected
// cell formats.
var templateSamples = [][]string{
	{
		"Energy", "Electricity", "Coal_Power", "华北电网燃煤发电",
		"CN", "North_China_Grid", "华北电网",
		"0.8872", "kgCO2eq/kWh", "2024",
		"中国电力企业联合会", "中国电力行业年度发展报告2024", "2024-06-01",
		"A", "High",
		"https://www.cec.org.cn", "基于2024年实际发电数据统计",
	},
	{
		"Transport", "Road", "Gasoline_Car", "汽油乘用车",
		"CN", "National", "全国",
		"0.2016", "kgCO2eq/km", "2024",
		"生态环境部", "国家温室气体清单指南", "2024-03-15",
		"A", "High",
		"https://www.mee.gov.cn", "轻型汽油车平均排放因子",
	},
}

var templateSheetNames = map[string]string{
	"en": "Import Template",
	"zh": "排放因子模板",
}

// TemplateHeader returns the localized template header row.
func (p *Projector) TemplateHeader() []string {
	labels := headerLabels[p.locale]
	header := make([]string, len(templateColumns))
	for i, col := range templateColumns {
		header[i] = labels[col]
	}
	return header
}

// WriteTemplateCSV writes the import template with sample rows as CSV.
func WriteTemplateCSV(w io.Writer, p *Projector) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return eris.Wrap(err, "export: write bom")
	}

	cw := csv.NewWriter(w)
	if err := cw.Write(p.TemplateHeader()); err != nil {
		return eris.Wrap(err, "export: write template header")
	}
	for _, row := range templateSamples {
		if err := cw.Write(row); err != nil {
			return eris.Wrap(err, "export: write template row")
		}
	}

	cw.Flush()
	return eris.Wrap(cw.Error(), "export: flush template")
}

// WriteTemplateXLSX writes the import template with sample rows as a
// single-sheet XLSX workbook.
func WriteTemplateXLSX(w io.Writer, p *Projector) error {
	f := xlsx.NewFile()
	sheet, err := f.AddSheet(templateSheetNames[p.locale])
	if err != nil {
		return eris.Wrap(err, "export: add template sheet")
	}

	writeXLSXRow(sheet, p.TemplateHeader())
	for _, row := range templateSamples {
		writeXLSXRow(sheet, row)
	}

	return eris.Wrap(f.Write(w), "export: write template workbook")
}
