package importer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carbonref/factor-cli/internal/model"
)

func englishRow() model.RawRow {
	return model.RawRow{
		"Category L1":      "Energy",
		"Category L2":      "Electricity",
		"Category L3":      "Coal_Power",
		"Display Name":     "North China grid coal power",
		"Country Code":     "CN",
		"Region":           "North_China_Grid",
		"Region Name":      "North China Grid",
		"Value":            "0.8872",
		"Unit":             "kgCO2eq/kWh",
		"Reference Year":   "2024",
		"Organization":     "CEC",
		"Publication":      "Annual Power Report 2024",
		"Publication Date": "2024-06-01",
		"URL":              "https://example.org",
		"Notes":            "measured",
		"Quality Grade":    "A",
		"Confidence":       "High",
	}
}

func TestNormalizeEnglishHeaders(t *testing.T) {
	c := Normalize(englishRow(), "importer")

	assert.Equal(t, "Energy", c.CategoryL1)
	assert.Equal(t, "Coal_Power", c.CategoryL3)
	assert.Equal(t, "CN", c.CountryCode)
	require.NotNil(t, c.Value)
	assert.InDelta(t, 0.8872, *c.Value, 1e-9)
	require.NotNil(t, c.ReferenceYear)
	assert.Equal(t, 2024, *c.ReferenceYear)
	require.NotNil(t, c.PublicationDate)
	assert.Equal(t, time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC), *c.PublicationDate)
	assert.Equal(t, "A", c.QualityGrade)
	assert.Equal(t, "importer", c.CreatedBy)
}

func TestNormalizeChineseHeaders(t *testing.T) {
	row := model.RawRow{
		"活动分类L1": "Transport",
		"活动分类L2": "Road",
		"活动分类L3": "Gasoline_Car",
		"中文名称":   "汽油乘用车",
		"国家代码":   "CN",
		"地区":     "National",
		"地区名称":   "全国",
		"排放值":    "0.2016",
		"单位":     "kgCO2eq/km",
		"参考年份":   "2024",
		"数据机构":   "生态环境部",
		"质量等级":   "A",
	}

	c := Normalize(row, "importer")

	assert.Equal(t, "Transport", c.CategoryL1)
	assert.Equal(t, "汽油乘用车", c.DisplayNameLocal)
	assert.Equal(t, "全国", c.RegionDisplayName)
	require.NotNil(t, c.Value)
	assert.InDelta(t, 0.2016, *c.Value, 1e-9)
}

func TestNormalizeUnparseableCellsPassThrough(t *testing.T) {
	row := englishRow()
	row["Value"] = "lots"
	row["Reference Year"] = "recent"
	row["Publication Date"] = "June last year"

	c := Normalize(row, "importer")

	assert.Nil(t, c.Value)
	assert.Equal(t, "lots", c.ValueRaw)
	assert.Nil(t, c.ReferenceYear)
	assert.Equal(t, "recent", c.ReferenceYearRaw)
	assert.Nil(t, c.PublicationDate)
	assert.Equal(t, "June last year", c.PublicationDateRaw)
}

func TestNormalizeIgnoresUnknownColumns(t *testing.T) {
	row := englishRow()
	row["Internal Remark"] = "should be dropped"

	c := Normalize(row, "importer")
	assert.Equal(t, "Energy", c.CategoryL1)
	assert.NotContains(t, c.Notes, "dropped")
}

func TestParseDecimal(t *testing.T) {
	tests := []struct {
		in   string
		want float64
		ok   bool
	}{
		{"0.8872", 0.8872, true},
		{"1234.56", 1234.56, true},
		{"1,234.56", 1234.56, true},
		{"1.234,56", 1234.56, true},
		{"1 234,56", 1234.56, true},
		{"12,5", 12.5, true},
		{"1,234", 1234, true},
		{"1,234,567", 1234567, true},
		{"-3.5", -3.5, true},
		{"", 0, false},
		{"abc", 0, false},
		{"NaN", 0, false},
		{"Inf", 0, false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := parseDecimal(tt.in)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.InDelta(t, tt.want, got, 1e-9)
			}
		})
	}
}

func TestParseYear(t *testing.T) {
	tests := []struct {
		in   string
		want int
		ok   bool
	}{
		{"2024", 2024, true},
		{"2024.0", 2024, true},
		{" 1995 ", 1995, true},
		{"2024.5", 0, false},
		{"soon", 0, false},
		{"", 0, false},
	}
	for _, tt := range tests {
		got, ok := parseYear(tt.in)
		assert.Equal(t, tt.ok, ok, tt.in)
		if tt.ok {
			assert.Equal(t, tt.want, got, tt.in)
		}
	}
}

func TestParseDateLayouts(t *testing.T) {
	want := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	for _, in := range []string{"2024-06-01", "2024/06/01", "2024/6/1", "2024.06.01"} {
		got, ok := parseDate(in)
		require.True(t, ok, in)
		assert.Equal(t, want, got, in)
	}

	_, ok := parseDate("01-06-2024")
	assert.False(t, ok)
}
