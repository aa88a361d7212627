package dictionary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"input-portal/internal/common"
	"input-portal/internal/models"
)

func writeWorkbook(t *testing.T, sheet string, rows [][]any) string {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	_, err := f.NewSheet(sheet)
	require.NoError(t, err)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}
	path := filepath.Join(t.TempDir(), "Metricas.xlsx")
	require.NoError(t, f.SaveAs(path))
	return path
}

func TestLoad_MissingFileFallsBack(t *testing.T) {
	d, err := Load(filepath.Join(t.TempDir(), "nope.xlsx"), "")
	require.NoError(t, err)
	assert.Equal(t, Default().Names(), d.Names())
	assert.Equal(t, 5, d.Len())
}

func TestLoad_Workbook(t *testing.T) {
	path := writeWorkbook(t, "Core", [][]any{
		{"Área", "Métrica", "Qué mide"},
		{"Finanzas", " Revenue ", "Ingresos"},
		{"Finanzas", "Burn Rate", "Caja consumida"},
		{"Finanzas", "Revenue", "duplicate"},
		{"Ventas", "", "no name"},
	})

	d, err := Load(path, "Core")
	require.NoError(t, err)
	assert.Equal(t, []models.MetricDefinition{
		{Name: "Revenue", Description: "Ingresos"},
		{Name: "Burn Rate", Description: "Caja consumida"},
	}, d.Definitions())
}

func TestLoad_WorkbookWithoutHeaderMatchUsesFirstColumn(t *testing.T) {
	path := writeWorkbook(t, "Core", [][]any{
		{"Name", "Notes"},
		{"Revenue", "ignored"},
	})
	d, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []models.MetricDefinition{{Name: "Revenue"}}, d.Definitions())
}

func TestLoad_WorkbookMissingSheet(t *testing.T) {
	path := writeWorkbook(t, "Other", [][]any{{"Métrica"}, {"Revenue"}})
	_, err := Load(path, "Core")
	assert.Error(t, err)
}

func TestLoad_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
- name: Revenue
  description: Monthly revenue
- name: Active Customers
`), 0o644))

	d, err := Load(path, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"Revenue", "Active Customers"}, d.Names())
}

func TestLoad_UnsupportedFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "metrics.txt")
	require.NoError(t, os.WriteFile(path, []byte("Revenue"), 0o644))
	_, err := Load(path, "")
	assert.Error(t, err)
}

func TestCheck(t *testing.T) {
	d := New([]models.MetricDefinition{{Name: "Revenue"}, {Name: "Burn Rate"}})

	assert.NoError(t, d.Check(map[string]float64{"Revenue": 1, "Burn Rate": 0}))

	err := d.Check(map[string]float64{"Revenue": 1})
	assert.ErrorIs(t, err, ErrMissingMetrics)
	assert.ErrorIs(t, err, common.ErrValidation)
	assert.Contains(t, err.Error(), "Burn Rate")

	err = d.Check(map[string]float64{"Revenue": 1, "Burn Rate": 2, "EBITDA": 3})
	assert.ErrorIs(t, err, ErrUnknownMetric)
	assert.Contains(t, err.Error(), "EBITDA")
}

func TestMetricKey(t *testing.T) {
	tests := map[string]string{
		"Gross Margin %":   "gross_margin",
		"Runway (months)":  "runway_months",
		"  Burn Rate  ":    "burn_rate",
		"Active Customers": "active_customers",
		"ARR__2024":        "arr_2024",
	}
	for in, want := range tests {
		assert.Equal(t, want, MetricKey(in))
	}
}

func TestLookupAndNormalize(t *testing.T) {
	d := Default()

	name, ok := d.Lookup("gross_margin")
	require.True(t, ok)
	assert.Equal(t, "Gross Margin %", name)
	name, ok = d.Lookup("Revenue")
	require.True(t, ok)
	assert.Equal(t, "Revenue", name)
	_, ok = d.Lookup("ebitda")
	assert.False(t, ok)

	out, err := d.Normalize(map[string]float64{
		"revenue":          1000,
		"Gross Margin %":   41.5,
		"burn_rate":        50,
		"runway_months":    18,
		"Active Customers": 12,
	})
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{
		"Revenue":          1000,
		"Gross Margin %":   41.5,
		"Burn Rate":        50,
		"Runway (months)":  18,
		"Active Customers": 12,
	}, out)
	assert.NoError(t, d.Check(out))

	// unresolved keys survive for Check to report
	out, err = d.Normalize(map[string]float64{"EBITDA": 1})
	require.NoError(t, err)
	assert.ErrorIs(t, d.Check(out), ErrUnknownMetric)

	_, err = d.Normalize(map[string]float64{"Revenue": 1, "revenue": 2})
	assert.ErrorIs(t, err, ErrDuplicateMetric)
	assert.ErrorIs(t, err, common.ErrValidation)
}
