package submissions

import (
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"

	"input-portal/internal/models"
)

func TestSanitizeCompany(t *testing.T) {
	tests := map[string]string{
		"Acme":           "Acme",
		"  Acme Corp  ":  "Acme_Corp",
		"Acme Corp!":     "Acme_Corp_",
		"a/b\\c":         "a_b_c",
		"../../etc":      "_etc",
		"Café Niño S.A.": "Caf_Ni_o_S_A_",
		"x-y_z":          "x-y_z",
		"   ":            "",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeCompany(in), "input %q", in)
	}
}

func TestSanitizeFilename(t *testing.T) {
	tests := map[string]string{
		"report.xlsx":                "report.xlsx",
		"my report (final).xlsx":     "my_report_final_.xlsx",
		`C:\Users\me\Q1 numbers.csv`: "Q1_numbers.csv",
		"../secret.txt":              "secret.txt",
		"":                           "upload",
		"..":                         "upload",
		"???":                        "_",
	}
	for in, want := range tests {
		assert.Equal(t, want, SanitizeFilename(in), "input %q", in)
	}
}

func TestPeriodPath(t *testing.T) {
	p := PeriodPath("Acme Corp", models.FiscalPeriod{Year: 2024, Quarter: "Q3", MonthInQ: 2})
	assert.Equal(t, []string{"Acme_Corp", "2024", "Q3", "month_2"}, p.Segments())
	assert.Equal(t, "submissions/Acme_Corp/2024/Q3/month_2", p.Key("submissions"))

	// deterministic: same inputs, same path
	assert.Equal(t, p, PeriodPath("Acme Corp", models.FiscalPeriod{Year: 2024, Quarter: "Q3", MonthInQ: 2}))

	allowed := regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)
	for i := 0; i < 3; i++ {
		got := PeriodPath("Acme Inc.", models.FiscalPeriod{Year: 2024, Quarter: "Q1", MonthInQ: 2})
		assert.Equal(t, "Acme_Inc_", got.Company)
		for _, seg := range got.Segments() {
			assert.Regexp(t, allowed, seg)
		}
	}
}
