package submissions

import (
	"path"
	"regexp"
	"strconv"
	"strings"

	"input-portal/internal/models"
)

var (
	unsafeCompanyChars  = regexp.MustCompile(`[^a-zA-Z0-9_-]+`)
	unsafeFilenameChars = regexp.MustCompile(`[^a-zA-Z0-9._-]+`)
)

// SanitizeCompany trims the name and replaces each run of characters outside
// [A-Za-z0-9_-] with a single underscore.
func SanitizeCompany(company string) string {
	return unsafeCompanyChars.ReplaceAllString(strings.TrimSpace(company), "_")
}

// SanitizeFilename is SanitizeCompany with "." also allowed. An empty result
// becomes "upload".
func SanitizeFilename(name string) string {
	name = strings.TrimSpace(name)
	// browsers on Windows may send the full client path
	if i := strings.LastIndexAny(name, `/\`); i >= 0 {
		name = name[i+1:]
	}
	clean := unsafeFilenameChars.ReplaceAllString(name, "_")
	if clean == "" || clean == "." || clean == ".." {
		return "upload"
	}
	return clean
}

// PathComponents are the directory segments under a storage root.
type PathComponents struct {
	Company string
	Year    string
	Quarter string
	Month   string
}

// PeriodPath derives the segments for company and period. It does not touch
// storage.
func PeriodPath(company string, period models.FiscalPeriod) PathComponents {
	return PathComponents{
		Company: SanitizeCompany(company),
		Year:    strconv.Itoa(period.Year),
		Quarter: period.Quarter,
		Month:   period.MonthSegment(),
	}
}

func (p PathComponents) Segments() []string {
	return []string{p.Company, p.Year, p.Quarter, p.Month}
}

// Key joins the segments below root with forward slashes.
func (p PathComponents) Key(root string) string {
	return path.Join(append([]string{root}, p.Segments()...)...)
}
