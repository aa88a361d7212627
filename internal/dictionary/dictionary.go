// Package dictionary loads the list of core metrics clients must report.
package dictionary

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"input-portal/internal/common"
	"input-portal/internal/models"
)

const DefaultSheet = "Core"

var (
	ErrMissingMetrics  = common.Reason(common.ErrValidation, "missing required metrics")
	ErrUnknownMetric   = common.Reason(common.ErrValidation, "unknown metric")
	ErrDuplicateMetric = common.Reason(common.ErrValidation, "metric given more than once")
)

// Dictionary is an ordered, duplicate-free list of metric definitions.
type Dictionary struct {
	defs  []models.MetricDefinition
	index map[string]int
	keys  map[string]string // MetricKey form -> name
}

// New normalizes defs: names are trimmed, empty names dropped, and the first
// occurrence of a name wins.
func New(defs []models.MetricDefinition) *Dictionary {
	d := &Dictionary{index: make(map[string]int), keys: make(map[string]string)}
	for _, def := range defs {
		def.Name = strings.TrimSpace(def.Name)
		def.Description = strings.TrimSpace(def.Description)
		if def.Name == "" {
			continue
		}
		if _, dup := d.index[def.Name]; dup {
			continue
		}
		d.index[def.Name] = len(d.defs)
		d.defs = append(d.defs, def)
		if k := MetricKey(def.Name); k != "" {
			if _, taken := d.keys[k]; !taken {
				d.keys[k] = def.Name
			}
		}
	}
	return d
}

// Default is the built-in core list used when no dictionary file exists.
func Default() *Dictionary {
	return New([]models.MetricDefinition{
		{Name: "Revenue", Description: "Total revenue recognised in the month"},
		{Name: "Gross Margin %", Description: "Gross profit over revenue, in percent"},
		{Name: "Burn Rate", Description: "Net cash spent in the month"},
		{Name: "Runway (months)", Description: "Cash on hand divided by burn rate"},
		{Name: "Active Customers", Description: "Paying customers at month end"},
	})
}

// Load reads an .xlsx workbook (sheet, default "Core") or a YAML list. A
// missing file yields Default.
func Load(path, sheet string) (*Dictionary, error) {
	if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return loadWorkbook(path, sheet)
	case ".yaml", ".yml":
		return loadYAML(path)
	default:
		return nil, fmt.Errorf("unsupported dictionary format %q", filepath.Ext(path))
	}
}

func loadWorkbook(path, sheet string) (*Dictionary, error) {
	if sheet == "" {
		sheet = DefaultSheet
	}
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open workbook %s: %w", path, err)
	}
	defer f.Close()

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheet, err)
	}
	if len(rows) == 0 {
		return New(nil), nil
	}

	metricCol, descCol := 0, -1
	for i, h := range rows[0] {
		switch strings.ToLower(strings.TrimSpace(h)) {
		case "métrica", "metrica":
			metricCol = i
		case "qué mide", "que mide":
			descCol = i
		}
	}
	cell := func(row []string, i int) string {
		if i < 0 || i >= len(row) {
			return ""
		}
		return row[i]
	}

	defs := make([]models.MetricDefinition, 0, len(rows)-1)
	for _, row := range rows[1:] {
		defs = append(defs, models.MetricDefinition{Name: cell(row, metricCol), Description: cell(row, descCol)})
	}
	return New(defs), nil
}

func loadYAML(path string) (*Dictionary, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var defs []models.MetricDefinition
	if err := yaml.Unmarshal(b, &defs); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return New(defs), nil
}

func (d *Dictionary) Definitions() []models.MetricDefinition {
	out := make([]models.MetricDefinition, len(d.defs))
	copy(out, d.defs)
	return out
}

func (d *Dictionary) Names() []string {
	out := make([]string, len(d.defs))
	for i, def := range d.defs {
		out[i] = def.Name
	}
	return out
}

func (d *Dictionary) Len() int { return len(d.defs) }

func (d *Dictionary) Has(name string) bool {
	_, ok := d.index[name]
	return ok
}

// Lookup resolves a metric given either by its exact name or by its
// MetricKey form ("gross_margin" for "Gross Margin %").
func (d *Dictionary) Lookup(name string) (string, bool) {
	if d.Has(name) {
		return name, true
	}
	canonical, ok := d.keys[MetricKey(name)]
	return canonical, ok
}

// Normalize rewrites payload keys to dictionary names. Keys it cannot
// resolve are kept as given so Check can report them.
func (d *Dictionary) Normalize(payload map[string]float64) (map[string]float64, error) {
	out := make(map[string]float64, len(payload))
	var dups []string
	for key, v := range payload {
		name, ok := d.Lookup(key)
		if !ok {
			name = key
		}
		if _, seen := out[name]; seen {
			dups = append(dups, name)
			continue
		}
		out[name] = v
	}
	if len(dups) > 0 {
		sort.Strings(dups)
		return nil, fmt.Errorf("%w: %s", ErrDuplicateMetric, strings.Join(dups, ", "))
	}
	return out, nil
}

// Check requires every dictionary metric in payload and rejects names the
// dictionary does not know.
func (d *Dictionary) Check(payload map[string]float64) error {
	var unknown []string
	for name := range payload {
		if !d.Has(name) {
			unknown = append(unknown, name)
		}
	}
	if len(unknown) > 0 {
		sort.Strings(unknown)
		return fmt.Errorf("%w: %s", ErrUnknownMetric, strings.Join(unknown, ", "))
	}
	var missing []string
	for _, def := range d.defs {
		if _, ok := payload[def.Name]; !ok {
			missing = append(missing, def.Name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrMissingMetrics, strings.Join(missing, ", "))
	}
	return nil
}

var nonKeyChars = regexp.MustCompile(`[^a-z0-9]+`)

// MetricKey is the lowercase, underscore-joined form of a metric name,
// e.g. "Gross Margin %" -> "gross_margin".
func MetricKey(name string) string {
	k := nonKeyChars.ReplaceAllString(strings.ToLower(strings.TrimSpace(name)), "_")
	return strings.Trim(k, "_")
}
