package credentials

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"input-portal/internal/common"
	"input-portal/internal/models"
)

// CSVBackend keeps the registry in a single CSV file with a header row.
type CSVBackend struct {
	path string
}

func NewCSVBackend(path string) *CSVBackend {
	return &CSVBackend{path: path}
}

func (b *CSVBackend) Path() string { return b.path }

// Load reads the file, creating it with only the header when absent. Columns
// may appear in any order; missing ones read as empty strings.
func (b *CSVBackend) Load(ctx context.Context) ([]models.User, error) {
	f, err := os.Open(b.path)
	if errors.Is(err, fs.ErrNotExist) {
		if err := b.Save(ctx, nil); err != nil {
			return nil, err
		}
		return []models.User{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: open %s: %w", common.ErrStorage, b.path, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1
	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("%w: parse %s: %w", common.ErrStorage, b.path, err)
	}
	if len(records) == 0 {
		return []models.User{}, nil
	}

	idx := make(map[string]int, len(records[0]))
	for i, name := range records[0] {
		idx[strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))] = i
	}
	field := func(row []string, col string) string {
		i, ok := idx[col]
		if !ok || i >= len(row) {
			return ""
		}
		return row[i]
	}

	users := make([]models.User, 0, len(records)-1)
	for _, row := range records[1:] {
		users = append(users, models.User{
			Company:      field(row, "company"),
			Username:     field(row, "username"),
			PasswordHash: field(row, "password_hash"),
			Role:         models.UserRole(field(row, "role")),
		})
	}
	return users, nil
}

// Save rewrites the file through a temp file and rename.
func (b *CSVBackend) Save(_ context.Context, users []models.User) error {
	dir := filepath.Dir(b.path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("%w: mkdir %s: %w", common.ErrStorage, dir, err)
	}
	tmp, err := os.CreateTemp(dir, ".users-*.csv")
	if err != nil {
		return fmt.Errorf("%w: create temp: %w", common.ErrStorage, err)
	}
	defer func() { _ = os.Remove(tmp.Name()) }()

	w := csv.NewWriter(tmp)
	rows := make([][]string, 0, len(users)+1)
	rows = append(rows, Columns)
	for _, u := range users {
		rows = append(rows, []string{u.Company, u.Username, u.PasswordHash, string(u.Role)})
	}
	if err := w.WriteAll(rows); err != nil {
		_ = tmp.Close()
		return fmt.Errorf("%w: write %s: %w", common.ErrStorage, b.path, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("%w: close %s: %w", common.ErrStorage, b.path, err)
	}
	if err := os.Rename(tmp.Name(), b.path); err != nil {
		return fmt.Errorf("%w: replace %s: %w", common.ErrStorage, b.path, err)
	}
	return nil
}
