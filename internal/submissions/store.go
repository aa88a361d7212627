// Package submissions writes metric submissions and raw uploads into the
// company/period layout:
//
//	submissions/<company>/<year>/<quarter>/month_<m>/submission_<ts>.{json,csv}
//	raw_uploads/<company>/<year>/<quarter>/month_<m>/<ts>__<filename>
//
// Every artifact is created once and never replaced.
package submissions

import (
	"bufio"
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/csv"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"input-portal/internal/blob"
	"input-portal/internal/common"
	"input-portal/internal/models"
)

// TimestampLayout renders the UTC second used in artifact names.
const TimestampLayout = "20060102T150405Z"

const (
	DefaultSubmissionsRoot = "submissions"
	DefaultRawUploadsRoot  = "raw_uploads"

	// attempts per second before giving up on a free name
	maxCollisions = 100
)

type Store struct {
	blobs          blob.Store
	now            func() time.Time
	submissionRoot string
	uploadRoot     string
	logger         *zap.Logger
}

type Option func(*Store)

func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func WithLogger(l *zap.Logger) Option {
	return func(s *Store) { s.logger = l }
}

func WithRoots(submissionRoot, uploadRoot string) Option {
	return func(s *Store) {
		s.submissionRoot = submissionRoot
		s.uploadRoot = uploadRoot
	}
}

func NewStore(blobs blob.Store, opts ...Option) *Store {
	s := &Store{
		blobs:          blobs,
		now:            time.Now,
		submissionRoot: DefaultSubmissionsRoot,
		uploadRoot:     DefaultRawUploadsRoot,
		logger:         zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SaveSubmission writes the JSON record and its CSV sibling for one
// submission. Both exist when it returns without error.
func (s *Store) SaveSubmission(ctx context.Context, company, actor string, period models.FiscalPeriod, payload map[string]float64, rawRefs ...string) (models.Artifact, error) {
	dir, err := s.periodKey(s.submissionRoot, company, period)
	if err != nil {
		return models.Artifact{}, err
	}
	for name, v := range payload {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return models.Artifact{}, fmt.Errorf("%w: %q", ErrInvalidMetricValue, name)
		}
	}

	submittedAt := s.now().UTC().Truncate(time.Second)
	ts := submittedAt.Format(TimestampLayout)
	metrics := payload
	if metrics == nil {
		metrics = map[string]float64{}
	}
	record := models.Submission{
		Meta: models.SubmissionMeta{
			Company:        company,
			Actor:          actor,
			Year:           period.Year,
			Quarter:        period.Quarter,
			MonthInQ:       period.MonthInQ,
			SubmittedAtUTC: ts,
			SchemaVersion:  models.SchemaVersion,
		},
		Metrics:  metrics,
		RawFiles: rawRefs,
	}
	jsonBody, err := encodeJSON(record)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("%w: encode submission: %w", common.ErrPersistence, err)
	}
	csvBody, err := encodeCSV(metrics)
	if err != nil {
		return models.Artifact{}, fmt.Errorf("%w: encode submission csv: %w", common.ErrPersistence, err)
	}

	for seq := 1; seq <= maxCollisions; seq++ {
		stem := dir + "/submission_" + withSequence(ts, seq)
		jsonKey, csvKey := stem+".json", stem+".csv"

		if _, err := s.blobs.Head(ctx, csvKey); err == nil {
			continue
		}
		_, err := s.blobs.Put(ctx, jsonKey, bytes.NewReader(jsonBody), blob.PutOptions{ContentType: "application/json"})
		if errors.Is(err, blob.ErrExists) {
			continue
		}
		if err != nil {
			return models.Artifact{}, fmt.Errorf("%w: write %s: %w", common.ErrPersistence, jsonKey, err)
		}
		if _, err := s.blobs.Put(ctx, csvKey, bytes.NewReader(csvBody), blob.PutOptions{ContentType: "text/csv"}); err != nil {
			return models.Artifact{}, fmt.Errorf("%w: write %s: %w", common.ErrPersistence, csvKey, err)
		}
		if seq > 1 {
			s.logger.Warn("submission name collision", zap.String("key", jsonKey), zap.Int("seq", seq))
		}
		s.logger.Info("submission saved",
			zap.String("company", company),
			zap.String("actor", actor),
			zap.Stringer("period", period),
			zap.String("key", jsonKey),
			zap.Int("metrics", len(metrics)))
		return models.Artifact{
			Key:         jsonKey,
			SiblingKey:  csvKey,
			Location:    blob.Locate(s.blobs, jsonKey),
			SubmittedAt: submittedAt,
		}, nil
	}
	return models.Artifact{}, ErrTooManyCollisions
}

// SaveRawUpload stores r verbatim under a timestamped, sanitized name.
func (s *Store) SaveRawUpload(ctx context.Context, company, actor string, period models.FiscalPeriod, filename string, r io.Reader) (models.RawUpload, error) {
	dir, err := s.periodKey(s.uploadRoot, company, period)
	if err != nil {
		return models.RawUpload{}, err
	}
	stored := SanitizeFilename(filename)
	uploadedAt := s.now().UTC().Truncate(time.Second)
	ts := uploadedAt.Format(TimestampLayout)

	br := bufio.NewReader(r)
	head, err := br.Peek(512)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, bufio.ErrBufferFull) {
		return models.RawUpload{}, fmt.Errorf("%w: read upload: %w", common.ErrPersistence, err)
	}
	contentType := http.DetectContentType(head)

	// the reader is consumed by the first Put attempt; retries replay the buffer
	var spool bytes.Buffer
	h := sha256.New()
	body := io.TeeReader(io.TeeReader(br, h), &spool)

	for seq := 1; seq <= maxCollisions; seq++ {
		name := withSequence(ts, seq) + "__" + stored
		key := dir + "/" + name
		info, err := s.blobs.Put(ctx, key, body, blob.PutOptions{
			ContentType: contentType,
			Metadata:    map[string]string{"original-filename": filename, "actor": actor},
		})
		if errors.Is(err, blob.ErrExists) {
			// drain what the failed attempt did not read so the spool is complete
			if _, err := io.Copy(io.Discard, body); err != nil {
				return models.RawUpload{}, fmt.Errorf("%w: read upload: %w", common.ErrPersistence, err)
			}
			body = bytes.NewReader(spool.Bytes())
			continue
		}
		if err != nil {
			return models.RawUpload{}, fmt.Errorf("%w: write %s: %w", common.ErrPersistence, key, err)
		}
		s.logger.Info("raw upload saved",
			zap.String("company", company),
			zap.String("actor", actor),
			zap.Stringer("period", period),
			zap.String("key", key),
			zap.Int64("bytes", info.Size))
		return models.RawUpload{
			Company:          company,
			Actor:            actor,
			Period:           period,
			OriginalFilename: filename,
			StoredFilename:   name,
			Key:              key,
			Location:         blob.Locate(s.blobs, key),
			Size:             info.Size,
			Checksum:         hex.EncodeToString(h.Sum(nil)),
			ContentType:      contentType,
			UploadedAt:       uploadedAt,
		}, nil
	}
	return models.RawUpload{}, ErrTooManyCollisions
}

func (s *Store) periodKey(root, company string, period models.FiscalPeriod) (string, error) {
	if err := period.Validate(); err != nil {
		return "", err
	}
	p := PeriodPath(company, period)
	if p.Company == "" {
		return "", ErrMissingCompany
	}
	return p.Key(root), nil
}

func withSequence(ts string, seq int) string {
	if seq == 1 {
		return ts
	}
	return ts + "_" + strconv.Itoa(seq)
}

func encodeJSON(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// encodeCSV renders metric,value rows ordered by metric name.
func encodeCSV(metrics map[string]float64) ([]byte, error) {
	names := make([]string, 0, len(metrics))
	for name := range metrics {
		names = append(names, name)
	}
	sort.Strings(names)

	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.Write([]string{"metric", "value"}); err != nil {
		return nil, err
	}
	for _, name := range names {
		if err := w.Write([]string{name, strconv.FormatFloat(metrics[name], 'f', -1, 64)}); err != nil {
			return nil, err
		}
	}
	w.Flush()
	return buf.Bytes(), w.Error()
}
