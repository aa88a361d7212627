package submissions

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"io"
	"math"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"input-portal/internal/blob"
	"input-portal/internal/blob/fs"
	"input-portal/internal/blob/memory"
	"input-portal/internal/common"
	"input-portal/internal/models"
)

var (
	fixedNow = time.Date(2024, 7, 15, 9, 30, 5, 123, time.FixedZone("ART", -3*3600))
	period   = models.FiscalPeriod{Year: 2024, Quarter: "Q3", MonthInQ: 1}
)

func fixedClock() time.Time { return fixedNow }

func readBlob(t *testing.T, s blob.Store, key string) []byte {
	t.Helper()
	_, rc, err := s.Get(context.Background(), key)
	require.NoError(t, err)
	defer rc.Close()
	b, err := io.ReadAll(rc)
	require.NoError(t, err)
	return b
}

func TestSaveSubmission_WritesJSONAndCSV(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))

	art, err := s.SaveSubmission(ctx, "Acme Corp", "alice", period,
		map[string]float64{"Revenue": 1500.5, "Burn Rate": -20, "Active Customers": 42},
		"raw_uploads/Acme_Corp/2024/Q3/month_1/20240715T123005Z__book.xlsx")
	require.NoError(t, err)

	assert.Equal(t, "submissions/Acme_Corp/2024/Q3/month_1/submission_20240715T123005Z.json", art.Key)
	assert.Equal(t, "submissions/Acme_Corp/2024/Q3/month_1/submission_20240715T123005Z.csv", art.SiblingKey)
	assert.Equal(t, time.Date(2024, 7, 15, 12, 30, 5, 0, time.UTC), art.SubmittedAt)

	var doc models.Submission
	require.NoError(t, json.Unmarshal(readBlob(t, blobs, art.Key), &doc))
	assert.Equal(t, models.SubmissionMeta{
		Company:        "Acme Corp",
		Actor:          "alice",
		Year:           2024,
		Quarter:        "Q3",
		MonthInQ:       1,
		SubmittedAtUTC: "20240715T123005Z",
		SchemaVersion:  "submission-v1",
	}, doc.Meta)
	assert.Equal(t, 1500.5, doc.Metrics["Revenue"])
	assert.Len(t, doc.RawFiles, 1)

	assert.Equal(t, "metric,value\nActive Customers,42\nBurn Rate,-20\nRevenue,1500.5\n", string(readBlob(t, blobs, art.SiblingKey)))
}

func TestSaveSubmission_OmitsEmptyRawFiles(t *testing.T) {
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))

	art, err := s.SaveSubmission(context.Background(), "Acme", "alice", period, nil)
	require.NoError(t, err)

	var raw map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(readBlob(t, blobs, art.Key), &raw))
	assert.NotContains(t, raw, "raw_files")
	assert.JSONEq(t, `{}`, string(raw["metrics"]))
	assert.Equal(t, "metric,value\n", string(readBlob(t, blobs, art.SiblingKey)))
}

func TestSaveSubmission_SameSecondNeverOverwrites(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))

	first, err := s.SaveSubmission(ctx, "Acme", "alice", period, map[string]float64{"Revenue": 1})
	require.NoError(t, err)
	second, err := s.SaveSubmission(ctx, "Acme", "alice", period, map[string]float64{"Revenue": 2})
	require.NoError(t, err)

	assert.NotEqual(t, first.Key, second.Key)
	assert.True(t, strings.HasSuffix(second.Key, "submission_20240715T123005Z_2.json"))
	assert.Contains(t, string(readBlob(t, blobs, first.SiblingKey)), "Revenue,1\n")
	assert.Contains(t, string(readBlob(t, blobs, second.SiblingKey)), "Revenue,2\n")

	list, err := blobs.List(ctx, "submissions/")
	require.NoError(t, err)
	assert.Len(t, list, 4)
}

func TestSaveSubmission_Validation(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))

	_, err := s.SaveSubmission(ctx, "Acme", "alice", models.FiscalPeriod{Year: 2019, Quarter: "Q1", MonthInQ: 1}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidYear)
	_, err = s.SaveSubmission(ctx, "Acme", "alice", models.FiscalPeriod{Year: 2024, Quarter: "Q5", MonthInQ: 1}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidQuarter)
	_, err = s.SaveSubmission(ctx, "Acme", "alice", models.FiscalPeriod{Year: 2024, Quarter: "Q1", MonthInQ: 4}, nil)
	assert.ErrorIs(t, err, models.ErrInvalidMonth)
	_, err = s.SaveSubmission(ctx, "  ", "alice", period, nil)
	assert.ErrorIs(t, err, ErrMissingCompany)
	_, err = s.SaveSubmission(ctx, "Acme", "alice", period, map[string]float64{"Revenue": math.NaN()})
	assert.ErrorIs(t, err, ErrInvalidMetricValue)
	assert.ErrorIs(t, err, common.ErrValidation)

	list, err := blobs.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list, "rejected calls must not write")
}

func TestSaveRawUpload_StoresBytesVerbatim(t *testing.T) {
	ctx := context.Background()
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))
	content := []byte("%PDF-1.4\nbinary\x00\xff payload")

	up, err := s.SaveRawUpload(ctx, "Acme Corp", "alice", period, "Q3 report (v2).pdf", bytes.NewReader(content))
	require.NoError(t, err)

	assert.Equal(t, "raw_uploads/Acme_Corp/2024/Q3/month_1/20240715T123005Z__Q3_report_v2_.pdf", up.Key)
	assert.Equal(t, "20240715T123005Z__Q3_report_v2_.pdf", up.StoredFilename)
	assert.Equal(t, "Q3 report (v2).pdf", up.OriginalFilename)
	assert.Equal(t, int64(len(content)), up.Size)
	assert.Equal(t, "application/pdf", up.ContentType)
	sum := sha256.Sum256(content)
	assert.Equal(t, hex.EncodeToString(sum[:]), up.Checksum)
	assert.Equal(t, content, readBlob(t, blobs, up.Key))
}

func TestSaveRawUpload_SameSecondGetsSequence(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	blobs, err := fs.New(dir)
	require.NoError(t, err)
	s := NewStore(blobs, WithClock(fixedClock))

	first, err := s.SaveRawUpload(ctx, "Acme", "alice", period, "data.csv", strings.NewReader("a,b\n1,2\n"))
	require.NoError(t, err)
	second, err := s.SaveRawUpload(ctx, "Acme", "alice", period, "data.csv", strings.NewReader("a,b\n3,4\n"))
	require.NoError(t, err)

	assert.Equal(t, "20240715T123005Z_2__data.csv", second.StoredFilename)
	sum := sha256.Sum256([]byte("a,b\n3,4\n"))
	assert.Equal(t, hex.EncodeToString(sum[:]), second.Checksum)

	b, err := os.ReadFile(first.Location)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n1,2\n", string(b))
	b, err = os.ReadFile(second.Location)
	require.NoError(t, err)
	assert.Equal(t, "a,b\n3,4\n", string(b))
}

func TestSaveRawUpload_EmptyFile(t *testing.T) {
	blobs := memory.New()
	s := NewStore(blobs, WithClock(fixedClock))

	up, err := s.SaveRawUpload(context.Background(), "Acme", "alice", period, "", strings.NewReader(""))
	require.NoError(t, err)
	assert.Equal(t, "20240715T123005Z__upload", up.StoredFilename)
	assert.Zero(t, up.Size)
}

type failingStore struct {
	blob.Store
	failOn string
}

func (f failingStore) Put(ctx context.Context, key string, r io.Reader, opts blob.PutOptions) (blob.Info, error) {
	if strings.HasSuffix(key, f.failOn) {
		return blob.Info{}, errors.New("disk full")
	}
	return f.Store.Put(ctx, key, r, opts)
}

func TestPersistenceErrors(t *testing.T) {
	ctx := context.Background()

	s := NewStore(failingStore{Store: memory.New(), failOn: ".csv"}, WithClock(fixedClock))
	_, err := s.SaveSubmission(ctx, "Acme", "alice", period, map[string]float64{"Revenue": 1})
	assert.ErrorIs(t, err, common.ErrPersistence)

	s = NewStore(failingStore{Store: memory.New(), failOn: ".bin"}, WithClock(fixedClock))
	_, err = s.SaveRawUpload(ctx, "Acme", "alice", period, "x.bin", strings.NewReader("x"))
	assert.ErrorIs(t, err, common.ErrPersistence)
}
