package ledger

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"pkg.jsn.cam/forkreduce/pkg/storage"
)

func testRecord(jobID string) Record {
	return Record{
		JobID:          jobID,
		InputPath:      "/data/input.txt",
		SplitCount:     4,
		MapWorkerIDs:   []uint64{1, 2, 3, 4},
		ReduceWorkerID: 5,
		ElapsedMicros:  1234,
		StartedAt:      time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestOpenStampsSchemaVersion(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	l, err := Open(backend)
	assert.NoError(t, err)
	defer l.Close()

	stored, err := backend.Get([]byte("meta"), []byte("schema_version"))
	assert.NoError(t, err)
	assert.Equal(t, SchemaVersion, string(stored))
}

func TestAppendAndRuns(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	l, err := Open(backend)
	assert.NoError(t, err)
	defer l.Close()

	rec1 := testRecord("job-a")
	rec2 := testRecord("job-b")
	rec2.SplitCount = 8

	assert.NoError(t, l.Append(rec1))
	assert.NoError(t, l.Append(rec2))

	runs, err := l.Runs()
	assert.NoError(t, err)
	assert.Len(t, runs, 2)
	assert.Equal(t, rec1, runs[0])
	assert.Equal(t, rec2, runs[1])
}

func TestOpenAcceptsSameMajorVersion(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	assert.NoError(t, backend.CreateBucket([]byte("meta")))
	assert.NoError(t, backend.Put([]byte("meta"), []byte("schema_version"), []byte("v1.9.9")))

	l, err := Open(backend)
	assert.NoError(t, err)
	l.Close()
}

func TestOpenRejectsDifferentMajorVersion(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	assert.NoError(t, backend.CreateBucket([]byte("meta")))
	assert.NoError(t, backend.Put([]byte("meta"), []byte("schema_version"), []byte("v2.0.0")))

	_, err := Open(backend)
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}

func TestOpenRejectsGarbageVersion(t *testing.T) {
	t.Parallel()

	backend := storage.NewMemoryBackend()
	assert.NoError(t, backend.CreateBucket([]byte("meta")))
	assert.NoError(t, backend.Put([]byte("meta"), []byte("schema_version"), []byte("not-a-version")))

	_, err := Open(backend)
	assert.ErrorIs(t, err, ErrIncompatibleSchema)
}
