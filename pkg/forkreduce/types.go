package forkreduce

import (
	"io"
	"time"

	"github.com/google/uuid"
)

// WorkerID identifies one spawned worker within a job. IDs are unique
// across a Runtime's lifetime and recorded into JobResult at spawn time.
type WorkerID uint64

// DataSplit is the unit of work handed to a map function: a handle to one
// split's bytes plus the job's user data. The user data is shared by every
// map invocation and must be treated as read-only.
type DataSplit struct {
	Data     io.Reader
	UserData any
}

// MapFunc transforms one split. It reads the split's bytes, writes arbitrary
// bytes to its own intermediate output, and returns nil on success. Map
// functions must tolerate empty input: when the split count exceeds the
// number of input lines, later splits are empty.
type MapFunc func(split DataSplit, out io.Writer) error

// ReduceFunc merges every intermediate output into the final result. Inputs
// are ordered by split index. A reduce function must seek each input back to
// its start before reading, since handles may already be positioned elsewhere.
type ReduceFunc func(inputs []io.ReadSeeker, out io.Writer) error

// JobSpec describes one job. It is immutable for the job's duration.
type JobSpec struct {
	// InputPath is the flat file to process.
	InputPath string

	// SplitCount sets both the number of splits and the map parallelism.
	// Must be positive.
	SplitCount int

	Map    MapFunc
	Reduce ReduceFunc

	// UserData is forwarded unchanged to every map invocation.
	UserData any

	// OnProgress, when non-nil, is invoked by the completion barrier after
	// each map worker is joined. It runs on the engine's goroutine.
	OnProgress func(done, total int)
}

// JobResult reports one finished job. The caller must pre-size MapWorkerIDs
// to the split count before passing it to Run; the engine does not validate
// this.
type JobResult struct {
	JobID          uuid.UUID
	MapWorkerIDs   []WorkerID
	ReduceWorkerID WorkerID

	// ProcessingTime is total wall-clock time, microsecond resolution.
	ProcessingTime time.Duration
}
