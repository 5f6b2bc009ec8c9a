// Package forkreduce is a single-host batch execution engine. It runs one
// transform-then-aggregate job over one input file: the input is split into
// line-aligned chunks, one map worker per chunk runs the job's map function
// in parallel, and a single reduce worker merges every intermediate output
// into the final result file.
package forkreduce

import (
	"fmt"
	"io"
	"log"
	"os"
	"time"

	"github.com/google/uuid"

	"pkg.jsn.cam/forkreduce/internal/ledger"
	"pkg.jsn.cam/forkreduce/internal/worker"
	"pkg.jsn.cam/forkreduce/pkg/storage"
)

// phase tracks where a job is in its lifecycle. Phases advance strictly in
// order; there are no retries.
type phase int

const (
	phaseIdle phase = iota
	phaseSplitting
	phaseMapping
	phaseWaiting
	phaseReducing
	phaseDone
)

func (p phase) String() string {
	switch p {
	case phaseIdle:
		return "idle"
	case phaseSplitting:
		return "splitting"
	case phaseMapping:
		return "mapping"
	case phaseWaiting:
		return "waiting"
	case phaseReducing:
		return "reducing"
	case phaseDone:
		return "done"
	}
	return "unknown"
}

// Options configures an Engine.
type Options struct {
	// Dir is the job working directory where split, intermediate, and
	// result files live. Empty means the current directory. The artifact
	// names inside it are fixed, so only one job may run per directory.
	Dir string

	// LedgerPath, when non-empty, is a bbolt database file recording every
	// completed job.
	LedgerPath string
}

// Engine drives jobs. One Engine runs one job at a time.
type Engine struct {
	dir    string
	rt     *worker.Runtime
	ledger *ledger.Ledger
}

func New(opts Options) (*Engine, error) {
	dir := opts.Dir
	if dir == "" {
		dir = "."
	}

	e := &Engine{
		dir: dir,
		rt:  worker.NewRuntime(),
	}

	if opts.LedgerPath != "" {
		backend, err := storage.NewBboltBackend(opts.LedgerPath)
		if err != nil {
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		l, err := ledger.Open(backend)
		if err != nil {
			backend.Close()
			return nil, fmt.Errorf("open ledger: %w", err)
		}
		e.ledger = l
	}

	return e, nil
}

// Close releases the engine's ledger, if any. On-disk job artifacts are
// never removed.
func (e *Engine) Close() error {
	if e.ledger != nil {
		return e.ledger.Close()
	}
	return nil
}

// Run executes one job: split the input, fan out one map worker per split,
// wait for all of them, run the single reduce worker, record timing.
//
// Run returns an error only for fatal setup failures (bad spec, unreadable
// input, failure to create a split file, spawn failure). A map or reduce
// function reporting failure is logged and the job continues: reduce runs
// over whatever intermediate files exist and Run still returns nil.
//
// result.MapWorkerIDs must be pre-sized to spec.SplitCount by the caller.
func (e *Engine) Run(spec *JobSpec, result *JobResult) error {
	start := time.Now()

	if err := validate(spec, result); err != nil {
		return err
	}

	jobID := uuid.New()
	n := spec.SplitCount
	log.Printf("[ENGINE] job %s: %s, %d splits, dir %s", jobID, spec.InputPath, n, e.dir)

	state := phaseSplitting
	log.Printf("[ENGINE] job %s: %s", jobID, state)
	if err := e.splitInput(spec); err != nil {
		return err
	}

	// Spawn every map worker without blocking between spawns; IDs land in
	// the result before any worker may have finished.
	state = phaseMapping
	log.Printf("[ENGINE] job %s: %s", jobID, state)
	handles := make([]*worker.Handle, n)
	for i := 0; i < n; i++ {
		h, err := e.rt.Spawn(fmt.Sprintf("map-%d", i), e.mapTask(spec, i))
		if err != nil {
			return fmt.Errorf("spawn map worker %d: %w", i, err)
		}
		handles[i] = h
		result.MapWorkerIDs[i] = WorkerID(h.ID())
	}

	// Completion barrier: join in split-index order. Failures are logged,
	// never fatal; reduce still runs over whatever was produced.
	state = phaseWaiting
	log.Printf("[ENGINE] job %s: %s", jobID, state)
	failed := 0
	for i, h := range handles {
		if status := h.Join(); status != worker.StatusOK {
			log.Printf("[ENGINE] job %s: map worker %d (id %d) failed with status %d",
				jobID, i, h.ID(), status)
			failed++
		}
		if spec.OnProgress != nil {
			spec.OnProgress(i+1, n)
		}
	}
	if failed > 0 {
		log.Printf("[ENGINE] job %s: %d of %d map workers failed, reducing anyway",
			jobID, failed, n)
	}

	state = phaseReducing
	log.Printf("[ENGINE] job %s: %s", jobID, state)
	rh, err := e.rt.Spawn("reduce", e.reduceTask(spec))
	if err != nil {
		return fmt.Errorf("spawn reduce worker: %w", err)
	}
	result.ReduceWorkerID = WorkerID(rh.ID())
	if status := rh.Join(); status != worker.StatusOK {
		log.Printf("[ENGINE] job %s: reduce worker (id %d) failed with status %d",
			jobID, rh.ID(), status)
	}

	state = phaseDone
	result.JobID = jobID
	result.ProcessingTime = time.Since(start).Truncate(time.Microsecond)
	log.Printf("[ENGINE] job %s: %s in %v", jobID, state, result.ProcessingTime)

	if e.ledger != nil {
		if err := e.record(jobID, spec, result, start); err != nil {
			return err
		}
	}
	return nil
}

func validate(spec *JobSpec, result *JobResult) error {
	if spec == nil {
		return ErrNilSpec
	}
	if result == nil {
		return ErrNilResult
	}
	if spec.SplitCount < 1 {
		return fmt.Errorf("%w: got %d", ErrInvalidSplitCount, spec.SplitCount)
	}
	if spec.Map == nil {
		return ErrMissingMapFunc
	}
	if spec.Reduce == nil {
		return ErrMissingReduceFunc
	}
	return nil
}

// mapTask is the body of one map worker. It runs with no state shared with
// the engine beyond the spec's immutable fields: the worker opens its own
// split file, creates its own intermediate file, and reports back only an
// exit status.
func (e *Engine) mapTask(spec *JobSpec, index int) worker.Task {
	splitName := e.splitFileName(index)
	itmName := e.intermediateFileName(index)

	return func() int {
		in, err := os.Open(splitName)
		if err != nil {
			log.Printf("[MAP:%d] open split file: %v", index, err)
			return worker.StatusFailed
		}
		defer in.Close()

		out, err := os.Create(itmName)
		if err != nil {
			log.Printf("[MAP:%d] create intermediate file: %v", index, err)
			return worker.StatusFailed
		}
		defer out.Close()

		split := DataSplit{Data: in, UserData: spec.UserData}
		if err := spec.Map(split, out); err != nil {
			log.Printf("[MAP:%d] map function: %v", index, err)
			return worker.StatusFailed
		}
		return worker.StatusOK
	}
}

// reduceTask is the body of the single reduce worker: open every
// intermediate file read-only in split-index order, create the result file,
// run the reduce function over the ordered handles.
func (e *Engine) reduceTask(spec *JobSpec) worker.Task {
	itmNames := make([]string, spec.SplitCount)
	for i := range itmNames {
		itmNames[i] = e.intermediateFileName(i)
	}
	resultName := e.resultFileName()

	return func() int {
		inputs := make([]io.ReadSeeker, 0, len(itmNames))
		for i, name := range itmNames {
			f, err := os.Open(name)
			if err != nil {
				log.Printf("[REDUCE] open intermediate file %d: %v", i, err)
				return worker.StatusFailed
			}
			defer f.Close()
			inputs = append(inputs, f)
		}

		out, err := os.Create(resultName)
		if err != nil {
			log.Printf("[REDUCE] create result file: %v", err)
			return worker.StatusFailed
		}
		defer out.Close()

		if err := spec.Reduce(inputs, out); err != nil {
			log.Printf("[REDUCE] reduce function: %v", err)
			return worker.StatusFailed
		}
		return worker.StatusOK
	}
}

func (e *Engine) record(jobID uuid.UUID, spec *JobSpec, result *JobResult, start time.Time) error {
	ids := make([]uint64, len(result.MapWorkerIDs))
	for i, id := range result.MapWorkerIDs {
		ids[i] = uint64(id)
	}
	return e.ledger.Append(ledger.Record{
		JobID:          jobID.String(),
		InputPath:      spec.InputPath,
		SplitCount:     spec.SplitCount,
		MapWorkerIDs:   ids,
		ReduceWorkerID: uint64(result.ReduceWorkerID),
		ElapsedMicros:  result.ProcessingTime.Microseconds(),
		StartedAt:      start.UTC(),
	})
}
