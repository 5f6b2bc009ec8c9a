// Package ledger records every completed job durably, so past runs can be
// inspected after the fact. Records are JSON values keyed by job ID inside a
// storage.Backend.
package ledger

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"golang.org/x/mod/semver"

	"pkg.jsn.cam/forkreduce/pkg/storage"
)

// SchemaVersion is stamped into new ledgers. Opening a ledger written with a
// different major version fails: the record layout is only guaranteed stable
// within a major version.
const SchemaVersion = "v1.0.0"

var (
	bucketRuns = []byte("runs")
	bucketMeta = []byte("meta")

	keySchemaVersion = []byte("schema_version")
)

var ErrIncompatibleSchema = errors.New("incompatible ledger schema")

// Record is one completed job.
type Record struct {
	JobID          string    `json:"job_id"`
	InputPath      string    `json:"input_path"`
	SplitCount     int       `json:"split_count"`
	MapWorkerIDs   []uint64  `json:"map_worker_ids"`
	ReduceWorkerID uint64    `json:"reduce_worker_id"`
	ElapsedMicros  int64     `json:"elapsed_micros"`
	StartedAt      time.Time `json:"started_at"`
}

// Ledger is an append-only log of job records.
type Ledger struct {
	backend storage.Backend
}

// Open prepares a ledger on backend, stamping the schema version into a
// fresh ledger and verifying it on an existing one.
func Open(backend storage.Backend) (*Ledger, error) {
	for _, bucket := range [][]byte{bucketRuns, bucketMeta} {
		if err := backend.CreateBucket(bucket); err != nil {
			return nil, fmt.Errorf("create ledger bucket: %w", err)
		}
	}

	stored, err := backend.Get(bucketMeta, keySchemaVersion)
	if err != nil {
		return nil, fmt.Errorf("read ledger schema version: %w", err)
	}

	if stored == nil {
		if err := backend.Put(bucketMeta, keySchemaVersion, []byte(SchemaVersion)); err != nil {
			return nil, fmt.Errorf("stamp ledger schema version: %w", err)
		}
		return &Ledger{backend: backend}, nil
	}

	version := string(stored)
	if !semver.IsValid(version) || semver.Major(version) != semver.Major(SchemaVersion) {
		return nil, fmt.Errorf("%w: ledger has %s, engine writes %s",
			ErrIncompatibleSchema, version, SchemaVersion)
	}

	return &Ledger{backend: backend}, nil
}

// Append stores one record, keyed by its job ID.
func (l *Ledger) Append(rec Record) error {
	encoded, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode ledger record: %w", err)
	}
	if err := l.backend.Put(bucketRuns, []byte(rec.JobID), encoded); err != nil {
		return fmt.Errorf("store ledger record: %w", err)
	}

	log.Printf("[LEDGER] recorded job %s (%d splits, %dus)",
		rec.JobID, rec.SplitCount, rec.ElapsedMicros)
	return nil
}

// Runs returns every recorded job.
func (l *Ledger) Runs() ([]Record, error) {
	var records []Record
	err := l.backend.ForEach(bucketRuns, func(k, v []byte) error {
		var rec Record
		if err := json.Unmarshal(v, &rec); err != nil {
			return fmt.Errorf("decode ledger record %s: %w", k, err)
		}
		records = append(records, rec)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (l *Ledger) Close() error {
	return l.backend.Close()
}
