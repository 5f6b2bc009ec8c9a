// Package storage provides the key-value persistence layer behind the run
// ledger. Backends work with raw []byte so callers choose their own
// serialization format.
package storage

import "errors"

var ErrBucketNotFound = errors.New("bucket not found")

// Backend is a bucketed key-value store.
type Backend interface {
	// CreateBucket creates a bucket. Creating an existing bucket is a no-op.
	CreateBucket(name []byte) error

	// Put stores a key-value pair in a bucket.
	Put(bucket, key, value []byte) error

	// Get retrieves a value. A missing key yields a nil value and no error.
	Get(bucket, key []byte) ([]byte, error)

	// ForEach iterates every key-value pair in a bucket in key order.
	ForEach(bucket []byte, fn func(k, v []byte) error) error

	Close() error
}
