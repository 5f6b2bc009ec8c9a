// Package worker is the engine's spawn-and-join runtime. A worker is a
// managed task with the observable contract of a child process: the parent
// hands it a task at spawn time, shares no mutable state with it afterwards,
// and sees nothing back except an exit status at join time. All data handoff
// happens through files named before the spawn.
package worker

import (
	"errors"
	"log"
	"sync/atomic"
)

// Exit statuses. Anything non-zero is a failure.
const (
	StatusOK       = 0
	StatusFailed   = 1
	StatusPanicked = 2
)

var ErrNilTask = errors.New("nil task")

// Task is the body of one worker. It returns the worker's exit status.
type Task func() int

// Runtime spawns workers and hands out unique worker IDs.
type Runtime struct {
	nextID atomic.Uint64
}

func NewRuntime() *Runtime {
	return &Runtime{}
}

// Handle is the parent's only view of a spawned worker.
type Handle struct {
	id     uint64
	name   string
	done   chan struct{}
	status int
}

// Spawn starts a worker running task and returns immediately. The returned
// handle's ID is valid before the task may have run at all.
func (r *Runtime) Spawn(name string, task Task) (*Handle, error) {
	if task == nil {
		return nil, ErrNilTask
	}

	h := &Handle{
		id:   r.nextID.Add(1),
		name: name,
		done: make(chan struct{}),
	}

	go func() {
		defer close(h.done)
		defer func() {
			if p := recover(); p != nil {
				log.Printf("[WORKER:%d] %s panicked: %v", h.id, h.name, p)
				h.status = StatusPanicked
			}
		}()
		h.status = task()
	}()

	return h, nil
}

func (h *Handle) ID() uint64 {
	return h.id
}

func (h *Handle) Name() string {
	return h.name
}

// Join blocks until the worker exits and returns its status. There is no
// timeout: a hung worker blocks Join indefinitely. Join may be called more
// than once; every call returns the same status.
func (h *Handle) Join() int {
	<-h.done
	return h.status
}
