package core

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-params/engine/renderer/sim"
)

// DefaultSyncQueueSize is the number of pending snapshots a Syncer buffers before Submit blocks.
const DefaultSyncQueueSize = 64

// syncer is the implementation of the Syncer interface.
type syncer struct {
	mu        sync.Mutex
	pool      worker.DynamicWorkerPool
	resolver  ResourceResolver
	logger    *slog.Logger
	queueSize int
	wg        sync.WaitGroup
	nextID    int
	firstErr  error
	closed    bool
}

// Syncer hands authoring-side snapshots to the render view. Every submitted task runs on a single render
// worker in submission order, so render materials and the resolver are only touched from that worker.
type Syncer interface {
	// Submit queues a snapshot to be applied to a render material.
	//
	// Parameters:
	//   - m: the receiving render material
	//   - snap: the snapshot taken from the authoring material
	Submit(m Material, snap sim.Snapshot)

	// SubmitFunc queues arbitrary render-timeline work behind the snapshots submitted so far.
	//
	// Parameters:
	//   - fn: the work to run on the render worker
	SubmitFunc(fn func() error)

	// Wait blocks until every queued task has run.
	//
	// Returns:
	//   - error: the first error a task returned since the previous Wait, or nil
	Wait() error

	// Close waits for queued tasks and stops the render worker. Submitting after Close panics.
	//
	// Returns:
	//   - error: the first pending task error, as Wait
	Close() error
}

var _ Syncer = &syncer{}

// NewSyncer creates a syncer that applies snapshots with the given resolver.
//
// Parameters:
//   - resolver: converts authoring resource handles while snapshots are applied
//   - options: variadic list of SyncerBuilderOption functions
//
// Returns:
//   - Syncer: the syncer, with its render worker started
func NewSyncer(resolver ResourceResolver, options ...SyncerBuilderOption) Syncer {
	if resolver == nil {
		panic("core: syncer requires a resource resolver")
	}
	s := &syncer{
		resolver:  resolver,
		logger:    slog.Default(),
		queueSize: DefaultSyncQueueSize,
	}
	for _, option := range options {
		option(s)
	}
	s.pool = worker.NewDynamicWorkerPool(1, s.queueSize, 1*time.Second)
	return s
}

func (s *syncer) Submit(m Material, snap sim.Snapshot) {
	if snap.Empty() {
		return
	}
	s.SubmitFunc(func() error {
		if err := m.ApplySnapshot(snap, s.resolver); err != nil {
			return err
		}
		s.logger.Debug("core: applied snapshot", "material", m.Key(), "entries", len(snap.Entries))
		return nil
	})
}

func (s *syncer) SubmitFunc(fn func() error) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		panic("core: submit on a closed syncer")
	}
	id := s.nextID
	s.nextID++
	s.wg.Add(1)
	s.mu.Unlock()

	s.pool.SubmitTask(worker.Task{
		ID: id,
		Do: func() (any, error) {
			defer s.wg.Done()
			err := s.run(fn)
			if err != nil {
				s.logger.Error("core: render task failed", "task", id, "error", err)
				s.mu.Lock()
				if s.firstErr == nil {
					s.firstErr = err
				}
				s.mu.Unlock()
			}
			return nil, err
		},
	})
}

// run calls fn, reporting a panic as an error.
func (s *syncer) run(fn func() error) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("core: render task panicked: %v", r)
		}
	}()
	return fn()
}

func (s *syncer) Wait() error {
	s.wg.Wait()
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.firstErr
	s.firstErr = nil
	return err
}

func (s *syncer) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	err := s.Wait()
	s.pool.Stop()
	return err
}
