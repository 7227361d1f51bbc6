package gocqx

import (
	"context"
	"os"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"
)

var enableEventLogging bool = os.Getenv("GOCQX_EVENT_LOGGING") != ""

// CompletionQueueImpl bridges the native completion mechanism and the
// higher-level operation objects.  It owns the event queue, and a registry
// mapping tags to pending operations.  The registry lock only protects the
// map itself; each entry carries its own invocation guard so that dispatch,
// cancellation and shutdown never overlap on a single operation.
type CompletionQueueImpl struct {
	queue  *EventQueue
	logger *zap.Logger

	registryLock sync.Mutex
	tagCtr       Tag
	registry     map[Tag]*opEntry

	shutdown atomic.Bool
}

type CompletionQueueImplOptions struct {
	Logger *zap.Logger
}

func NewCompletionQueueImpl(opts *CompletionQueueImplOptions) *CompletionQueueImpl {
	if opts == nil {
		opts = &CompletionQueueImplOptions{}
	}
	return &CompletionQueueImpl{
		queue:  NewEventQueue(),
		logger: loggerOrNop(opts.Logger),

		tagCtr:   1,
		registry: make(map[Tag]*opEntry),
	}
}

// Queue returns the event queue that operations attach their asynchronous
// work to.  Operation Start paths post their completion events here.
func (i *CompletionQueueImpl) Queue() *EventQueue {
	return i.queue
}

// RegisterOperation allocates a unique tag for op and inserts it into the
// registry.  Registration cannot fail; if the queue has already begun
// shutting down, the operation is still accepted and is immediately failed
// with ErrQueueShutdown through the normal notification path so that no
// future is left unsatisfied when no Run workers remain to drain it.
func (i *CompletionQueueImpl) RegisterOperation(op AsyncOperation) Tag {
	// the entry escapes to the heap, allocate it outside the lock so the
	// allocation isn't done while the lock is held.
	entry := &opEntry{op: op}

	i.registryLock.Lock()
	tag := i.tagCtr
	i.tagCtr++
	i.registry[tag] = entry
	i.registryLock.Unlock()

	registeredOperations.Add(context.Background(), 1)

	// The shutdown flag is checked after the insert; any insert the shutdown
	// drain misses is guaranteed to observe the flag here and fail itself.
	if i.shutdown.Load() {
		i.failOperation(tag, ErrQueueShutdown)
	}

	return tag
}

func (i *CompletionQueueImpl) getEntry(tag Tag) (*opEntry, bool) {
	i.registryLock.Lock()
	defer i.registryLock.Unlock()

	entry, ok := i.registry[tag]
	return entry, ok
}

func (i *CompletionQueueImpl) getAndRemoveEntry(tag Tag) (*opEntry, bool) {
	i.registryLock.Lock()
	defer i.registryLock.Unlock()

	entry, ok := i.registry[tag]
	if !ok {
		return nil, false
	}

	delete(i.registry, tag)
	return entry, true
}

func (i *CompletionQueueImpl) removeEntry(tag Tag) {
	i.registryLock.Lock()
	defer i.registryLock.Unlock()

	delete(i.registry, tag)
}

func (i *CompletionQueueImpl) stealAllEntries() map[Tag]*opEntry {
	i.registryLock.Lock()
	defer i.registryLock.Unlock()

	entries := i.registry
	i.registry = make(map[Tag]*opEntry)

	return entries
}

// cancelOperation resolves a pending operation with a cancellation error.
// Returns true if the cancellation was delivered, false if the operation had
// already completed or been cancelled.
func (i *CompletionQueueImpl) cancelOperation(tag Tag, err error) bool {
	entry, ok := i.getAndRemoveEntry(tag)
	if !ok {
		return false
	}

	i.logger.Debug("cancelling operation",
		zap.Uint64("tag", uint64(tag)))

	more, wasInvoked := entry.notify(false, operationCancelledError{cause: err})
	if more {
		i.logger.DPanic("operation expected more completions after an error",
			zap.Uint64("tag", uint64(tag)))
	}

	if wasInvoked {
		cancelledOperations.Add(context.Background(), 1)
	}

	return wasInvoked
}

// failOperation resolves a pending operation with err directly, without
// wrapping it as a cancellation.  Used for shutdown-induced failures.
func (i *CompletionQueueImpl) failOperation(tag Tag, err error) bool {
	entry, ok := i.getAndRemoveEntry(tag)
	if !ok {
		return false
	}

	more, wasInvoked := entry.notify(false, err)
	if more {
		i.logger.DPanic("operation expected more completions after an error",
			zap.Uint64("tag", uint64(tag)))
	}

	return wasInvoked
}

func (i *CompletionQueueImpl) dispatchEvent(tag Tag, ok bool) bool {
	if enableEventLogging {
		i.logger.Debug("dispatching completion event",
			zap.Uint64("tag", uint64(tag)),
			zap.Bool("ok", ok))
	}

	entry, found := i.getEntry(tag)
	if !found {
		// the operation raced with a cancellation that won; the event no
		// longer has an owner.
		i.logger.Debug("dropping orphaned completion event",
			zap.Uint64("tag", uint64(tag)))
		orphanedCompletions.Add(context.Background(), 1)
		return false
	}

	more, wasInvoked := entry.notify(ok, nil)
	if !more {
		i.removeEntry(tag)
	}

	if !wasInvoked {
		orphanedCompletions.Add(context.Background(), 1)
		return false
	}

	dispatchedCompletions.Add(context.Background(), 1)
	return true
}

// Run blocks draining completion events from the queue and dispatching them
// to their operations, until the queue is shut down and fully drained.  It
// may be called concurrently from multiple goroutines to form a worker pool.
// Once the queue reports shutdown, any operations still registered are
// failed with ErrQueueShutdown before Run returns.
func (i *CompletionQueueImpl) Run() {
	for {
		ev, err := i.queue.Next()
		if err != nil {
			break
		}

		i.dispatchEvent(ev.Tag, ev.OK)
	}

	// Each returning worker steals whatever remains, so this is safe to run
	// from every worker in the pool.
	entries := i.stealAllEntries()
	for tag, entry := range entries {
		more, _ := entry.notify(false, ErrQueueShutdown)
		if more {
			i.logger.DPanic("operation expected more completions after an error",
				zap.Uint64("tag", uint64(tag)))
		}
	}
}

// Shutdown stops the queue accepting new work and causes blocked Run calls
// to return once the backlog of events is drained.  It is idempotent and
// safe to call from any goroutine, including while Run executes on others.
func (i *CompletionQueueImpl) Shutdown() {
	if !i.shutdown.CompareAndSwap(false, true) {
		return
	}

	i.logger.Debug("shutting down completion queue")
	i.queue.Close()
}

// SimulateCompletion invokes a registered operation's completion path
// directly, without a real event having been posted.  This exists to drive
// deterministic unit tests and should not be used otherwise.
func (i *CompletionQueueImpl) SimulateCompletion(tag Tag, ok bool) bool {
	return i.dispatchEvent(tag, ok)
}
