package optimistic

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GokhanOfficial/CaloriX/internal/gateway"
)

// ErrNotFound is returned for keys that are not in the collection, or
// temporary keys whose insert failed.
var ErrNotFound = gateway.ErrNotFound

type Op string

const (
	OpAdd    Op = "add"
	OpUpdate Op = "update"
	OpRemove Op = "remove"
)

// RollbackFunc is told about every optimistic change that was reverted.
type RollbackFunc func(op Op, key string, err error)

func LogRollbacks(log *slog.Logger) RollbackFunc {
	if log == nil {
		log = slog.Default()
	}
	return func(op Op, key string, err error) {
		log.Warn("optimistic change rolled back", "op", string(op), "key", key, "err", err)
	}
}

type InsertFunc[T Keyed] func(ctx context.Context, candidate T) (T, error)

// PersistFunc writes a change for the record stored under key.
type PersistFunc func(ctx context.Context, key string) error

// resolvedWindow is how many finished inserts keep their temporary key
// mapping after Add returns.
const resolvedWindow = 64

type insertion struct {
	done      chan struct{}
	serverKey string
	err       error
}

// Engine applies mutations to a Collection before the store confirms
// them, then reconciles or reverts.
type Engine[T Keyed] struct {
	items      *Collection[T]
	onRollback RollbackFunc

	mu       sync.Mutex
	inserts  map[string]*insertion
	resolved []string
}

func NewEngine[T Keyed](initial []T, onRollback RollbackFunc) *Engine[T] {
	if onRollback == nil {
		onRollback = LogRollbacks(nil)
	}
	return &Engine[T]{
		items:      NewCollection(initial),
		onRollback: onRollback,
		inserts:    map[string]*insertion{},
	}
}

func (e *Engine[T]) Items() []T { return e.items.Snapshot() }

func (e *Engine[T]) Collection() *Collection[T] { return e.items }

// Add appends candidate under its temporary key, stores it with insert,
// and swaps in the stored record. On failure the candidate is removed.
// Concurrent calls do not block each other.
func (e *Engine[T]) Add(ctx context.Context, candidate T, insert InsertFunc[T]) (T, error) {
	var zero T
	tempKey := candidate.Key()
	if tempKey == "" {
		return zero, fmt.Errorf("add: candidate has no temporary key")
	}

	ins := &insertion{done: make(chan struct{})}
	e.mu.Lock()
	if _, dup := e.inserts[tempKey]; dup {
		e.mu.Unlock()
		return zero, fmt.Errorf("add %s: temporary key already used", tempKey)
	}
	e.inserts[tempKey] = ins
	e.mu.Unlock()

	e.items.Apply(Append(candidate))

	saved, err := insert(ctx, candidate)
	if err != nil {
		e.items.Apply(RemoveKey[T](tempKey))
		ins.err = err
		close(ins.done)
		e.finish(tempKey)
		e.onRollback(OpAdd, tempKey, err)
		return zero, fmt.Errorf("add %s: %w", tempKey, err)
	}

	e.items.Apply(ReplaceKey(tempKey, saved))
	ins.serverKey = saved.Key()
	close(ins.done)
	e.finish(tempKey)
	return saved, nil
}

// finish records a resolved insert and forgets the oldest ones beyond
// resolvedWindow. Mutations on a forgotten temporary key fail with
// ErrNotFound.
func (e *Engine[T]) finish(tempKey string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.resolved = append(e.resolved, tempKey)
	for len(e.resolved) > resolvedWindow {
		delete(e.inserts, e.resolved[0])
		e.resolved = e.resolved[1:]
	}
}

// Update patches the record under key locally, then persists. If persist
// fails the record is restored from a snapshot taken before the change.
func (e *Engine[T]) Update(ctx context.Context, key string, patch func(T) T, persist PersistFunc) error {
	serverKey, err := e.resolve(ctx, key)
	if err != nil {
		return fmt.Errorf("update %s: %w", key, err)
	}
	if _, ok := e.items.Get(serverKey); !ok {
		return fmt.Errorf("update %s: %w", key, ErrNotFound)
	}

	snapshot := e.items.Snapshot()
	e.items.Apply(PatchKey(serverKey, patch))
	if err := persist(ctx, serverKey); err != nil {
		e.items.Apply(RestoreKey(snapshot, serverKey, e.currentKey))
		e.onRollback(OpUpdate, serverKey, err)
		return fmt.Errorf("update %s: %w", serverKey, err)
	}
	return nil
}

// Remove drops the record under key locally, then persists. If persist
// fails the record is restored from a snapshot taken before the change,
// at its previous position.
func (e *Engine[T]) Remove(ctx context.Context, key string, persist PersistFunc) error {
	serverKey, err := e.resolve(ctx, key)
	if err != nil {
		return fmt.Errorf("remove %s: %w", key, err)
	}
	if _, ok := e.items.Get(serverKey); !ok {
		return fmt.Errorf("remove %s: %w", key, ErrNotFound)
	}

	snapshot := e.items.Snapshot()
	e.items.Apply(RemoveKey[T](serverKey))
	if err := persist(ctx, serverKey); err != nil {
		e.items.Apply(RestoreKey(snapshot, serverKey, e.currentKey))
		e.onRollback(OpRemove, serverKey, err)
		return fmt.Errorf("remove %s: %w", serverKey, err)
	}
	return nil
}

// resolve maps a temporary key to its stored key, waiting for an insert
// still in flight. Other keys are returned unchanged.
func (e *Engine[T]) resolve(ctx context.Context, key string) (string, error) {
	e.mu.Lock()
	ins, ok := e.inserts[key]
	e.mu.Unlock()
	if !ok {
		return key, nil
	}
	select {
	case <-ins.done:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	if ins.err != nil {
		return "", fmt.Errorf("insert of %s failed: %w", key, ErrNotFound)
	}
	return ins.serverKey, nil
}

// currentKey returns the stored key for a temporary key whose insert has
// succeeded, and key itself otherwise.
func (e *Engine[T]) currentKey(key string) string {
	e.mu.Lock()
	ins, ok := e.inserts[key]
	e.mu.Unlock()
	if !ok {
		return key
	}
	select {
	case <-ins.done:
		if ins.err == nil {
			return ins.serverKey
		}
	default:
	}
	return key
}

// Pending reports whether key is a temporary key still being inserted.
func (e *Engine[T]) Pending(key string) bool {
	e.mu.Lock()
	ins, ok := e.inserts[key]
	e.mu.Unlock()
	if !ok {
		return false
	}
	select {
	case <-ins.done:
		return false
	default:
		return true
	}
}
