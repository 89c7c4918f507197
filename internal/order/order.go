// Package order implements position handling for the orderable content
// collections (services, categories, price items, FAQs, posts). Every
// collection shares the same contract: positions are dense 1..N, a move
// rewrites the whole sequence, and a boundary move is a no-op that touches
// nothing in the store.
package order

import (
	"context"
	"errors"
	"fmt"
)

type Direction string

const (
	DirectionUp   Direction = "up"
	DirectionDown Direction = "down"
)

var (
	ErrNotFound      = errors.New("id not in collection")
	ErrOrderMismatch = errors.New("ordering is not a permutation of the collection")
)

// MoveAdjacent swaps id with its neighbour in the given direction. The
// returned bool is false when the move was a boundary no-op; the input slice
// is never mutated.
func MoveAdjacent(ids []string, id string, dir Direction) ([]string, bool, error) {
	i := indexOf(ids, id)
	if i < 0 {
		return nil, false, ErrNotFound
	}
	if dir != DirectionUp && dir != DirectionDown {
		return nil, false, fmt.Errorf("unknown direction %q", dir)
	}
	j := i - 1
	if dir == DirectionDown {
		j = i + 1
	}
	if j < 0 || j >= len(ids) {
		return append([]string(nil), ids...), false, nil
	}
	next := append([]string(nil), ids...)
	next[i], next[j] = next[j], next[i]
	return next, true, nil
}

// MoveToPosition removes draggedID and reinserts it at targetID's position
// after the removal, keeping every other relative ordering. Dropping an item
// onto itself is a no-op.
func MoveToPosition(ids []string, draggedID, targetID string) ([]string, bool, error) {
	if indexOf(ids, draggedID) < 0 || indexOf(ids, targetID) < 0 {
		return nil, false, ErrNotFound
	}
	if draggedID == targetID {
		return append([]string(nil), ids...), false, nil
	}

	without := make([]string, 0, len(ids))
	for _, id := range ids {
		if id != draggedID {
			without = append(without, id)
		}
	}
	at := indexOf(without, targetID)

	next := make([]string, 0, len(ids))
	next = append(next, without[:at]...)
	next = append(next, draggedID)
	next = append(next, without[at:]...)
	return next, true, nil
}

func indexOf(ids []string, id string) int {
	for i, candidate := range ids {
		if candidate == id {
			return i
		}
	}
	return -1
}

// PositionWriter is the store-side half of the engine for one collection.
// WritePositions must persist position = index+1 for the whole sequence
// atomically, so a failure leaves the stored order untouched.
type PositionWriter interface {
	ListOrderedIDs(ctx context.Context) ([]string, error)
	WritePositions(ctx context.Context, orderedIDs []string) error
}

// Engine binds the pure move operations to one collection's storage.
type Engine struct {
	writer PositionWriter
}

func NewEngine(writer PositionWriter) *Engine {
	return &Engine{writer: writer}
}

// MoveAdjacent persists an up/down swap and returns the resulting order.
// Boundary moves return the current order without a store write.
func (e *Engine) MoveAdjacent(ctx context.Context, id string, dir Direction) ([]string, error) {
	current, err := e.writer.ListOrderedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current order: %w", err)
	}
	next, changed, err := MoveAdjacent(current, id, dir)
	if err != nil {
		return nil, err
	}
	if !changed {
		return next, nil
	}
	if err := e.writer.WritePositions(ctx, next); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	return next, nil
}

// MoveToPosition persists a drag-and-drop move and returns the resulting order.
func (e *Engine) MoveToPosition(ctx context.Context, draggedID, targetID string) ([]string, error) {
	current, err := e.writer.ListOrderedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current order: %w", err)
	}
	next, changed, err := MoveToPosition(current, draggedID, targetID)
	if err != nil {
		return nil, err
	}
	if !changed {
		return next, nil
	}
	if err := e.writer.WritePositions(ctx, next); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	return next, nil
}

// Apply persists an explicit full ordering supplied by the client. The
// ordering must be a permutation of the stored collection; anything else is
// rejected before any write happens.
func (e *Engine) Apply(ctx context.Context, orderedIDs []string) ([]string, error) {
	current, err := e.writer.ListOrderedIDs(ctx)
	if err != nil {
		return nil, fmt.Errorf("read current order: %w", err)
	}
	if !samePermutation(current, orderedIDs) {
		return nil, ErrOrderMismatch
	}
	if err := e.writer.WritePositions(ctx, orderedIDs); err != nil {
		return nil, fmt.Errorf("persist order: %w", err)
	}
	return append([]string(nil), orderedIDs...), nil
}

func samePermutation(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	seen := make(map[string]int, len(a))
	for _, id := range a {
		seen[id]++
	}
	for _, id := range b {
		seen[id]--
		if seen[id] < 0 {
			return false
		}
	}
	return true
}
