package templates

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

var (
	ErrMinimumRows     = errors.New("at least one row is required")
	ErrUnknownKey      = errors.New("no row with this key")
	ErrIndexOutOfRange = errors.New("row index out of range")
)

// Item is one row of a FieldArray. Key is stable across inserts, removals and
// moves, so inputs keep their identity while rows shift.
type Item[T any] struct {
	Key   string `json:"key"`
	Value T      `json:"value"`
}

// FieldArray is an ordered, editable list of form rows.
type FieldArray[T any] struct {
	items  []Item[T]
	minLen int
}

// NewFieldArray returns an array holding values. minLen is the number of
// rows Remove will not go below.
func NewFieldArray[T any](minLen int, values ...T) *FieldArray[T] {
	a := &FieldArray[T]{minLen: minLen, items: make([]Item[T], 0, len(values))}
	for _, v := range values {
		a.items = append(a.items, Item[T]{Key: uuid.NewString(), Value: v})
	}
	return a
}

func (a *FieldArray[T]) Len() int { return len(a.items) }

// Append adds v at the end and returns its key.
func (a *FieldArray[T]) Append(v T) string {
	key := uuid.NewString()
	a.items = append(a.items, Item[T]{Key: key, Value: v})
	return key
}

// Insert adds v before index at (at == Len appends).
func (a *FieldArray[T]) Insert(at int, v T) (string, error) {
	if at < 0 || at > len(a.items) {
		return "", fmt.Errorf("%w: %d", ErrIndexOutOfRange, at)
	}
	key := uuid.NewString()
	a.items = append(a.items, Item[T]{})
	copy(a.items[at+1:], a.items[at:])
	a.items[at] = Item[T]{Key: key, Value: v}
	return key, nil
}

func (a *FieldArray[T]) Remove(key string) error {
	i := a.Index(key)
	if i < 0 {
		return ErrUnknownKey
	}
	if len(a.items) <= a.minLen {
		return ErrMinimumRows
	}
	a.items = append(a.items[:i], a.items[i+1:]...)
	return nil
}

// Move relocates the row at index from to index to.
func (a *FieldArray[T]) Move(from, to int) error {
	n := len(a.items)
	if from < 0 || from >= n || to < 0 || to >= n {
		return fmt.Errorf("%w: %d -> %d", ErrIndexOutOfRange, from, to)
	}
	item := a.items[from]
	if from < to {
		copy(a.items[from:], a.items[from+1:to+1])
	} else {
		copy(a.items[to+1:], a.items[to:from])
	}
	a.items[to] = item
	return nil
}

// Update replaces the value of key with fn(value).
func (a *FieldArray[T]) Update(key string, fn func(T) T) error {
	i := a.Index(key)
	if i < 0 {
		return ErrUnknownKey
	}
	a.items[i].Value = fn(a.items[i].Value)
	return nil
}

// Index returns the position of key, or -1.
func (a *FieldArray[T]) Index(key string) int {
	for i, item := range a.items {
		if item.Key == key {
			return i
		}
	}
	return -1
}

func (a *FieldArray[T]) Items() []Item[T] {
	out := make([]Item[T], len(a.items))
	copy(out, a.items)
	return out
}

// Values returns the row values in order.
func (a *FieldArray[T]) Values() []T {
	out := make([]T, len(a.items))
	for i, item := range a.items {
		out[i] = item.Value
	}
	return out
}

func (a *FieldArray[T]) MarshalJSON() ([]byte, error) {
	if a == nil || a.items == nil {
		return []byte("[]"), nil
	}
	return json.Marshal(a.items)
}

// UnmarshalJSON reads rows as sent back by the browser. Rows without a key
// are new and get one.
func (a *FieldArray[T]) UnmarshalJSON(data []byte) error {
	var items []Item[T]
	if err := json.Unmarshal(data, &items); err != nil {
		return err
	}
	seen := make(map[string]bool, len(items))
	for i := range items {
		if items[i].Key == "" || seen[items[i].Key] {
			items[i].Key = uuid.NewString()
		}
		seen[items[i].Key] = true
	}
	a.items = items
	return nil
}
