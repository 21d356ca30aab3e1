package store

import (
	"encoding/json"
	"fmt"
)

// Record is a value that can live in a Table.
type Record[T any] interface {
	EntityID() string
	Clone() T
}

// Table is one persisted collection. Values handed in and out are clones, so
// callers can only change a table through Upsert and Remove.
type Table[T Record[T]] struct {
	key      string
	items    []T
	index    map[string]int
	writable bool
	dirty    bool
}

func newTable[T Record[T]](key string, items []T) *Table[T] {
	t := &Table[T]{key: key, items: make([]T, 0, len(items))}
	t.items = append(t.items, items...)
	t.reindex()
	return t
}

// List returns the records accepted by filter in stored order. A nil filter
// accepts everything.
func (t *Table[T]) List(filter func(T) bool) []T {
	out := make([]T, 0, len(t.items))
	for _, item := range t.items {
		if filter != nil && !filter(item) {
			continue
		}
		out = append(out, item.Clone())
	}
	return out
}

func (t *Table[T]) Get(id string) (T, error) {
	i, ok := t.index[id]
	if !ok {
		var zero T
		return zero, fmt.Errorf("%s %s: %w", t.key, id, ErrNotFound)
	}
	return t.items[i].Clone(), nil
}

func (t *Table[T]) Has(id string) bool {
	_, ok := t.index[id]
	return ok
}

func (t *Table[T]) Len() int { return len(t.items) }

// Upsert replaces the record with the same id or appends a new one.
func (t *Table[T]) Upsert(v T) error {
	if !t.writable {
		return ErrReadOnly
	}
	id := v.EntityID()
	if id == "" {
		return fmt.Errorf("%s: empty id", t.key)
	}
	if i, ok := t.index[id]; ok {
		t.items[i] = v.Clone()
	} else {
		t.index[id] = len(t.items)
		t.items = append(t.items, v.Clone())
	}
	t.dirty = true
	return nil
}

func (t *Table[T]) Remove(id string) error {
	if !t.writable {
		return ErrReadOnly
	}
	i, ok := t.index[id]
	if !ok {
		return fmt.Errorf("%s %s: %w", t.key, id, ErrNotFound)
	}
	t.items = append(t.items[:i:i], t.items[i+1:]...)
	t.reindex()
	t.dirty = true
	return nil
}

// fork returns a writable copy. Records are shared because they are never
// mutated in place.
func (t *Table[T]) fork() *Table[T] {
	out := &Table[T]{
		key:      t.key,
		items:    append(make([]T, 0, len(t.items)), t.items...),
		index:    make(map[string]int, len(t.index)),
		writable: true,
	}
	for k, v := range t.index {
		out.index[k] = v
	}
	return out
}

func (t *Table[T]) freeze() {
	t.writable = false
	t.dirty = false
}

func (t *Table[T]) reindex() {
	t.index = make(map[string]int, len(t.items))
	for i, item := range t.items {
		t.index[item.EntityID()] = i
	}
}

func (t *Table[T]) encode() ([]byte, error) {
	return json.Marshal(t.items)
}

func decodeTable[T Record[T]](key string, raw []byte) (*Table[T], error) {
	var items []T
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &items); err != nil {
			return nil, err
		}
	}
	return newTable(key, items), nil
}
