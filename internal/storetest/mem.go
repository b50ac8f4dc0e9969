// Package storetest provides an in-memory store for package tests.
package storetest

import (
	"context"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/stevedore/internal/cursor"
	"github.com/jacentio/stevedore/store"
)

// Mem implements the store interfaces the service consumes, backed by
// maps. Query ordering is ascending id, which is stable like the real
// store's scan order.
type Mem struct {
	mu     sync.Mutex
	tables map[string]map[int64]store.Record
	seq    map[string]int64

	// PutErr, when set, can fail individual writes to exercise the
	// partial-failure paths.
	PutErr func(kind string, id int64) error
}

// NewMem creates an empty in-memory store.
func NewMem() *Mem {
	return &Mem{
		tables: make(map[string]map[int64]store.Record),
		seq:    make(map[string]int64),
	}
}

func (m *Mem) table(kind string) map[int64]store.Record {
	t, ok := m.tables[kind]
	if !ok {
		t = make(map[int64]store.Record)
		m.tables[kind] = t
	}
	return t
}

func copyRecord(rec store.Record) store.Record {
	out := make(store.Record, len(rec))
	for k, v := range rec {
		out[k] = v
	}
	return out
}

// Get implements single-key reads.
func (m *Mem) Get(ctx context.Context, kind string, id int64) (store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	rec, ok := m.table(kind)[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return copyRecord(rec), nil
}

// Put implements single-key writes.
func (m *Mem) Put(ctx context.Context, kind string, id int64, rec store.Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.PutErr != nil {
		if err := m.PutErr(kind, id); err != nil {
			return err
		}
	}
	m.table(kind)[id] = copyRecord(rec)
	return nil
}

// Delete implements single-key deletes; absent records are a no-op.
func (m *Mem) Delete(ctx context.Context, kind string, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.table(kind), id)
	return nil
}

// BatchGet implements order-preserving multi-key reads.
func (m *Mem) BatchGet(ctx context.Context, kind string, ids []int64) ([]store.Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t := m.table(kind)
	var records []store.Record
	for _, id := range ids {
		if rec, ok := t[id]; ok {
			records = append(records, copyRecord(rec))
		}
	}
	return records, nil
}

// AllocateID hands out ascending ids per kind starting at 1.
func (m *Mem) AllocateID(ctx context.Context, kind string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.seq[kind]++
	return m.seq[kind], nil
}

// QueryPage mirrors the real store's look-ahead pagination over the
// ascending-id ordering.
func (m *Mem) QueryPage(ctx context.Context, input store.QueryInput) (store.QueryPage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	after := int64(0)
	if input.Cursor != "" {
		kind, id, err := cursor.Decode(input.Cursor)
		if err != nil || kind != input.Kind {
			return store.QueryPage{}, store.ErrBadCursor
		}
		after = id
	}

	var matching []int64
	for id, rec := range m.table(input.Kind) {
		if id > after && matchesFilter(rec, input.Filter) {
			matching = append(matching, id)
		}
	}
	sort.Slice(matching, func(i, j int) bool { return matching[i] < matching[j] })

	result := store.QueryPage{}
	limit := int(input.Limit)
	if len(matching) > limit {
		last := matching[limit-1]
		result.NextCursor = cursor.Encode(input.Kind, last)
		matching = matching[:limit]
	}
	for _, id := range matching {
		result.Items = append(result.Items, copyRecord(m.table(input.Kind)[id]))
	}
	return result, nil
}

// Count implements unbounded filtered counting.
func (m *Mem) Count(ctx context.Context, kind string, filter *store.Condition) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	total := 0
	for _, rec := range m.table(kind) {
		if matchesFilter(rec, filter) {
			total++
		}
	}
	return total, nil
}

func matchesFilter(rec store.Record, filter *store.Condition) bool {
	if filter == nil {
		return true
	}
	s, ok := rec[filter.Attr].(*types.AttributeValueMemberS)
	return ok && s.Value == filter.Equals
}
