package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
)

// Memory is an in-process car store for --dev runs and tests. Documents are
// round-tripped through JSON so callers see the same shapes Cars returns.
type Memory struct {
	mu    sync.Mutex
	order []string
	docs  map[string][]byte
}

func NewMemory() *Memory {
	return &Memory{docs: map[string][]byte{}}
}

func (m *Memory) All(ctx context.Context) ([]Record, error) {
	return m.filter(func(Record) bool { return true })
}

func (m *Memory) Incoming(ctx context.Context) ([]Record, error) {
	return m.filter(func(r Record) bool {
		return incoming(r.Doc["isIncoming"])
	})
}

// incoming matches the flag the same way Cars.Incoming does.
func incoming(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return t == "true"
	default:
		return false
	}
}

func (m *Memory) Get(ctx context.Context, id string) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	raw, ok := m.docs[id]
	if !ok {
		return Record{}, ErrNotFound
	}
	return decodeRaw(id, raw)
}

func (m *Memory) Set(ctx context.Context, id string, data map[string]any) error {
	raw, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("memory.Set: encode: %w", err)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[id]; !ok {
		m.order = append(m.order, id)
	}
	m.docs[id] = raw
	return nil
}

func (m *Memory) Delete(ctx context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.docs, id)
	for i, o := range m.order {
		if o == id {
			m.order = append(m.order[:i], m.order[i+1:]...)
			break
		}
	}
	return nil
}

func (m *Memory) filter(keep func(Record) bool) ([]Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []Record{}
	for _, id := range m.order {
		rec, err := decodeRaw(id, m.docs[id])
		if err != nil {
			return nil, err
		}
		if keep(rec) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func decodeRaw(id string, raw []byte) (Record, error) {
	data := map[string]any{}
	if err := json.Unmarshal(raw, &data); err != nil {
		return Record{}, fmt.Errorf("memory: decode %s: %w", id, err)
	}
	return Record{ID: id, Doc: data}, nil
}
