package catalog

import (
	"context"
	"encoding/json"
	"os"
	"sort"

	"github.com/pedalstack/pedalstack/pkg/errors"
)

// MemoryStore serves catalog records from memory. Used for tests and for
// CLI runs driven by a fixture file.
type MemoryStore struct {
	pedals map[string]*PedalRecord
	boards map[string]*BoardRecord
	amps   map[string]*AmpRecord
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		pedals: make(map[string]*PedalRecord),
		boards: make(map[string]*BoardRecord),
		amps:   make(map[string]*AmpRecord),
	}
}

// Fixture is the JSON document a fixture file holds.
type Fixture struct {
	Pedals []*PedalRecord `json:"pedals"`
	Boards []*BoardRecord `json:"boards"`
	Amps   []*AmpRecord   `json:"amps"`
}

// LoadFile reads a JSON fixture file into a memory store.
func LoadFile(path string) (*MemoryStore, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "reading catalog fixture %s", path)
	}
	var fx Fixture
	if err := json.Unmarshal(data, &fx); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "parsing catalog fixture %s", path)
	}
	s := NewMemoryStore()
	for _, p := range fx.Pedals {
		s.AddPedal(p)
	}
	for _, b := range fx.Boards {
		s.AddBoard(b)
	}
	for _, a := range fx.Amps {
		s.AddAmp(a)
	}
	return s, nil
}

// AddPedal registers a pedal record.
func (s *MemoryStore) AddPedal(r *PedalRecord) { s.pedals[r.ID] = r }

// AddBoard registers a board record.
func (s *MemoryStore) AddBoard(r *BoardRecord) { s.boards[r.ID] = r }

// AddAmp registers an amp record.
func (s *MemoryStore) AddAmp(r *AmpRecord) { s.amps[r.ID] = r }

// Pedal implements Store.
func (s *MemoryStore) Pedal(ctx context.Context, id string) (*PedalRecord, error) {
	r, ok := s.pedals[id]
	if !ok {
		return nil, errors.New(errors.ErrCodePedalNotFound, "pedal %q not in catalog", id)
	}
	return r, nil
}

// Board implements Store.
func (s *MemoryStore) Board(ctx context.Context, id string) (*BoardRecord, error) {
	r, ok := s.boards[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeBoardNotFound, "board %q not in catalog", id)
	}
	return r, nil
}

// Amp implements Store.
func (s *MemoryStore) Amp(ctx context.Context, id string) (*AmpRecord, error) {
	r, ok := s.amps[id]
	if !ok {
		return nil, errors.New(errors.ErrCodeNotFound, "amp %q not in catalog", id)
	}
	return r, nil
}

// ListPedals implements Store.
func (s *MemoryStore) ListPedals(ctx context.Context) ([]*PedalRecord, error) {
	out := make([]*PedalRecord, 0, len(s.pedals))
	for _, r := range s.pedals {
		out = append(out, r)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// Close implements Store.
func (s *MemoryStore) Close(ctx context.Context) error { return nil }

// Ensure MemoryStore implements Store.
var _ Store = (*MemoryStore)(nil)
