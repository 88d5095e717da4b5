package memory

import (
	"context"
	"sync"

	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
	"github.com/viant/conclave/service/dao/criteria"
)

// Service implements an in-memory run store. All operations are thread-safe
// and return **copies** of the underlying records to prevent data races when
// callers mutate the returned instances.
type Service struct {
	runs map[string]*run.Output
	mux  sync.RWMutex
}

// Compile-time check that Service implements the generic DAO interface.
var _ dao.Service[string, run.Output] = (*Service)(nil)

// Save persists (a clone of) the supplied run output.
func (s *Service) Save(_ context.Context, output *run.Output) error {
	if output == nil {
		return dao.ErrNilEntity
	}
	if output.ID == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	s.runs[output.ID] = output.Clone()
	return nil
}

// Load retrieves a copy of the run output or dao.ErrNotFound.
func (s *Service) Load(_ context.Context, id string) (*run.Output, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mux.RLock()
	output, ok := s.runs[id]
	s.mux.RUnlock()

	if !ok {
		return nil, dao.ErrNotFound
	}
	return output.Clone(), nil
}

// Delete removes a run record.
func (s *Service) Delete(_ context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mux.Lock()
	defer s.mux.Unlock()

	if _, ok := s.runs[id]; !ok {
		return dao.ErrNotFound
	}
	delete(s.runs, id)
	return nil
}

// List returns copies of all stored runs, optionally filtered by provider.
func (s *Service) List(_ context.Context, parameters ...*dao.Parameter) ([]*run.Output, error) {
	s.mux.RLock()
	defer s.mux.RUnlock()

	out := make([]*run.Output, 0, len(s.runs))
	for _, output := range s.runs {
		if !criteria.FilterByProvider(output.Provider, parameters) {
			continue
		}
		out = append(out, output.Clone())
	}
	return out, nil
}

// New constructor.
func New() *Service {
	return &Service{runs: map[string]*run.Output{}}
}
