package fs

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/viant/afs"
	"github.com/viant/afs/file"
	"github.com/viant/afs/option"
	"github.com/viant/afs/url"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
	"github.com/viant/conclave/service/dao/criteria"
)

// Service implements a filesystem-backed run store. Records are serialised as
// pretty JSON, one file per run, so they stay greppable for post-hoc audit.
// Any afs scheme works as base path (file://, mem://, s3://...).
type Service struct {
	basePath string
	fs       afs.Service
	mu       sync.RWMutex
}

// Ensure Service implements dao.Service
var _ dao.Service[string, run.Output] = (*Service)(nil)

// Save persists a run record to the filesystem.
func (s *Service) Save(ctx context.Context, output *run.Output) error {
	if output == nil {
		return dao.ErrNilEntity
	}
	if output.ID == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	data, err := json.MarshalIndent(output, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal run: %w", err)
	}

	filePath := s.runPath(output.ID)
	if err = s.fs.Upload(ctx, filePath, file.DefaultFileOsMode, bytes.NewReader(data)); err != nil {
		return fmt.Errorf("failed to save run to file %s: %w", filePath, err)
	}
	return nil
}

// Load retrieves a run record from the filesystem.
func (s *Service) Load(ctx context.Context, id string) (*run.Output, error) {
	if id == "" {
		return nil, dao.ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	filePath := s.runPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to check if run exists: %w", err)
	}
	if !exists {
		return nil, dao.ErrNotFound
	}

	data, err := s.fs.DownloadWithURL(ctx, filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to read run file: %w", err)
	}

	var output run.Output
	if err := json.Unmarshal(data, &output); err != nil {
		return nil, fmt.Errorf("failed to unmarshal run data: %w", err)
	}
	return &output, nil
}

// Delete removes a run record from the filesystem.
func (s *Service) Delete(ctx context.Context, id string) error {
	if id == "" {
		return dao.ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	filePath := s.runPath(id)
	exists, err := s.fs.Exists(ctx, filePath)
	if err != nil {
		return fmt.Errorf("failed to check if run exists: %w", err)
	}
	if !exists {
		return dao.ErrNotFound
	}
	if err := s.fs.Delete(ctx, filePath); err != nil {
		return fmt.Errorf("failed to delete run file: %w", err)
	}
	return nil
}

// List returns all run records, optionally filtered by provider.
func (s *Service) List(ctx context.Context, parameters ...*dao.Parameter) ([]*run.Output, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	objects, err := s.fs.List(ctx, s.basePath, option.NewRecursive(true))
	if err != nil {
		return nil, fmt.Errorf("failed to list run files: %w", err)
	}

	var runs []*run.Output
	for _, object := range objects {
		if object.IsDir() {
			continue
		}
		if !strings.HasSuffix(object.Name(), ".json") {
			continue
		}

		data, err := s.fs.Download(ctx, object)
		if err != nil {
			// Log error but continue processing other files
			fmt.Printf("Error reading run file %s: %v\n", object.URL(), err)
			continue
		}

		var output run.Output
		if err := json.Unmarshal(data, &output); err != nil {
			fmt.Printf("Error unmarshaling run from %s: %v\n", object.URL(), err)
			continue
		}
		if !criteria.FilterByProvider(output.Provider, parameters) {
			continue
		}
		runs = append(runs, &output)
	}
	return runs, nil
}

// runPath returns the file location for a run record. The base path is a URL
// (mem://, s3://, ...) so the join has to be scheme-aware.
func (s *Service) runPath(id string) string {
	return url.Join(s.basePath, fmt.Sprintf("%s.json", id))
}

// New creates a new filesystem run store rooted at basePath.
func New(basePath string) (*Service, error) {
	if basePath == "" {
		return nil, fmt.Errorf("base path cannot be empty")
	}
	return &Service{
		basePath: url.Normalize(basePath, file.Scheme),
		fs:       afs.New(),
	}, nil
}
