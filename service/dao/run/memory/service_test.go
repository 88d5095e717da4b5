package memory

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/conclave/service/dao"
)

func TestService_CloneOnReadAndWrite(t *testing.T) {
	store := New()
	ctx := context.Background()

	assert.ErrorIs(t, store.Save(ctx, nil), dao.ErrNilEntity)
	assert.ErrorIs(t, store.Save(ctx, &run.Output{}), dao.ErrInvalidID)

	output := &run.Output{ID: "run-1", Goal: "original", Provider: "mock"}
	assert.NoError(t, store.Save(ctx, output))

	// mutating the saved instance must not affect the store
	output.Goal = "mutated"
	loaded, err := store.Load(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, "original", loaded.Goal)

	// mutating the loaded instance must not affect the store either
	loaded.Goal = "mutated again"
	reloaded, err := store.Load(ctx, "run-1")
	assert.NoError(t, err)
	assert.Equal(t, "original", reloaded.Goal)

	_, err = store.Load(ctx, "")
	assert.ErrorIs(t, err, dao.ErrInvalidID)
	_, err = store.Load(ctx, "missing")
	assert.ErrorIs(t, err, dao.ErrNotFound)

	runs, err := store.List(ctx)
	assert.NoError(t, err)
	assert.Len(t, runs, 1)

	assert.NoError(t, store.Delete(ctx, "run-1"))
	assert.ErrorIs(t, store.Delete(ctx, "run-1"), dao.ErrNotFound)
}
