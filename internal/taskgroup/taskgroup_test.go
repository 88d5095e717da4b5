package taskgroup

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestGroup_WaitsForAllBranches(t *testing.T) {
	group := New(context.Background())
	var done int32
	for i := 0; i < 5; i++ {
		group.Go(func(ctx context.Context) error {
			time.Sleep(time.Millisecond)
			atomic.AddInt32(&done, 1)
			return nil
		})
	}
	err := group.Wait()
	assert.NoError(t, err)
	assert.Equal(t, int32(5), atomic.LoadInt32(&done))
}

func TestGroup_FirstErrorWins(t *testing.T) {
	first := errors.New("first")
	second := errors.New("second")

	group := New(context.Background())
	group.Go(func(ctx context.Context) error {
		return first
	})
	group.Go(func(ctx context.Context) error {
		time.Sleep(10 * time.Millisecond)
		return second
	})
	err := group.Wait()
	assert.ErrorIs(t, err, first)
}

func TestGroup_ResultsLandInOwnSlots(t *testing.T) {
	results := make([]int, 4)
	group := New(context.Background())
	for i := 0; i < len(results); i++ {
		group.Go(func(ctx context.Context) error {
			results[i] = i * i
			return nil
		})
	}
	assert.NoError(t, group.Wait())
	assert.Equal(t, []int{0, 1, 4, 9}, results)
}

func TestGroup_RecoversPanic(t *testing.T) {
	group := New(context.Background())
	group.Go(func(ctx context.Context) error {
		panic("boom")
	})
	err := group.Wait()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
}
