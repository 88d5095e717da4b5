package ledger

import (
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/viant/conclave/model"
)

func TestLedger_AppendPreservesOrder(t *testing.T) {
	aLedger := New()
	for i := 0; i < 5; i++ {
		aLedger.Append(Entry{StepID: StepID("s1", i), Role: RoleSolver, Output: fmt.Sprintf("attempt %d", i)})
	}
	entries := aLedger.Entries()
	assert.Equal(t, 5, aLedger.Len())
	for i, entry := range entries {
		assert.Equal(t, fmt.Sprintf("s1:%d", i), entry.StepID)
		assert.False(t, entry.At.IsZero())
	}

	// the returned slice is a copy
	entries[0].Output = "mutated"
	assert.Equal(t, "attempt 0", aLedger.Entries()[0].Output)
}

func TestLedger_ConcurrentAppend(t *testing.T) {
	aLedger := New()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			aLedger.Append(Entry{StepID: StepID("s", i), Role: RoleJudge,
				TestResults: []model.TestResult{{Name: "schema", Passed: true}}})
		}()
	}
	wg.Wait()
	assert.Equal(t, 20, aLedger.Len())
}

func TestStepID(t *testing.T) {
	assert.Equal(t, "s2:1", StepID("s2", 1))
	assert.Equal(t, "plan:0", PlannerStepID)
}
