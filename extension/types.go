package extension

import (
	"reflect"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/model/evidence"
	"github.com/viant/conclave/runtime/ledger"
	"github.com/viant/conclave/runtime/run"
	"github.com/viant/x"
)

// Types is the registry of Go types the engine serialises – run outputs,
// ledger entries and artifacts stored by pluggable run stores, plus any
// caller-registered extension types.
type Types struct {
	x.Registry
}

// NewTypes creates an empty type registry.
func NewTypes(options ...x.RegistryOption) *Types {
	return &Types{Registry: *x.NewRegistry(options...)}
}

// DefaultTypes returns a registry pre-populated with the engine's own data
// model.
func DefaultTypes() *Types {
	types := NewTypes()
	for _, value := range []interface{}{
		model.Plan{},
		model.Subtask{},
		model.Artifact{},
		model.Verdict{},
		model.TestResult{},
		evidence.Bundle{},
		evidence.SourceRecord{},
		ledger.Entry{},
		run.Output{},
	} {
		types.Register(x.NewType(reflect.TypeOf(value)))
	}
	return types
}
