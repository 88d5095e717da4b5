package dao

// Parameter is a named filter applied by List implementations, e.g. selecting
// runs by goal substring or provider.
type Parameter struct {
	Name  string
	Value interface{}
}

// NewParameter creates a list filter. A single value is stored as a scalar,
// multiple values as a slice.
func NewParameter(name string, values ...string) *Parameter {
	if len(values) == 1 {
		return &Parameter{Name: name, Value: values[0]}
	}
	return &Parameter{Name: name, Value: values}
}
