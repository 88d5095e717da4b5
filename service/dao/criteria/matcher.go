package criteria

import (
	"github.com/viant/conclave/service/dao"
)

// FilterByProvider reports whether a run using the given provider matches the
// supplied list parameters. No parameters match everything.
func FilterByProvider(provider string, parameters []*dao.Parameter) bool {
	switch len(parameters) {
	case 0:
		return true
	case 1:
		if parameters[0].Name == "Provider" {
			switch actual := parameters[0].Value.(type) {
			case string:
				return provider == actual
			case []string:
				for _, p := range actual {
					if provider == p {
						return true
					}
				}
				return false
			}
		}
	}
	return true
}
