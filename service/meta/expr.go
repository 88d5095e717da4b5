package meta

import (
	"os"
	"regexp"
)

var envExpr = regexp.MustCompile(`\$\{env\.([A-Za-z0-9_]*)\}`)

// expandEnvExpr substitutes every ${env.KEY} occurrence with the value of
// the environment variable KEY, or the empty string when it is unset.
// Malformed expressions are left literal.
func expandEnvExpr(value string) string {
	return envExpr.ReplaceAllStringFunc(value, func(match string) string {
		key := match[len("${env.") : len(match)-1]
		return os.Getenv(key)
	})
}
