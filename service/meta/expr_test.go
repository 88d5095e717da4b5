package meta

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExpandEnvExpr(t *testing.T) {
	for _, key := range []string{"FOO", "A", "B", "X", "Y", "NOTSET"} {
		os.Unsetenv(key)
	}
	os.Setenv("FOO", "bar")
	os.Setenv("A", "1")
	os.Setenv("B", "2")
	defer func() {
		for _, key := range []string{"FOO", "A", "B"} {
			os.Unsetenv(key)
		}
	}()

	testCases := []struct {
		description string
		input       string
		expected    string
	}{
		{description: "no expressions", input: "just a plain string", expected: "just a plain string"},
		{description: "single expression", input: "value is ${env.FOO}", expected: "value is bar"},
		{description: "repeated expressions", input: "${env.A}-${env.B}-${env.A}", expected: "1-2-1"},
		{description: "unset variable becomes empty", input: "unset=${env.NOTSET}-end", expected: "unset=-end"},
		{description: "missing closing brace stays literal", input: "start ${env.X and ${env.Y} end", expected: "start ${env.X and  end"},
		{description: "empty key", input: "oops ${env.} done", expected: "oops  done"},
	}
	for _, testCase := range testCases {
		assert.Equal(t, testCase.expected, expandEnvExpr(testCase.input), testCase.description)
	}
}
