package tooling

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/viant/conclave/model"
	"github.com/viant/conclave/policy"
	"github.com/viant/gosh"
	"github.com/viant/gosh/runner"
	"github.com/viant/gosh/runner/local"
	rssh "github.com/viant/gosh/runner/ssh"
	"github.com/viant/scy/cred/secret"
	"golang.org/x/crypto/ssh"
)

// Check is one named command of the exec suite. The candidate artifact is
// serialised to a JSON file whose path is exposed to the command as the
// CONCLAVE_ARTIFACT environment variable; exit code zero passes the check.
type Check struct {
	Name    string `json:"name" yaml:"name"`
	Command string `json:"command" yaml:"command"`
}

// ExecConfig customises the exec suite.
type ExecConfig struct {
	Checks []Check `json:"checks" yaml:"checks"`

	// Host runs checks remotely over ssh when set (host[:port]); empty runs
	// locally
	Host string `json:"host,omitempty" yaml:"host,omitempty"`

	// Credentials names the scy secret resource for the ssh connection
	Credentials string `json:"credentials,omitempty" yaml:"credentials,omitempty"`

	// TimeoutMs bounds each command; zero means one minute
	TimeoutMs int `json:"timeoutMs,omitempty" yaml:"timeoutMs,omitempty"`
}

// Exec runs configured commands against candidate artifacts. Execution is
// gated by the run policy – a blocked command yields a deterministic failed
// result instead of running.
type Exec struct {
	config ExecConfig

	mux     sync.Mutex
	service *gosh.Service
}

// NewExec creates an exec suite.
func NewExec(config ExecConfig) *Exec {
	return &Exec{config: config}
}

// Name implements Suite.
func (e *Exec) Name() string { return "exec" }

// Evaluate implements Suite.
func (e *Exec) Evaluate(ctx context.Context, subtask *model.Subtask, artifact *model.Artifact) ([]model.TestResult, error) {
	if len(e.config.Checks) == 0 {
		return nil, nil
	}
	artifactPath, err := e.writeArtifact(subtask, artifact)
	if err != nil {
		return nil, fmt.Errorf("failed to stage artifact: %w", err)
	}
	defer os.Remove(artifactPath)

	runPolicy := policy.FromContext(ctx)
	timeout := time.Duration(e.config.TimeoutMs) * time.Millisecond
	if timeout == 0 {
		timeout = time.Minute
	}

	var results []model.TestResult
	for _, check := range e.config.Checks {
		if !runPolicy.ShouldRun(ctx, check.Command) {
			results = append(results, model.TestResult{
				Name:   check.Name,
				Passed: false,
				Detail: "blocked by policy",
			})
			continue
		}
		session, err := e.session(ctx)
		if err != nil {
			return results, fmt.Errorf("failed to open exec session: %w", err)
		}
		output, status, err := session.Run(ctx, checkCommand(check, artifactPath), runner.WithTimeout(int(timeout.Milliseconds())))
		result := model.TestResult{Name: check.Name, Passed: err == nil && status == 0}
		if !result.Passed {
			detail := strings.TrimSpace(output)
			if err != nil {
				detail = err.Error()
			}
			result.Detail = fmt.Sprintf("exit %d: %s", status, detail)
		}
		results = append(results, result)
	}
	return results, nil
}

func (e *Exec) writeArtifact(subtask *model.Subtask, artifact *model.Artifact) (string, error) {
	payload := map[string]interface{}{"subtask": subtask, "artifact": artifact}
	data, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return "", err
	}
	path := filepath.Join(os.TempDir(), fmt.Sprintf("conclave-artifact-%d.json", time.Now().UnixNano()))
	if err = os.WriteFile(path, data, 0o600); err != nil {
		return "", err
	}
	return path, nil
}

// checkCommand binds the staged artifact to the check and wraps it in a
// subshell. The export re-binds CONCLAVE_ARTIFACT on every evaluation – the
// session outlives the temp file of a previous one. The subshell keeps a bare
// "exit N" from terminating the persistent shell while still surfacing N as
// the command status.
func checkCommand(check Check, artifactPath string) string {
	return fmt.Sprintf("export CONCLAVE_ARTIFACT='%s'; ( %s )", artifactPath, check.Command)
}

// session lazily creates and caches the gosh session for this suite.
func (e *Exec) session(ctx context.Context) (*gosh.Service, error) {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.service != nil {
		return e.service, nil
	}
	var service *gosh.Service
	var err error
	if e.config.Host == "" {
		service, err = gosh.New(ctx, local.New())
	} else {
		config, cfgErr := e.sshConfig(ctx)
		if cfgErr != nil {
			return nil, cfgErr
		}
		host := e.config.Host
		if !strings.Contains(host, ":") {
			host += ":22"
		}
		service, err = gosh.New(ctx, rssh.New(host, config))
	}
	if err != nil {
		return nil, err
	}
	e.service = service
	return service, nil
}

func (e *Exec) sshConfig(ctx context.Context) (*ssh.ClientConfig, error) {
	credentials := e.config.Credentials
	if credentials == "" {
		credentials = "localhost"
	}
	secrets := secret.New()
	generic, err := secrets.GetCredentials(ctx, credentials)
	if err != nil {
		return nil, err
	}
	return generic.SSH.Config(ctx)
}

// Close releases the cached session.
func (e *Exec) Close() error {
	e.mux.Lock()
	defer e.mux.Unlock()
	if e.service == nil {
		return nil
	}
	err := e.service.Close()
	e.service = nil
	return err
}
