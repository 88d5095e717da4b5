// Package policy provides an optional gating layer attached to a run via
// context. It filters which source domains the retriever may cite and which
// commands the exec tooling suite may run. It is deliberately decoupled from
// the rest of the engine – runs that do not embed a Policy in their context
// keep the default "auto" behaviour.

package policy

import (
	"context"
	"strings"
)

// Execution modes recognised by the engine.
const (
	ModeAsk  = "ask"  // ask the approver before every tooling command
	ModeAuto = "auto" // execute automatically (default)
	ModeDeny = "deny" // block tooling command execution
)

// AskFunc is invoked when Mode==ask before a tooling command runs. Returning
// true approves the command, false rejects it. Implementations may mutate
// the policy (for example switching to ModeAuto after the first approval).
type AskFunc func(ctx context.Context, command string, p *Policy) bool

// Policy represents the gating settings for one run.
//
//   - Mode controls tooling command execution (ask / auto / deny).
//   - AllowDomains/BlockDomains filter retriever source records post-parse.
//   - AllowCommands/BlockCommands filter exec tooling commands.
//
// A nil *Policy means "allow everything" and is therefore the zero-cost
// default.
type Policy struct {
	Mode string // ask / auto / deny (default = auto)

	AllowDomains []string // whitelist (empty => all)
	BlockDomains []string // blacklist, takes priority

	AllowCommands []string // whitelist of command prefixes (empty => all)
	BlockCommands []string // blacklist of command prefixes, takes priority

	Ask AskFunc // used only when Mode==ask
}

// Config is the declarative, serialisable part of a Policy (AskFunc cannot
// be persisted).
type Config struct {
	Mode          string   `json:"mode,omitempty" yaml:"mode,omitempty"`
	AllowDomains  []string `json:"allowDomains,omitempty" yaml:"allowDomains,omitempty"`
	BlockDomains  []string `json:"blockDomains,omitempty" yaml:"blockDomains,omitempty"`
	AllowCommands []string `json:"allowCommands,omitempty" yaml:"allowCommands,omitempty"`
	BlockCommands []string `json:"blockCommands,omitempty" yaml:"blockCommands,omitempty"`
}

// ToConfig converts a runtime Policy into a persistable Config.
func ToConfig(p *Policy) *Config {
	if p == nil {
		return nil
	}
	return &Config{
		Mode:          p.Mode,
		AllowDomains:  append([]string(nil), p.AllowDomains...),
		BlockDomains:  append([]string(nil), p.BlockDomains...),
		AllowCommands: append([]string(nil), p.AllowCommands...),
		BlockCommands: append([]string(nil), p.BlockCommands...),
	}
}

// FromConfig converts a stored Config back to a runtime Policy (without
// AskFunc).
func FromConfig(c *Config) *Policy {
	if c == nil {
		return nil
	}
	return &Policy{
		Mode:          c.Mode,
		AllowDomains:  append([]string(nil), c.AllowDomains...),
		BlockDomains:  append([]string(nil), c.BlockDomains...),
		AllowCommands: append([]string(nil), c.AllowCommands...),
		BlockCommands: append([]string(nil), c.BlockCommands...),
	}
}

// IsDomainAllowed evaluates AllowDomains/BlockDomains against a source
// domain. A domain matches a list entry when it equals the entry or is a
// subdomain of it (case-insensitive). BlockDomains has priority.
func (p *Policy) IsDomainAllowed(domain string) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(domain)

	for _, blocked := range p.BlockDomains {
		if domainMatches(normalized, blocked) {
			return false
		}
	}
	if len(p.AllowDomains) == 0 {
		return true
	}
	for _, allowed := range p.AllowDomains {
		if domainMatches(normalized, allowed) {
			return true
		}
	}
	return false
}

func domainMatches(domain, entry string) bool {
	entry = strings.ToLower(entry)
	return domain == entry || strings.HasSuffix(domain, "."+entry)
}

// IsCommandAllowed evaluates AllowCommands/BlockCommands against a tooling
// command. List entries match as prefixes of the command line so that
// "go test" covers "go test ./...".
func (p *Policy) IsCommandAllowed(command string) bool {
	if p == nil {
		return true
	}
	normalized := strings.ToLower(strings.TrimSpace(command))

	for _, blocked := range p.BlockCommands {
		if strings.HasPrefix(normalized, strings.ToLower(blocked)) {
			return false
		}
	}
	if len(p.AllowCommands) == 0 {
		return true
	}
	for _, allowed := range p.AllowCommands {
		if strings.HasPrefix(normalized, strings.ToLower(allowed)) {
			return true
		}
	}
	return false
}

// ShouldRun decides whether a tooling command may execute under this policy,
// combining the mode with the command lists. In ask mode without an approver
// the command is denied.
func (p *Policy) ShouldRun(ctx context.Context, command string) bool {
	if p == nil {
		return true
	}
	if !p.IsCommandAllowed(command) {
		return false
	}
	switch p.Mode {
	case ModeDeny:
		return false
	case ModeAsk:
		if p.Ask == nil {
			return false
		}
		return p.Ask(ctx, command, p)
	}
	return true
}

// ---------------------------------------------------------------------------
// Context helpers
// ---------------------------------------------------------------------------

type ctxKeyT struct{}

var ctxKey ctxKeyT

// WithPolicy embeds the policy in ctx.
func WithPolicy(ctx context.Context, p *Policy) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, ctxKey, p)
}

// FromContext extracts the policy from ctx, or nil.
func FromContext(ctx context.Context) *Policy {
	if ctx == nil {
		return nil
	}
	if v, ok := ctx.Value(ctxKey).(*Policy); ok {
		return v
	}
	return nil
}
