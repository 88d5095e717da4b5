// Package provider abstracts the backend text-generation capability. The
// rest of the engine only sees the Client interface – a role framing, a
// prompt, a sampling temperature and an optional reasoning-effort hint in,
// generated text out. Concrete clients exist for the Anthropic and OpenAI
// HTTP APIs plus a scripted mock for tests.
package provider
