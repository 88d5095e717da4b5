package taskgroup

import (
	"context"
	"fmt"
	"sync"
)

// Group runs a set of functions concurrently and waits for all of them to
// finish. The first non-nil error is retained and returned by Wait – later
// errors are dropped. Branches that degrade (substitute a fallback result and
// return nil) therefore never mask each other, while a genuine failure still
// surfaces after the whole group has joined.
type Group struct {
	ctx context.Context
	wg  sync.WaitGroup

	mux sync.Mutex
	err error
}

// New creates a group bound to the supplied context. The context is passed to
// every branch unchanged – the group never cancels it, in-flight work always
// runs to completion.
func New(ctx context.Context) *Group {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Group{ctx: ctx}
}

// Go launches fn on its own goroutine. A branch panic is converted into an
// error so that a single misbehaving branch cannot take the process down.
func (g *Group) Go(fn func(ctx context.Context) error) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		defer func() {
			if r := recover(); r != nil {
				g.setErr(fmt.Errorf("task panicked: %v", r))
			}
		}()
		if err := fn(g.ctx); err != nil {
			g.setErr(err)
		}
	}()
}

// Wait blocks until every branch launched with Go has returned and reports
// the first error observed, if any.
func (g *Group) Wait() error {
	g.wg.Wait()
	g.mux.Lock()
	defer g.mux.Unlock()
	return g.err
}

func (g *Group) setErr(err error) {
	g.mux.Lock()
	defer g.mux.Unlock()
	if g.err == nil {
		g.err = err
	}
}
