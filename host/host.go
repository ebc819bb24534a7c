/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package host

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"sync"
	"time"

	zygo "github.com/glycerine/zygomys/zygo"

	"github.com/suparena/topobind"
	"github.com/suparena/topobind/errors"
	"github.com/suparena/topobind/kernel"
	"github.com/suparena/topobind/kernel/arena"
)

// EvalTimeout is the default limit for a single evaluation.
const EvalTimeout = 5 * time.Second

// EvalError is a parse or runtime error in script code.
type EvalError struct {
	Line    int
	Message string
}

func (e EvalError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("line %d: %s", e.Line, e.Message)
	}
	return e.Message
}

// Host runs scripts against one session. Entities created by scripts live
// in the arena the session was built on.
type Host struct {
	mu      sync.Mutex
	session *topobind.Session
	arena   *arena.Kernel
	timeout time.Duration
	eval    func(ctx context.Context, source string) (any, []EvalError, error)
}

// Option configures a Host.
type Option func(*Host)

// WithTimeout overrides EvalTimeout.
func WithTimeout(d time.Duration) Option {
	return func(h *Host) {
		h.timeout = d
	}
}

// New creates a host. The session must run on k.
func New(s *topobind.Session, k *arena.Kernel, opts ...Option) (*Host, error) {
	if s == nil || k == nil {
		return nil, errors.NewValidationError("host", "session and kernel are required")
	}
	if s.Kernel() != kernel.Kernel(k) {
		return nil, errors.NewValidationError("kernel", "session runs on a different kernel")
	}
	h := &Host{session: s, arena: k, timeout: EvalTimeout}
	h.eval = h.evaluate
	for _, opt := range opts {
		opt(h)
	}
	return h, nil
}

type evalResult struct {
	value  any
	errors []EvalError
	err    error
}

// Evaluate runs source and converts the value of its last expression to Go:
// topology.Topology, map[string]any, int64, float64, string, bool, []any or
// nil.
//
// Errors in the script are returned as EvalErrors with a nil error. A
// panic, a timeout or a cancelled ctx is returned as error.
func (h *Host) Evaluate(ctx context.Context, source string) (any, []EvalError, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	ch := make(chan evalResult, 1)
	go func() {
		defer func() {
			if r := recover(); r != nil {
				ch <- evalResult{err: fmt.Errorf("panic during evaluation: %v", r)}
			}
		}()
		v, evalErrs, err := h.eval(ctx, source)
		ch <- evalResult{value: v, errors: evalErrs, err: err}
	}()

	timer := time.NewTimer(h.timeout)
	defer timer.Stop()

	select {
	case res := <-ch:
		return res.value, res.errors, res.err
	case <-timer.C:
		return nil, nil, fmt.Errorf("evaluation timed out after %s", h.timeout)
	case <-ctx.Done():
		return nil, nil, ctx.Err()
	}
}

func (h *Host) evaluate(ctx context.Context, source string) (any, []EvalError, error) {
	if strings.TrimSpace(source) == "" {
		return nil, nil, nil
	}

	env := zygo.NewZlispSandbox()
	defer env.Stop()
	b := &bindings{ctx: ctx, session: h.session, arena: h.arena}
	b.register(env)

	if err := env.LoadString(source); err != nil {
		return nil, parseZygomysError(err), nil
	}
	out, err := env.Run()
	if err != nil {
		return nil, parseZygomysError(err), nil
	}
	v, err := b.toGo(out)
	if err != nil {
		return nil, []EvalError{{Message: err.Error()}}, nil
	}
	tracer().Debugf("script evaluated to %T", v)
	return v, nil, nil
}

var (
	linePattern      = regexp.MustCompile(`(?i)(?:error )?on line (\d+):\s*(.*)`)
	linePatternShort = regexp.MustCompile(`(?i)^line (\d+):\s*(.*)`)
)

func parseZygomysError(err error) []EvalError {
	msg := err.Error()
	for _, p := range []*regexp.Regexp{linePattern, linePatternShort} {
		if m := p.FindStringSubmatch(msg); m != nil {
			line, _ := strconv.Atoi(m[1])
			return []EvalError{{Line: line, Message: strings.TrimSpace(m[2])}}
		}
	}
	return []EvalError{{Message: strings.TrimSpace(msg)}}
}
