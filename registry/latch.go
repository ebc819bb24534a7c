/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

package registry

import (
	"sync"
	"sync/atomic"
)

// Latch runs a population function at most once. Later calls are cheap
// no-ops that return the error of the first run.
type Latch struct {
	once  sync.Once
	fired atomic.Bool
	err   error
}

// Do runs populate if the latch has not fired yet. It reports whether this
// call was the one that ran it.
func (l *Latch) Do(populate func() error) (bool, error) {
	first := false
	l.once.Do(func() {
		first = true
		l.err = populate()
		l.fired.Store(true)
	})
	return first, l.err
}

// Fired reports whether the population function has completed.
func (l *Latch) Fired() bool {
	return l.fired.Load()
}
