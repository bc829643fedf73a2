package loader

import (
	"sync"

	"golang.org/x/exp/slices"

	"github.com/spaghettifunk/preload/engine/resources"
)

// CompletionHandle is the one-shot result of a load run. The orchestrator
// mutates it; consumers subscribe or poll. Subscriptions registered after
// completion observe the already-resolved state immediately, so there is no
// missed-signal race. Progress may be published many times; the terminal
// result fires at most once.
type CompletionHandle struct {
	mu       sync.Mutex
	total    int64
	progress int64
	result   *resources.Pack
	err      error
	errs     []error
	done     chan struct{}

	progressFns []func(loaded, total int64)
	successFns  []func(*resources.Pack)
	errorFns    []func(error)
}

func newCompletionHandle() *CompletionHandle {
	return &CompletionHandle{done: make(chan struct{})}
}

// TotalBytes is the sum of the declared sizes of every entry selected for
// loading so far. Discarded fallback candidates never contribute.
func (h *CompletionHandle) TotalBytes() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.total
}

// ProgressBytes is the aggregate bytes loaded across all in-flight and
// finished fetches. Non-decreasing.
func (h *CompletionHandle) ProgressBytes() int64 {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.progress
}

// Done is closed once the run reaches a terminal state, successful or not.
func (h *CompletionHandle) Done() <-chan struct{} {
	return h.done
}

// Result returns the loaded pack after success, or the terminal error.
// Before the terminal state both return values are nil.
func (h *CompletionHandle) Result() (*resources.Pack, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.result, h.err
}

// Errs returns every failure event recorded so far.
func (h *CompletionHandle) Errs() []error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return append([]error(nil), h.errs...)
}

// OnProgress registers a progress subscriber and immediately delivers the
// current counters.
func (h *CompletionHandle) OnProgress(fn func(loaded, total int64)) {
	h.mu.Lock()
	h.progressFns = append(h.progressFns, fn)
	loaded, total := h.progress, h.total
	h.mu.Unlock()
	fn(loaded, total)
}

// OnSuccess registers a subscriber for the terminal pack. A subscriber
// added after success fires immediately.
func (h *CompletionHandle) OnSuccess(fn func(*resources.Pack)) {
	h.mu.Lock()
	if h.result != nil {
		result := h.result
		h.mu.Unlock()
		fn(result)
		return
	}
	h.successFns = append(h.successFns, fn)
	h.mu.Unlock()
}

// OnError registers an error subscriber, replaying errors recorded before
// the subscription.
func (h *CompletionHandle) OnError(fn func(error)) {
	h.mu.Lock()
	replay := append([]error(nil), h.errs...)
	h.errorFns = append(h.errorFns, fn)
	h.mu.Unlock()
	for _, err := range replay {
		fn(err)
	}
}

func (h *CompletionHandle) addTotal(n int64) {
	h.mu.Lock()
	h.total += n
	fns := slices.Clone(h.progressFns)
	loaded, total := h.progress, h.total
	h.mu.Unlock()
	for _, fn := range fns {
		fn(loaded, total)
	}
}

func (h *CompletionHandle) setProgress(n int64) {
	h.mu.Lock()
	h.progress = n
	fns := slices.Clone(h.progressFns)
	loaded, total := h.progress, h.total
	h.mu.Unlock()
	for _, fn := range fns {
		fn(loaded, total)
	}
}

func (h *CompletionHandle) succeed(p *resources.Pack) {
	h.mu.Lock()
	if h.result != nil || h.err != nil {
		h.mu.Unlock()
		return
	}
	h.result = p
	fns := h.successFns
	h.successFns = nil
	h.mu.Unlock()
	for _, fn := range fns {
		fn(p)
	}
	close(h.done)
}

func (h *CompletionHandle) fail(err error) {
	h.mu.Lock()
	if h.result != nil || h.err != nil {
		h.mu.Unlock()
		return
	}
	h.err = err
	h.mu.Unlock()
	close(h.done)
}

func (h *CompletionHandle) emitError(err error) {
	h.mu.Lock()
	h.errs = append(h.errs, err)
	fns := slices.Clone(h.errorFns)
	h.mu.Unlock()
	for _, fn := range fns {
		fn(err)
	}
}
