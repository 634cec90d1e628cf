// Package wizard drives ordered, linear step sequences such as the checkout
// tunnel and the contract-signing breadcrumb.
package wizard

import (
	"errors"
	"fmt"
	"sync"
)

var (
	ErrUnknownStart    = errors.New("manifest start is not a declared step")
	ErrDanglingStep    = errors.New("manifest step points to an undeclared step")
	ErrCyclicManifest  = errors.New("manifest chain revisits a step")
	ErrUnreachableStep = errors.New("manifest declares a step outside the chain")
)

// Step describes one node of a manifest.
type Step[K comparable] struct {
	// Next is the following step, or nil for the final one.
	Next *K
	// OnExit runs exactly once when the wizard leaves this step into the
	// terminal state.
	OnExit func()
}

// Manifest is a static description of a linear step sequence.
type Manifest[K comparable] struct {
	Start K
	Steps map[K]Step[K]
}

// Validate asserts that following Next from Start terminates, visiting every
// declared step exactly once with no cycles or dangling keys.
func (m Manifest[K]) Validate() error {
	if _, ok := m.Steps[m.Start]; !ok {
		return fmt.Errorf("%w: %v", ErrUnknownStart, m.Start)
	}

	visited := make(map[K]bool, len(m.Steps))
	current := m.Start
	for {
		if visited[current] {
			return fmt.Errorf("%w: %v", ErrCyclicManifest, current)
		}
		visited[current] = true

		step, ok := m.Steps[current]
		if !ok {
			return fmt.Errorf("%w: %v", ErrDanglingStep, current)
		}
		if step.Next == nil {
			break
		}
		current = *step.Next
	}

	if len(visited) != len(m.Steps) {
		return ErrUnreachableStep
	}
	return nil
}

// Manager sequences a manifest. It is strictly sequential per instance;
// independent instances do not share state.
type Manager[K comparable] struct {
	manifest Manifest[K]

	mu      sync.Mutex
	current *K
}

// NewManager validates the manifest and positions the wizard at its start.
func NewManager[K comparable](manifest Manifest[K]) (*Manager[K], error) {
	if err := manifest.Validate(); err != nil {
		return nil, err
	}
	start := manifest.Start
	return &Manager[K]{manifest: manifest, current: &start}, nil
}

// Step returns the current step; ok is false once the wizard is terminal.
func (w *Manager[K]) Step() (K, bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current == nil {
		var zero K
		return zero, false
	}
	return *w.current, true
}

// Next advances to the following step. Leaving the final step invokes its
// OnExit hook once; the terminal state is absorbing, so further calls are
// silent no-ops.
func (w *Manager[K]) Next() {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.current == nil {
		return
	}
	step := w.manifest.Steps[*w.current]
	if step.Next == nil {
		w.current = nil
		if step.OnExit != nil {
			step.OnExit()
		}
		return
	}
	next := *step.Next
	w.current = &next
}

// Reset returns the wizard to its start step; idempotent.
func (w *Manager[K]) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	start := w.manifest.Start
	w.current = &start
}
