// Package store holds per-entity list state: filters, the current page,
// loading and error flags. Each screen or command owns its own List.
package store

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"crmadmin/internal/model"
	"crmadmin/internal/query"
)

// ErrSuperseded is returned by Reload when a newer reload started before
// this one finished. Its result was discarded.
var ErrSuperseded = errors.New("reload superseded by a newer request")

// ErrNotRefreshed is wrapped by Remove and Mutate when the change itself
// succeeded but the follow-up reload failed. The list state is stale.
var ErrNotRefreshed = errors.New("list not refreshed")

// Fetcher loads one page for the given query parameters.
type Fetcher[T any] func(ctx context.Context, q url.Values) (model.Page[T], error)

// Deleter removes one entity by id.
type Deleter func(ctx context.Context, id string) error

// State is a snapshot of a List.
type State[T any] struct {
	Items      []T
	Total      int
	Page       int
	Pages      int
	Loading    bool
	Err        error
	Generation uint64
}

// List is an explicit per-entity store. Filter changes do not fetch on their
// own; callers invoke Reload afterwards.
type List[T any] struct {
	fetch  Fetcher[T]
	remove Deleter

	mu     sync.Mutex
	filter query.Filter
	gen    uint64
	state  State[T]
}

// New creates a List with the given fetcher and initial filter.
func New[T any](fetch Fetcher[T], filter query.Filter) *List[T] {
	return &List[T]{fetch: fetch, filter: filter}
}

// WithDeleter sets the function used by Remove.
func (l *List[T]) WithDeleter(d Deleter) *List[T] {
	l.remove = d
	return l
}

// Filter returns a copy of the current filter.
func (l *List[T]) Filter() query.Filter {
	l.mu.Lock()
	defer l.mu.Unlock()
	f := l.filter
	if l.filter.Extra != nil {
		f.Extra = make(map[string]string, len(l.filter.Extra))
		for k, v := range l.filter.Extra {
			f.Extra[k] = v
		}
	}
	return f
}

// Update mutates the filter. Unless fn moves the page itself, the page
// goes back to 1.
func (l *List[T]) Update(fn func(*query.Filter)) {
	l.mu.Lock()
	defer l.mu.Unlock()
	before := l.filter.Page
	fn(&l.filter)
	if l.filter.Page == before && before > 1 {
		l.filter.Page = 1
	}
}

// SetPage moves to page n, clamped to 1..Pages once pages are known.
func (l *List[T]) SetPage(n int) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.filter.Page = l.clampPage(n)
}

// NextPage advances one page. It reports false when already on the last page.
func (l *List[T]) NextPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := max(l.filter.Page, 1)
	next := l.clampPage(cur + 1)
	if next == cur {
		return false
	}
	l.filter.Page = next
	return true
}

// PrevPage goes back one page. It reports false when already on page 1.
func (l *List[T]) PrevPage() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	cur := max(l.filter.Page, 1)
	if cur <= 1 {
		return false
	}
	l.filter.Page = cur - 1
	return true
}

func (l *List[T]) clampPage(n int) int {
	if n < 1 {
		n = 1
	}
	if l.state.Pages > 0 && n > l.state.Pages {
		n = l.state.Pages
	}
	return n
}

// State returns the current snapshot.
func (l *List[T]) State() State[T] {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.state
}

// Reload fetches the page for the current filter. Each call takes a new
// generation; a response that arrives after a newer Reload started is
// dropped and ErrSuperseded returned.
func (l *List[T]) Reload(ctx context.Context) (State[T], error) {
	l.mu.Lock()
	l.gen++
	gen := l.gen
	params := l.filter.Encode()
	l.state.Loading = true
	l.mu.Unlock()

	page, err := l.fetch(ctx, params)

	l.mu.Lock()
	defer l.mu.Unlock()
	if gen != l.gen {
		return l.state, ErrSuperseded
	}
	l.state.Loading = false
	l.state.Generation = gen
	if err != nil {
		l.state.Err = err
		return l.state, err
	}
	l.state = State[T]{
		Items:      page.Items,
		Total:      page.Total,
		Page:       page.Page,
		Pages:      page.Pages,
		Generation: gen,
	}
	return l.state, nil
}

// Remove deletes id through the configured Deleter and, on success,
// reloads the list once. A failed delete does not reload.
func (l *List[T]) Remove(ctx context.Context, id string) error {
	if l.remove == nil {
		return errors.New("list has no deleter")
	}
	if id == "" {
		return errors.New("id is required")
	}
	if err := l.remove(ctx, id); err != nil {
		return fmt.Errorf("delete %s: %w", id, err)
	}
	if _, err := l.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("%w after delete: %w", ErrNotRefreshed, err)
	}
	return nil
}

// Mutate runs fn and, when it succeeds, reloads the list once.
func (l *List[T]) Mutate(ctx context.Context, fn func(ctx context.Context) error) error {
	if err := fn(ctx); err != nil {
		return err
	}
	if _, err := l.Reload(ctx); err != nil && !errors.Is(err, ErrSuperseded) {
		return fmt.Errorf("%w after update: %w", ErrNotRefreshed, err)
	}
	return nil
}
