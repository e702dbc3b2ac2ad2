// Package router resolves paths against a declarative route table and runs
// navigation guards before each transition, in the manner of a single page
// application's client-side router.
package router

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"

	"github.com/wgdashboard/wgdash/pkg/log"
)

const maxRedirects = 10

var (
	ErrNotFound             = errors.New("route not found")
	ErrNavigationSuperseded = errors.New("navigation superseded by a newer navigation")
	ErrTooManyRedirects     = errors.New("too many redirects")
)

// Decision is what a guard tells the router to do with a transition.
type Decision struct {
	redirect string
}

// Next lets the transition continue.
func Next() Decision {
	return Decision{}
}

// RedirectTo abandons the transition and starts one to path instead.
func RedirectTo(path string) Decision {
	return Decision{redirect: path}
}

// Redirect returns the redirect target, empty when the decision is Next.
func (d Decision) Redirect() string {
	return d.redirect
}

// Guard runs before a transition. from is nil on the first navigation.
// Returning an error aborts the navigation.
type Guard func(ctx context.Context, to, from *Location) (Decision, error)

// AfterHook runs once a transition has been committed.
type AfterHook func(to, from *Location)

// Router holds the route table, the current location and the hooks. Guards
// run without the router lock held so they may call Push themselves; such a
// nested Push supersedes the navigation that invoked the guard.
type Router struct {
	records []record

	mu      sync.Mutex
	before  []Guard
	after   []AfterHook
	current *Location
	history []string
	seq     uint64
}

// New builds a router. Route names must be unique.
func New(routes ...Route) (*Router, error) {
	records := flatten(routes, "/", Meta{}, nil)
	seen := map[string]string{}
	for _, rec := range records {
		if rec.Name == "" {
			continue
		}
		if other, ok := seen[rec.Name]; ok {
			return nil, fmt.Errorf("duplicate route name %q (%s and %s)", rec.Name, other, rec.Path)
		}
		seen[rec.Name] = rec.Path
	}
	return &Router{records: records}, nil
}

// BeforeEach registers a guard. Guards run in registration order.
func (r *Router) BeforeEach(guard Guard) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.before = append(r.before, guard)
}

// AfterEach registers a hook run after every committed navigation.
func (r *Router) AfterEach(hook AfterHook) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.after = append(r.after, hook)
}

// Entries returns the flattened route table in declaration order.
func (r *Router) Entries() []Entry {
	entries := make([]Entry, 0, len(r.records))
	for _, rec := range r.records {
		entries = append(entries, rec.Entry)
	}
	return entries
}

// Resolve matches raw, a path with an optional query string, against the
// table. A leading "#" (hash history form) is ignored.
func (r *Router) Resolve(raw string) (*Location, error) {
	raw = strings.TrimPrefix(raw, "#")
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("invalid location %q: %w", raw, err)
	}
	path := normalize(u.EscapedPath())
	segments := split(path)

	for i := range r.records {
		rec := &r.records[i]
		params, ok := rec.match(segments)
		if !ok {
			continue
		}
		loc := &Location{
			Path:    path,
			Name:    rec.Name,
			Params:  params,
			Meta:    rec.Meta,
			Matched: append([]string{}, rec.matched...),
		}
		if q := u.Query(); len(q) > 0 {
			loc.Query = q
		}
		return loc, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
}

// Current returns the committed location, nil before the first navigation.
func (r *Router) Current() *Location {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// History returns the committed paths in order.
func (r *Router) History() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.history...)
}

// Push navigates to raw: resolve, run the guards (following redirects),
// commit, run the after hooks. It returns the committed location.
func (r *Router) Push(ctx context.Context, raw string) (*Location, error) {
	r.mu.Lock()
	r.seq++
	seq := r.seq
	r.mu.Unlock()

	target := raw
	for hops := 0; ; hops++ {
		if hops > maxRedirects {
			return nil, fmt.Errorf("%w: last target %s", ErrTooManyRedirects, target)
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		to, err := r.Resolve(target)
		if err != nil {
			return nil, err
		}
		from := r.Current()

		decision, err := r.runGuards(ctx, to, from)
		if err != nil {
			return nil, fmt.Errorf("navigation to %s: %w", to.Path, err)
		}
		if r.superseded(seq) {
			log.Debugf("- navigation to %s superseded", to.Path)
			return nil, ErrNavigationSuperseded
		}
		if decision.redirect != "" {
			log.Debugf("- redirect %s -> %s", to.Path, decision.redirect)
			target = decision.redirect
			continue
		}

		hooks := r.commit(to)
		for _, hook := range hooks {
			hook(to, from)
		}
		return to, nil
	}
}

func (r *Router) runGuards(ctx context.Context, to, from *Location) (Decision, error) {
	r.mu.Lock()
	guards := append([]Guard{}, r.before...)
	r.mu.Unlock()

	for _, guard := range guards {
		decision, err := guard(ctx, to, from)
		if err != nil {
			return Decision{}, err
		}
		if decision.redirect != "" {
			return decision, nil
		}
	}
	return Next(), nil
}

func (r *Router) superseded(seq uint64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.seq != seq
}

func (r *Router) commit(to *Location) []AfterHook {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = to
	r.history = append(r.history, to.FullPath())
	return append([]AfterHook{}, r.after...)
}
