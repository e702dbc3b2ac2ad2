package dashboard

import (
	"context"
	"fmt"

	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/log"
	"github.com/wgdashboard/wgdash/pkg/router"
)

// Guard gates routes that require authentication on the session check.
type Guard struct {
	store          *Store
	configurations *Configurations
	api            API
}

func NewGuard(store *Store, configurations *Configurations, api API) *Guard {
	return &Guard{store: store, configurations: configurations, api: api}
}

// Install registers the guard and its after hook on r.
func (g *Guard) Install(r *router.Router) {
	r.BeforeEach(g.Before)
	r.AfterEach(g.After)
}

// Before runs ahead of every transition.
func (g *Guard) Before(ctx context.Context, to, _ *router.Location) (router.Decision, error) {
	g.store.setTitle(router.Title(to))
	g.store.SetShowNavBar(false)
	g.store.setLoading(true)

	if !to.Meta.RequiresAuth {
		return router.Next(), nil
	}

	selection, err := g.store.ActiveCrossServer(ctx)
	if err != nil {
		return router.Decision{}, fmt.Errorf("reading cross server selection: %w", err)
	}
	if selection != nil {
		log.Debugf("- cross server %s active, skipping session check", selection.Host)
		if err := g.load(ctx, to); err != nil {
			return router.Decision{}, err
		}
		return router.Next(), nil
	}

	var resp fetch.Response
	if err := g.api.Get(ctx, "/api/validateAuthentication", nil, &resp); err != nil {
		return router.Decision{}, err
	}
	if !resp.Status {
		if err := g.store.SetRedirect(ctx, to.FullPath()); err != nil {
			return router.Decision{}, err
		}
		g.store.NewMessage(ctx, fetch.NotificationTitle, fetch.SessionEndedMessage, MessageWarning)
		return router.RedirectTo(SignInPath), nil
	}

	if err := g.load(ctx, to); err != nil {
		return router.Decision{}, err
	}
	if err := g.store.ClearRedirect(ctx); err != nil {
		return router.Decision{}, err
	}
	return router.Next(), nil
}

// After runs once a transition is committed.
func (g *Guard) After(to, _ *router.Location) {
	g.store.setLoading(false)
	g.store.SetShowNavBar(!to.Meta.HideTopNav)
}

func (g *Guard) load(ctx context.Context, to *router.Location) error {
	if _, err := g.store.GetConfiguration(ctx); err != nil {
		return err
	}
	if !g.configurations.Loaded() && to.Name != ConfigurationListRoute {
		if _, err := g.configurations.Fetch(ctx); err != nil {
			return err
		}
	}
	return nil
}
