// Package dashboard wires the WGDashboard client together: the route table,
// the authentication guard, the stores and the request helpers.
package dashboard

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/router"
	"github.com/wgdashboard/wgdash/pkg/session"
	"github.com/wgdashboard/wgdash/pkg/telemetry"
)

type Options struct {
	// Origin is the dashboard the client talks to when no cross server is
	// active, including the base path it is served under.
	Origin   string
	DAO      db.DAO
	Keys     *credstore.Store
	Out      io.Writer
	Timeout  time.Duration
	Recorder *telemetry.Recorder
	// Transport overrides the HTTP transport.
	Transport http.RoundTripper
}

type App struct {
	Router         *router.Router
	Client         *fetch.Client
	Store          *Store
	Configurations *Configurations
	Auth           *Auth
	Session        *session.Jar
}

func New(ctx context.Context, opts Options) (*App, error) {
	if opts.DAO == nil {
		return nil, errors.New("dashboard: a database is required")
	}
	if opts.Keys == nil {
		opts.Keys = credstore.New(credstore.NewDBHelper(opts.DAO))
	}

	r, err := router.New(Routes()...)
	if err != nil {
		return nil, err
	}
	jar, err := session.Load(ctx, opts.DAO, opts.Origin)
	if err != nil {
		return nil, err
	}

	store := NewStore(opts.DAO, opts.Keys, opts.Out)
	client, err := fetch.New(opts.Origin,
		fetch.WithHTTPClient(&http.Client{Jar: jar, Transport: opts.Transport}),
		fetch.WithSelector(store),
		fetch.WithNotifier(store),
		fetch.WithNavigator(r),
		fetch.WithRecorder(opts.Recorder),
		fetch.WithTimeout(opts.Timeout),
	)
	if err != nil {
		return nil, err
	}
	store.SetAPI(client)

	configurations := NewConfigurations(client)
	NewGuard(store, configurations, client).Install(r)

	return &App{
		Router:         r,
		Client:         client,
		Store:          store,
		Configurations: configurations,
		Session:        jar,
		Auth: &Auth{
			api:            client,
			store:          store,
			configurations: configurations,
			navigator:      r,
			session:        jar,
		},
	}, nil
}

// Open navigates to path through the guard.
func (a *App) Open(ctx context.Context, path string) (*router.Location, error) {
	return a.Router.Push(ctx, path)
}

// Close persists the session cookies.
func (a *App) Close(ctx context.Context) error {
	return a.Session.Save(ctx)
}
