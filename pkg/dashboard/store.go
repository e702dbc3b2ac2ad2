package dashboard

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"net/url"
	"sync"

	"github.com/fatih/color"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/log"
)

const redirectKey = "redirect"

// API is the part of the request helpers the stores use.
type API interface {
	Get(ctx context.Context, path string, params url.Values, out any) error
	Post(ctx context.Context, path string, body, out any) error
}

// StoreDAO is the persistence the dashboard store needs.
type StoreDAO interface {
	db.CrossServerDAO
	db.StateDAO
	db.MessageDAO
}

// Message types understood by NewMessage.
const (
	MessageWarning = "warning"
	MessageDanger  = "danger"
	MessageSuccess = "success"
	MessageInfo    = "info"
)

var messageColors = map[string]*color.Color{
	MessageWarning: color.New(color.FgYellow),
	MessageDanger:  color.New(color.FgRed),
	MessageSuccess: color.New(color.FgGreen),
	MessageInfo:    color.New(color.FgCyan),
}

// DashboardConfiguration is the server side configuration, by section.
type DashboardConfiguration map[string]map[string]any

// Store is the dashboard configuration store: the active cross server, the
// pending redirect, notifications and the cached server configuration.
type Store struct {
	dao  StoreDAO
	keys *credstore.Store
	out  io.Writer
	api  API

	mu            sync.Mutex
	showNavBar    bool
	loading       bool
	title         string
	configuration DashboardConfiguration
}

var (
	_ fetch.Selector = (*Store)(nil)
	_ fetch.Notifier = (*Store)(nil)
)

// NewStore creates a store. Notifications are printed to out.
func NewStore(dao StoreDAO, keys *credstore.Store, out io.Writer) *Store {
	if out == nil {
		out = io.Discard
	}
	return &Store{dao: dao, keys: keys, out: out}
}

// SetAPI attaches the request helpers. The helpers themselves consult the
// store, so they are wired after construction.
func (s *Store) SetAPI(api API) {
	s.api = api
}

// ActiveCrossServer returns the active selection with its API key, or nil.
func (s *Store) ActiveCrossServer(ctx context.Context) (*fetch.Selection, error) {
	server, err := s.dao.GetActiveCrossServer(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	apiKey, err := s.keys.APIKey(server.ID)
	if err != nil {
		return nil, err
	}
	return &fetch.Selection{Host: server.Host, APIKey: apiKey}, nil
}

// NewMessage records a notification and prints it.
func (s *Store) NewMessage(ctx context.Context, title, content, messageType string) {
	err := s.dao.CreateMessage(ctx, db.Message{Title: title, Content: content, Type: messageType})
	if err != nil {
		log.Debugf("- storing message: %v", err)
	}

	c, ok := messageColors[messageType]
	if !ok {
		c = messageColors[MessageInfo]
	}
	_, _ = c.Fprintf(s.out, "%s: %s\n", title, content)
}

// Messages returns the latest notifications, newest first.
func (s *Store) Messages(ctx context.Context, limit int) ([]db.Message, error) {
	return s.dao.ListMessages(ctx, limit)
}

// Redirect returns the path remembered before a sign-in redirect, empty
// when there is none.
func (s *Store) Redirect(ctx context.Context) (string, error) {
	value, err := s.dao.GetState(ctx, redirectKey)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil
		}
		return "", fmt.Errorf("reading redirect: %w", err)
	}
	return value, nil
}

func (s *Store) SetRedirect(ctx context.Context, path string) error {
	if err := s.dao.SetState(ctx, redirectKey, path); err != nil {
		return fmt.Errorf("storing redirect: %w", err)
	}
	return nil
}

func (s *Store) ClearRedirect(ctx context.Context) error {
	if err := s.dao.DeleteState(ctx, redirectKey); err != nil {
		return fmt.Errorf("clearing redirect: %w", err)
	}
	return nil
}

func (s *Store) ShowNavBar() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.showNavBar
}

func (s *Store) SetShowNavBar(show bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.showNavBar = show
}

// Loading is true while a navigation is running its guards.
func (s *Store) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

func (s *Store) setLoading(loading bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.loading = loading
}

// Title is the document title of the last navigation.
func (s *Store) Title() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.title
}

func (s *Store) setTitle(title string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.title = title
}

// Configuration returns the last fetched dashboard configuration.
func (s *Store) Configuration() DashboardConfiguration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.configuration
}

// GetConfiguration fetches the dashboard configuration. The cache is only
// replaced when the server reports success.
func (s *Store) GetConfiguration(ctx context.Context) (DashboardConfiguration, error) {
	var resp fetch.Response
	if err := s.api.Get(ctx, "/api/getDashboardConfiguration", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return s.Configuration(), nil
	}
	var cfg DashboardConfiguration
	if err := resp.DecodeData(&cfg); err != nil {
		return nil, err
	}

	s.mu.Lock()
	s.configuration = cfg
	s.mu.Unlock()
	return cfg, nil
}

func (s *Store) clearConfiguration() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configuration = nil
}
