package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wgdashboard/wgdash/pkg/config"
	"github.com/wgdashboard/wgdash/pkg/contextkeys"
	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/dashboard"
	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/log"
	"github.com/wgdashboard/wgdash/pkg/telemetry"
	"github.com/wgdashboard/wgdash/pkg/validate"
)

// Session is the state shared by the commands of one invocation, or by every
// line of a shell session. It is opened lazily.
type Session struct {
	cfg  *config.Config
	dao  db.DAO
	keys *credstore.Store
	app  *dashboard.App
}

// WithSession returns a context carrying a fresh session.
func WithSession(ctx context.Context) (context.Context, *Session) {
	s := &Session{}
	return context.WithValue(ctx, contextkeys.SessionKey, s), s
}

func sessionFrom(cmd *cobra.Command) (*Session, error) {
	s, ok := cmd.Context().Value(contextkeys.SessionKey).(*Session)
	if !ok || s == nil {
		return nil, errors.New("no session in context")
	}
	return s, nil
}

// configure loads the configuration once, then applies flag overrides.
func (s *Session) configure(opts *globalOptions) error {
	if s.cfg == nil {
		cfg, err := config.Load(opts.configPath)
		if err != nil {
			return err
		}
		if err := cfg.Finalize(); err != nil {
			return err
		}
		s.cfg = cfg
	}

	if opts.origin != "" {
		s.cfg.Origin = opts.origin
	}
	if opts.dbFile != "" {
		s.cfg.Database = opts.dbFile
	}
	if opts.logLevel != "" {
		s.cfg.LogLevel = opts.logLevel
	}
	if err := validate.Struct(s.cfg); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return log.SetLevel(s.cfg.LogLevel)
}

func (s *Session) Config() *config.Config {
	return s.cfg
}

func (s *Session) DAO() (db.DAO, error) {
	if s.dao != nil {
		return s.dao, nil
	}
	var opts []db.Option
	if s.cfg != nil && s.cfg.Database != "" {
		opts = append(opts, db.WithDatabaseFile(s.cfg.Database))
	}
	dao, err := db.New(opts...)
	if err != nil {
		return nil, err
	}
	s.dao = dao
	return dao, nil
}

func (s *Session) Keys() (*credstore.Store, error) {
	if s.keys != nil {
		return s.keys, nil
	}
	dao, err := s.DAO()
	if err != nil {
		return nil, err
	}
	helper := ""
	if s.cfg != nil {
		helper = s.cfg.CredentialHelper
	}
	s.keys = credstore.New(credstore.NewHelper(helper, dao))
	return s.keys, nil
}

// App returns the dashboard client, creating it on first use.
func (s *Session) App(cmd *cobra.Command) (*dashboard.App, error) {
	if s.app != nil {
		return s.app, nil
	}
	dao, err := s.DAO()
	if err != nil {
		return nil, err
	}
	keys, err := s.Keys()
	if err != nil {
		return nil, err
	}
	app, err := dashboard.New(cmd.Context(), dashboard.Options{
		Origin:   s.cfg.Origin,
		DAO:      dao,
		Keys:     keys,
		Out:      cmd.ErrOrStderr(),
		Timeout:  s.cfg.TimeoutDuration(),
		Recorder: telemetry.NewRecorder(nil, nil),
	})
	if err != nil {
		return nil, err
	}
	s.app = app
	return app, nil
}

// Close persists the session cookies and closes the database.
func (s *Session) Close(ctx context.Context) error {
	var errs []error
	if s.app != nil {
		errs = append(errs, s.app.Close(ctx))
		s.app = nil
	}
	if s.dao != nil {
		errs = append(errs, s.dao.Close())
		s.dao = nil
	}
	s.keys = nil
	return errors.Join(errs...)
}
