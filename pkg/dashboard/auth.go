package dashboard

import (
	"context"
	"errors"
	"fmt"

	"github.com/wgdashboard/wgdash/pkg/fetch"
	"github.com/wgdashboard/wgdash/pkg/router"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

// Credentials is the body of /api/authenticate.
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
	TOTP     string `json:"totp"`
}

// SessionStore is where the session cookies live.
type SessionStore interface {
	Save(ctx context.Context) error
	Clear(ctx context.Context) error
}

type Auth struct {
	api            API
	store          *Store
	configurations *Configurations
	navigator      fetch.Navigator
	session        SessionStore
}

// SignIn authenticates and then navigates to the path remembered before the
// sign-in redirect, or to the index. The server's welcome message becomes a
// success notification.
func (a *Auth) SignIn(ctx context.Context, username, password, totp string) (*router.Location, error) {
	creds := Credentials{Username: username, Password: password, TOTP: totp}
	var resp fetch.Response
	if err := a.api.Post(ctx, "/api/authenticate", creds, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCredentials, resp.Message)
	}
	if a.session != nil {
		if err := a.session.Save(ctx); err != nil {
			return nil, err
		}
	}

	target, err := a.store.Redirect(ctx)
	if err != nil {
		return nil, err
	}
	if target == "" {
		target = IndexPath
	}
	if err := a.store.ClearRedirect(ctx); err != nil {
		return nil, err
	}

	if resp.Message != "" {
		a.store.NewMessage(ctx, fetch.NotificationTitle, resp.Message, MessageSuccess)
	}
	return a.navigator.Push(ctx, target)
}

// SignOut ends the server session, forgets the cookies and cached state and
// navigates to the sign-in page.
func (a *Auth) SignOut(ctx context.Context) (*router.Location, error) {
	var resp fetch.Response
	if err := a.api.Get(ctx, "/api/signout", nil, &resp); err != nil {
		return nil, err
	}
	if a.session != nil {
		if err := a.session.Clear(ctx); err != nil {
			return nil, err
		}
	}
	a.store.clearConfiguration()
	a.configurations.Reset()

	return a.navigator.Push(ctx, SignInPath)
}

// RequiresAuthentication reports whether the server has authentication
// enabled.
func (a *Auth) RequiresAuthentication(ctx context.Context) (bool, error) {
	var resp fetch.Response
	if err := a.api.Get(ctx, "/api/requireAuthentication", nil, &resp); err != nil {
		return false, err
	}
	var required bool
	if err := resp.DecodeData(&required); err != nil {
		return false, err
	}
	return required, nil
}
