// Package session keeps the dashboard session cookies between invocations.
package session

import (
	"context"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"sync"
	"time"

	"github.com/wgdashboard/wgdash/pkg/db"
	"github.com/wgdashboard/wgdash/pkg/log"
)

// Jar is an http.CookieJar for a single dashboard origin whose cookies are
// stored in the database. Cookies for other hosts live in memory only.
type Jar struct {
	dao    db.CookieDAO
	origin *url.URL

	mu      sync.Mutex
	jar     *cookiejar.Jar
	cookies map[string]*http.Cookie
}

var _ http.CookieJar = (*Jar)(nil)

// Load restores the cookies persisted for origin.
func Load(ctx context.Context, dao db.CookieDAO, origin string) (*Jar, error) {
	u, err := url.Parse(origin)
	if err != nil {
		return nil, fmt.Errorf("invalid origin %q: %w", origin, err)
	}
	j := &Jar{dao: dao, origin: u}
	j.reset()

	stored, err := dao.ListCookies(ctx, j.key())
	if err != nil {
		return nil, fmt.Errorf("loading session cookies: %w", err)
	}
	var restored []*http.Cookie
	now := time.Now()
	for _, c := range stored {
		if c.Expires != nil && c.Expires.Before(now) {
			continue
		}
		cookie := &http.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		if c.Expires != nil {
			cookie.Expires = *c.Expires
		}
		restored = append(restored, cookie)
	}
	if len(restored) > 0 {
		j.SetCookies(u, restored)
	}
	log.Debugf("- restored %d session cookie(s) for %s", len(restored), j.key())
	return j, nil
}

func (j *Jar) reset() {
	// cookiejar.New never fails with nil options.
	jar, _ := cookiejar.New(nil)
	j.jar = jar
	j.cookies = map[string]*http.Cookie{}
}

func (j *Jar) key() string {
	return j.origin.Scheme + "://" + j.origin.Host
}

func (j *Jar) sameOrigin(u *url.URL) bool {
	return u.Scheme == j.origin.Scheme && u.Host == j.origin.Host
}

func (j *Jar) SetCookies(u *url.URL, cookies []*http.Cookie) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.jar.SetCookies(u, cookies)
	if !j.sameOrigin(u) {
		return
	}
	now := time.Now()
	for _, c := range cookies {
		if c.MaxAge < 0 || (!c.Expires.IsZero() && c.Expires.Before(now)) {
			delete(j.cookies, c.Name)
			continue
		}
		kept := *c
		if c.MaxAge > 0 {
			kept.Expires = now.Add(time.Duration(c.MaxAge) * time.Second)
		}
		if kept.Path == "" {
			kept.Path = "/"
		}
		j.cookies[c.Name] = &kept
	}
}

func (j *Jar) Cookies(u *url.URL) []*http.Cookie {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.jar.Cookies(u)
}

// Names returns the names of the cookies held for the origin.
func (j *Jar) Names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	names := make([]string, 0, len(j.cookies))
	for name := range j.cookies {
		names = append(names, name)
	}
	return names
}

// Save persists the origin's cookies, replacing what was stored.
func (j *Jar) Save(ctx context.Context) error {
	j.mu.Lock()
	rows := make([]db.Cookie, 0, len(j.cookies))
	for _, c := range j.cookies {
		row := db.Cookie{Name: c.Name, Value: c.Value, Path: c.Path}
		if !c.Expires.IsZero() {
			expires := c.Expires.UTC()
			row.Expires = &expires
		}
		rows = append(rows, row)
	}
	j.mu.Unlock()

	if err := j.dao.ReplaceCookies(ctx, j.key(), rows); err != nil {
		return fmt.Errorf("saving session cookies: %w", err)
	}
	return nil
}

// Clear forgets every cookie, in memory and in the database.
func (j *Jar) Clear(ctx context.Context) error {
	j.mu.Lock()
	j.reset()
	j.mu.Unlock()

	if err := j.dao.DeleteCookies(ctx, j.key()); err != nil {
		return fmt.Errorf("clearing session cookies: %w", err)
	}
	return nil
}
