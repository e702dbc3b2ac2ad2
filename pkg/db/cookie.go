package db

import (
	"context"
	"time"
)

type CookieDAO interface {
	ListCookies(ctx context.Context, origin string) ([]Cookie, error)
	ReplaceCookies(ctx context.Context, origin string, cookies []Cookie) error
	DeleteCookies(ctx context.Context, origin string) error
}

type Cookie struct {
	Origin  string     `db:"origin"`
	Name    string     `db:"name"`
	Value   string     `db:"value"`
	Path    string     `db:"path"`
	Expires *time.Time `db:"expires"`
}

func (d *dao) ListCookies(ctx context.Context, origin string) ([]Cookie, error) {
	const query = `SELECT origin, name, value, path, expires FROM session_cookie WHERE origin = $1 ORDER BY name`

	var cookies []Cookie
	if err := d.db.SelectContext(ctx, &cookies, query, origin); err != nil {
		return nil, err
	}
	return cookies, nil
}

// ReplaceCookies swaps the whole cookie set of origin in one transaction.
func (d *dao) ReplaceCookies(ctx context.Context, origin string, cookies []Cookie) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer txClose(tx, &err)

	_, err = tx.ExecContext(ctx, `DELETE FROM session_cookie WHERE origin = $1`, origin)
	if err != nil {
		return err
	}

	if len(cookies) > 0 {
		for i := range cookies {
			cookies[i].Origin = origin
		}
		const query = `INSERT INTO session_cookie (origin, name, value, path, expires) VALUES (:origin, :name, :value, :path, :expires)`
		_, err = tx.NamedExecContext(ctx, query, cookies)
		if err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (d *dao) DeleteCookies(ctx context.Context, origin string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM session_cookie WHERE origin = $1`, origin)
	return err
}
