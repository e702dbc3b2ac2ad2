package db

import (
	"context"
	"errors"
	"strings"
	"time"

	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

type CrossServerDAO interface {
	GetCrossServer(ctx context.Context, id string) (*CrossServer, error)
	FindCrossServer(ctx context.Context, idOrName string) (*CrossServer, error)
	GetActiveCrossServer(ctx context.Context) (*CrossServer, error)
	ListCrossServers(ctx context.Context) ([]CrossServer, error)
	CreateCrossServer(ctx context.Context, server CrossServer) error
	ActivateCrossServer(ctx context.Context, id string) error
	DeactivateCrossServers(ctx context.Context) error
	RemoveCrossServer(ctx context.Context, id string) error
}

type CrossServer struct {
	ID        string    `db:"id"`
	Name      string    `db:"name"`
	Host      string    `db:"host"`
	Active    bool      `db:"active"`
	CreatedAt time.Time `db:"created_at"`
}

func (d *dao) GetCrossServer(ctx context.Context, id string) (*CrossServer, error) {
	const query = `SELECT id, name, host, active, created_at FROM cross_server WHERE id = $1`

	var server CrossServer
	err := d.db.GetContext(ctx, &server, query, id)
	if err != nil {
		return nil, err
	}
	return &server, nil
}

// FindCrossServer looks a server up by exact id first, then by name.
func (d *dao) FindCrossServer(ctx context.Context, idOrName string) (*CrossServer, error) {
	const query = `SELECT id, name, host, active, created_at FROM cross_server WHERE id = $1 OR name = $1 ORDER BY id = $1 DESC LIMIT 1`

	var server CrossServer
	err := d.db.GetContext(ctx, &server, query, idOrName)
	if err != nil {
		return nil, err
	}
	return &server, nil
}

func (d *dao) GetActiveCrossServer(ctx context.Context) (*CrossServer, error) {
	const query = `SELECT id, name, host, active, created_at FROM cross_server WHERE active = 1 LIMIT 1`

	var server CrossServer
	err := d.db.GetContext(ctx, &server, query)
	if err != nil {
		return nil, err
	}
	return &server, nil
}

func (d *dao) ListCrossServers(ctx context.Context) ([]CrossServer, error) {
	const query = `SELECT id, name, host, active, created_at FROM cross_server ORDER BY created_at, name`

	var servers []CrossServer
	err := d.db.SelectContext(ctx, &servers, query)
	if err != nil {
		return nil, err
	}
	return servers, nil
}

func (d *dao) CreateCrossServer(ctx context.Context, server CrossServer) error {
	const query = `INSERT INTO cross_server (id, name, host, active, created_at) VALUES (:id, :name, :host, :active, :created_at)`

	if server.CreatedAt.IsZero() {
		server.CreatedAt = time.Now().UTC()
	}
	_, err := d.db.NamedExecContext(ctx, query, server)
	return err
}

// ActivateCrossServer makes id the only active server.
func (d *dao) ActivateCrossServer(ctx context.Context, id string) error {
	tx, err := d.db.BeginTxx(ctx, nil)
	if err != nil {
		return err
	}
	defer txClose(tx, &err)

	_, err = tx.ExecContext(ctx, `UPDATE cross_server SET active = 0 WHERE active = 1`)
	if err != nil {
		return err
	}

	result, err := tx.ExecContext(ctx, `UPDATE cross_server SET active = 1 WHERE id = $1`, id)
	if err != nil {
		return err
	}
	n, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		err = ErrNotFound
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	return nil
}

func (d *dao) DeactivateCrossServers(ctx context.Context) error {
	_, err := d.db.ExecContext(ctx, `UPDATE cross_server SET active = 0 WHERE active = 1`)
	return err
}

func (d *dao) RemoveCrossServer(ctx context.Context, id string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM cross_server WHERE id = $1`, id)
	return err
}

var ErrNotFound = errors.New("not found")

func IsDuplicateNameError(err error) bool {
	var sqliteErr *sqlite.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE && strings.Contains(sqliteErr.Error(), "cross_server.name")
	}
	return false
}
