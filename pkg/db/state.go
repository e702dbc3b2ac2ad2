package db

import "context"

// StateDAO is a small key/value table for client state that must survive
// between invocations, such as the pending sign-in redirect.
type StateDAO interface {
	GetState(ctx context.Context, key string) (string, error)
	SetState(ctx context.Context, key, value string) error
	DeleteState(ctx context.Context, key string) error
}

func (d *dao) GetState(ctx context.Context, key string) (string, error) {
	var value string
	err := d.db.GetContext(ctx, &value, `SELECT value FROM app_state WHERE key = $1`, key)
	if err != nil {
		return "", err
	}
	return value, nil
}

func (d *dao) SetState(ctx context.Context, key, value string) error {
	const query = `INSERT INTO app_state (key, value) VALUES ($1, $2)
	ON CONFLICT (key) DO UPDATE SET value = excluded.value`

	_, err := d.db.ExecContext(ctx, query, key, value)
	return err
}

func (d *dao) DeleteState(ctx context.Context, key string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM app_state WHERE key = $1`, key)
	return err
}
