package db

import "context"

// SecretDAO backs the database credential store used when no credential
// helper program is configured.
type SecretDAO interface {
	GetSecret(ctx context.Context, serverURL string) (*Secret, error)
	ListSecrets(ctx context.Context) ([]Secret, error)
	UpsertSecret(ctx context.Context, secret Secret) error
	DeleteSecret(ctx context.Context, serverURL string) error
}

type Secret struct {
	ServerURL string `db:"server_url"`
	Username  string `db:"username"`
	Secret    string `db:"secret"`
}

func (d *dao) GetSecret(ctx context.Context, serverURL string) (*Secret, error) {
	const query = `SELECT server_url, username, secret FROM secret WHERE server_url = $1`

	var secret Secret
	if err := d.db.GetContext(ctx, &secret, query, serverURL); err != nil {
		return nil, err
	}
	return &secret, nil
}

func (d *dao) ListSecrets(ctx context.Context) ([]Secret, error) {
	const query = `SELECT server_url, username, secret FROM secret ORDER BY server_url`

	var secrets []Secret
	if err := d.db.SelectContext(ctx, &secrets, query); err != nil {
		return nil, err
	}
	return secrets, nil
}

func (d *dao) UpsertSecret(ctx context.Context, secret Secret) error {
	const query = `INSERT INTO secret (server_url, username, secret) VALUES (:server_url, :username, :secret)
	ON CONFLICT (server_url) DO UPDATE SET username = excluded.username, secret = excluded.secret`

	_, err := d.db.NamedExecContext(ctx, query, secret)
	return err
}

func (d *dao) DeleteSecret(ctx context.Context, serverURL string) error {
	_, err := d.db.ExecContext(ctx, `DELETE FROM secret WHERE server_url = $1`, serverURL)
	return err
}
