package credstore

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/docker/docker-credential-helpers/client"
	"github.com/docker/docker-credential-helpers/credentials"

	"github.com/wgdashboard/wgdash/pkg/db"
)

// NewHelper returns the credential helper program named by program (either
// "pass" or "docker-credential-pass"), or the database backed helper when
// program is empty.
func NewHelper(program string, dao db.SecretDAO) credentials.Helper {
	if program == "" {
		return NewDBHelper(dao)
	}
	return NewShellHelper(program)
}

// NewShellHelper talks to an external docker-credential-* program.
func NewShellHelper(program string) credentials.Helper {
	if !strings.HasPrefix(program, "docker-credential-") {
		program = "docker-credential-" + program
	}
	return shellHelper{
		program: client.NewShellProgramFunc(program),
	}
}

// shellHelper wraps a credential helper program.
type shellHelper struct {
	program client.ProgramFunc
}

func (h shellHelper) Add(creds *credentials.Credentials) error {
	return client.Store(h.program, creds)
}

func (h shellHelper) Delete(serverURL string) error {
	return client.Erase(h.program, serverURL)
}

func (h shellHelper) Get(serverURL string) (string, string, error) {
	creds, err := client.Get(h.program, serverURL)
	if err != nil {
		return "", "", err
	}
	return creds.Username, creds.Secret, nil
}

func (h shellHelper) List() (map[string]string, error) {
	return client.List(h.program)
}

var _ credentials.Helper = shellHelper{}

// NewDBHelper keeps secrets in the wgdash database.
func NewDBHelper(dao db.SecretDAO) credentials.Helper {
	return dbHelper{dao: dao}
}

type dbHelper struct {
	dao db.SecretDAO
}

func (h dbHelper) Add(creds *credentials.Credentials) error {
	return h.dao.UpsertSecret(context.Background(), db.Secret{
		ServerURL: creds.ServerURL,
		Username:  creds.Username,
		Secret:    creds.Secret,
	})
}

func (h dbHelper) Delete(serverURL string) error {
	return h.dao.DeleteSecret(context.Background(), serverURL)
}

func (h dbHelper) Get(serverURL string) (string, string, error) {
	secret, err := h.dao.GetSecret(context.Background(), serverURL)
	if errors.Is(err, sql.ErrNoRows) {
		return "", "", credentials.NewErrCredentialsNotFound()
	}
	if err != nil {
		return "", "", err
	}
	return secret.Username, secret.Secret, nil
}

func (h dbHelper) List() (map[string]string, error) {
	secrets, err := h.dao.ListSecrets(context.Background())
	if err != nil {
		return nil, err
	}
	result := make(map[string]string, len(secrets))
	for _, s := range secrets {
		result[s.ServerURL] = s.Username
	}
	return result, nil
}

var _ credentials.Helper = dbHelper{}
