package crossserver

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"time"

	"github.com/tailscale/hujson"

	"github.com/wgdashboard/wgdash/pkg/credstore"
	"github.com/wgdashboard/wgdash/pkg/db"
)

// BrowserConfiguration is the CrossServerConfiguration document the web
// client keeps in local storage.
type BrowserConfiguration struct {
	Enable     bool                     `json:"Enable"`
	ServerList map[string]BrowserServer `json:"ServerList"`
}

type BrowserServer struct {
	Host   string `json:"host"`
	APIKey string `json:"apiKey"`
	Active bool   `json:"active"`
}

// ParseBrowserConfiguration reads the document. Comments and trailing commas
// are accepted.
func ParseBrowserConfiguration(r io.Reader) (*BrowserConfiguration, error) {
	buf, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read cross server configuration: %w", err)
	}
	standard, err := hujson.Standardize(buf)
	if err != nil {
		return nil, fmt.Errorf("failed to parse cross server configuration: %w", err)
	}
	var cfg BrowserConfiguration
	if err := json.Unmarshal(standard, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse cross server configuration: %w", err)
	}
	return &cfg, nil
}

// Import adds the servers of a browser CrossServerConfiguration document.
// The entry id becomes the server id and name; ids already known are
// updated in place. When the document is enabled, its active entry becomes
// the active server.
func Import(ctx context.Context, w io.Writer, dao db.CrossServerDAO, keys *credstore.Store, r io.Reader) ([]Server, error) {
	cfg, err := ParseBrowserConfiguration(r)
	if err != nil {
		return nil, err
	}

	ids := make([]string, 0, len(cfg.ServerList))
	for id := range cfg.ServerList {
		ids = append(ids, id)
	}
	slices.Sort(ids)

	var imported []Server
	activeID := ""
	for _, id := range ids {
		entry := cfg.ServerList[id]
		server := Server{
			ID:        id,
			Name:      id,
			Host:      strings.TrimRight(strings.TrimSpace(entry.Host), "/"),
			CreatedAt: time.Now().UTC(),
		}
		if err := server.Validate(); err != nil {
			return imported, fmt.Errorf("invalid cross server %s: %w", id, err)
		}
		if entry.APIKey == "" {
			return imported, fmt.Errorf("invalid cross server %s: API key is required", id)
		}

		existing, err := dao.GetCrossServer(ctx, id)
		switch {
		case errors.Is(err, sql.ErrNoRows):
			if err := dao.CreateCrossServer(ctx, server.ToDb()); err != nil {
				return imported, fmt.Errorf("failed to create cross server %s: %w", id, err)
			}
		case err != nil:
			return imported, fmt.Errorf("failed to get cross server %s: %w", id, err)
		default:
			// Host changes are applied by replacing the row; the name and the
			// selection are kept.
			if existing.Host != server.Host {
				server.Name = existing.Name
				server.Active = existing.Active
				server.CreatedAt = existing.CreatedAt
				if err := dao.RemoveCrossServer(ctx, id); err != nil {
					return imported, fmt.Errorf("failed to update cross server %s: %w", id, err)
				}
				if err := dao.CreateCrossServer(ctx, server.ToDb()); err != nil {
					return imported, fmt.Errorf("failed to update cross server %s: %w", id, err)
				}
			} else {
				server = NewFromDb(existing)
			}
		}
		if err := keys.SaveAPIKey(id, entry.APIKey); err != nil {
			return imported, err
		}
		if cfg.Enable && entry.Active {
			activeID = id
		}
		imported = append(imported, server)
	}

	if activeID != "" {
		if err := dao.ActivateCrossServer(ctx, activeID); err != nil {
			return imported, fmt.Errorf("failed to activate cross server %s: %w", activeID, err)
		}
		for i := range imported {
			imported[i].Active = imported[i].ID == activeID
		}
	}

	fmt.Fprintf(w, "Imported %d cross server(s)\n", len(imported))
	return imported, nil
}
