package dashboard

import (
	"context"
	"sync"

	"github.com/wgdashboard/wgdash/pkg/fetch"
)

// WireGuardConfiguration is one entry of /api/getWireguardConfigurations.
type WireGuardConfiguration struct {
	Name           string    `json:"Name" yaml:"name"`
	Status         bool      `json:"Status" yaml:"status"`
	PublicKey      string    `json:"PublicKey" yaml:"publicKey"`
	Address        string    `json:"Address" yaml:"address"`
	Protocol       string    `json:"Protocol" yaml:"protocol"`
	ConnectedPeers int       `json:"ConnectedPeers" yaml:"connectedPeers"`
	TotalPeers     int       `json:"TotalPeers" yaml:"totalPeers"`
	DataUsage      DataUsage `json:"DataUsage" yaml:"dataUsage"`
}

type DataUsage struct {
	Total   float64 `json:"Total" yaml:"total"`
	Sent    float64 `json:"Sent" yaml:"sent"`
	Receive float64 `json:"Receive" yaml:"receive"`
}

// Configurations caches the WireGuard configuration list.
type Configurations struct {
	api API

	mu     sync.Mutex
	list   []WireGuardConfiguration
	loaded bool
}

func NewConfigurations(api API) *Configurations {
	return &Configurations{api: api}
}

// Loaded reports whether the list has been fetched since the last reset.
func (c *Configurations) Loaded() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.loaded
}

func (c *Configurations) List() []WireGuardConfiguration {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]WireGuardConfiguration{}, c.list...)
}

// Fetch reloads the list from the server. An unsuccessful answer keeps the
// cached list.
func (c *Configurations) Fetch(ctx context.Context) ([]WireGuardConfiguration, error) {
	var resp fetch.Response
	if err := c.api.Get(ctx, "/api/getWireguardConfigurations", nil, &resp); err != nil {
		return nil, err
	}
	if !resp.Status {
		return c.List(), nil
	}
	var list []WireGuardConfiguration
	if err := resp.DecodeData(&list); err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = list
	c.loaded = true
	return append([]WireGuardConfiguration{}, list...), nil
}

func (c *Configurations) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.list = nil
	c.loaded = false
}
