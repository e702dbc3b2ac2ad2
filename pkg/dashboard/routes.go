package dashboard

import "github.com/wgdashboard/wgdash/pkg/router"

const (
	SignInPath = "/signin"
	IndexPath  = "/"

	// ConfigurationListRoute is the route name for which the guard skips
	// loading the WireGuard configurations.
	ConfigurationListRoute = "Configuration List"
)

// Routes is the dashboard route table.
func Routes() []router.Route {
	return []router.Route{
		{
			Name: "Index",
			Path: "/",
			Meta: router.Meta{RequiresAuth: true},
			Children: []router.Route{
				{Name: "Dashboard", Path: "", Meta: router.Meta{Title: "Dashboard"}},
				{Name: "Settings", Path: "/settings", Meta: router.Meta{Title: "Settings"}},
				{Name: "Ping", Path: "/ping"},
				{Name: "Traceroute", Path: "/traceroute"},
				{Name: "New Configuration", Path: "/new_configuration", Meta: router.Meta{Title: "New Configuration"}},
				{Name: "Restore Configuration", Path: "/restore_configuration", Meta: router.Meta{Title: "Restore Configuration"}},
				{Name: "System Status", Path: "/system_status", Meta: router.Meta{Title: "System Status"}},
				{Name: "Firewall Filter", Path: "/firewall/filter", Meta: router.Meta{Title: "Firewall Filter"}},
				{Name: "Firewall NAT", Path: "/firewall/nat", Meta: router.Meta{Title: "Firewall NAT"}},
				{Name: "Organizations", Path: "/organizations", Meta: router.Meta{Title: "Organization Management"}},
				{Name: "Organization Subnets", Path: "/organizations/subnets", Meta: router.Meta{Title: "Organization Subnet Management"}},
				{Name: "Organization Assignments", Path: "/organizations/assignments", Meta: router.Meta{Title: "Organization User Assignments"}},
				{Name: "Enhanced RBAC", Path: "/enhanced-rbac", Meta: router.Meta{Title: "Enhanced RBAC Management"}},
				{Name: "RBAC Policies", Path: "/rbac/policies", Meta: router.Meta{Title: "RBAC Policy Management"}},
				{Name: "Routing Management", Path: "/routing", Meta: router.Meta{Title: "Routing Management"}},
				{Name: "Logging Management", Path: "/logging", Meta: router.Meta{Title: "Logging Management"}},
				{Name: "User Management", Path: "/user_management", Meta: router.Meta{Title: "User Management"}},
				{Name: "WireGuard Configurations", Path: "/wireguard_configurations", Meta: router.Meta{Title: "WireGuard Configurations"}},
				{
					Name: "Configuration",
					Path: "/configuration/:id",
					Meta: router.Meta{Title: "Configuration"},
					Children: []router.Route{
						{Name: "Peers List", Path: "peers"},
					},
				},
			},
		},
		{Path: SignInPath, Meta: router.Meta{Title: "Sign In", HideTopNav: true}},
		{Path: "/welcome", Meta: router.Meta{RequiresAuth: true, Title: "Welcome to WGDashboard", HideTopNav: true}},
		{Path: "/2FASetup", Meta: router.Meta{RequiresAuth: true, Title: "Multi-Factor Authentication Setup", HideTopNav: true}},
		{Path: "/share", Meta: router.Meta{Title: "Share", HideTopNav: true}},
	}
}
