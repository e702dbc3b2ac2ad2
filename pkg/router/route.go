package router

import (
	"net/url"
	"strings"
)

// Meta is the per-route metadata guards and hooks act on. A child route
// inherits the flags of its parents; its own non-empty title wins.
type Meta struct {
	Title        string `json:"title,omitempty" yaml:"title,omitempty"`
	RequiresAuth bool   `json:"requiresAuth,omitempty" yaml:"requiresAuth,omitempty"`
	HideTopNav   bool   `json:"hideTopNav,omitempty" yaml:"hideTopNav,omitempty"`
}

func (m Meta) merge(child Meta) Meta {
	merged := m
	if child.Title != "" {
		merged.Title = child.Title
	}
	merged.RequiresAuth = m.RequiresAuth || child.RequiresAuth
	merged.HideTopNav = m.HideTopNav || child.HideTopNav
	return merged
}

// Route is one entry of the route table. Child paths are relative to the
// parent unless they start with "/"; an empty child path stands for the
// parent path itself. Segments starting with ":" are parameters.
type Route struct {
	Name     string
	Path     string
	Meta     Meta
	Children []Route
}

// Location is a resolved navigation target.
type Location struct {
	Path   string            `json:"path"`
	Name   string            `json:"name,omitempty"`
	Params map[string]string `json:"params,omitempty"`
	Query  url.Values        `json:"query,omitempty"`
	Meta   Meta              `json:"meta"`
	// Matched lists the route paths from the outermost parent to the matched route.
	Matched []string `json:"matched,omitempty"`
}

// FullPath is the path with its query string.
func (l *Location) FullPath() string {
	if l == nil {
		return ""
	}
	if len(l.Query) == 0 {
		return l.Path
	}
	return l.Path + "?" + l.Query.Encode()
}

// Entry is a flattened, navigable route table row.
type Entry struct {
	Name string `json:"name,omitempty" yaml:"name,omitempty"`
	Path string `json:"path" yaml:"path"`
	Meta Meta   `json:"meta" yaml:"meta"`
}

type record struct {
	Entry
	segments []string
	matched  []string
}

func (rec *record) match(segments []string) (map[string]string, bool) {
	if len(segments) != len(rec.segments) {
		return nil, false
	}
	params := map[string]string{}
	for i, pattern := range rec.segments {
		if name, ok := strings.CutPrefix(pattern, ":"); ok {
			if segments[i] == "" {
				return nil, false
			}
			value, err := url.PathUnescape(segments[i])
			if err != nil {
				return nil, false
			}
			params[name] = value
			continue
		}
		if !strings.EqualFold(pattern, segments[i]) {
			return nil, false
		}
	}
	return params, true
}

// flatten turns the nested table into records, children before their parent
// so that a parent with an empty child path resolves to the child.
func flatten(routes []Route, parentPath string, parentMeta Meta, parentMatched []string) []record {
	var records []record
	for _, r := range routes {
		full := joinPath(parentPath, r.Path)
		meta := parentMeta.merge(r.Meta)
		matched := append(append([]string{}, parentMatched...), full)

		records = append(records, flatten(r.Children, full, meta, matched)...)
		records = append(records, record{
			Entry:    Entry{Name: r.Name, Path: full, Meta: meta},
			segments: split(full),
			matched:  matched,
		})
	}
	return records
}

func joinPath(parent, child string) string {
	switch {
	case strings.HasPrefix(child, "/"):
		return normalize(child)
	case child == "":
		return normalize(parent)
	default:
		return normalize(strings.TrimRight(parent, "/") + "/" + child)
	}
}

// normalize collapses repeated slashes and drops a trailing slash.
func normalize(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	for strings.Contains(path, "//") {
		path = strings.ReplaceAll(path, "//", "/")
	}
	if len(path) > 1 {
		path = strings.TrimRight(path, "/")
	}
	return path
}

func split(path string) []string {
	trimmed := strings.Trim(path, "/")
	if trimmed == "" {
		return nil
	}
	return strings.Split(trimmed, "/")
}

// AppTitle is the document title when a route has none.
const AppTitle = "WGDashboard"

// Title is the document title shown for loc.
func Title(loc *Location) string {
	if loc == nil || loc.Meta.Title == "" {
		return AppTitle
	}
	if id := loc.Params["id"]; id != "" {
		return id + " | " + AppTitle
	}
	return loc.Meta.Title + " | " + AppTitle
}
