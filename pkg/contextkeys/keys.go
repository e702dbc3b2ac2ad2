package contextkeys

// contextKey is a typed key for context values to avoid conflicts
type contextKey string

// SessionKey is the context key under which the CLI keeps the state shared
// by every command of one invocation or shell session.
const SessionKey contextKey = "wgdash-session"
