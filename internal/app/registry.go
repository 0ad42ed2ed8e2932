package app

// SessionRegistry tracks live sessions so a reconnecting participant reattaches
// to the same timer instead of starting a fresh one.
type SessionRegistry interface {
	// GetOrCreate returns the session for id, invoking create (and reporting
	// created=true) when none exists yet.
	GetOrCreate(id string, create func() *Session) (session *Session, created bool)
	Get(id string) (*Session, bool)
	Delete(id string)
}
