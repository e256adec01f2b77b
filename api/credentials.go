package api

// Credentials identify an authenticated admin to the backend.
type Credentials struct {
	Token    string
	Username string
}

// Valid reports whether a bearer token is present.
func (c Credentials) Valid() bool { return c.Token != "" }

// CredentialStore holds the admin credentials for one browser session.
// Login stores them, every admin call loads them, logout clears them.
type CredentialStore interface {
	Load() (Credentials, error)
	Store(Credentials) error
	Clear() error
}
