package usecase

// Session is the read-only view of the auth collaborator. The workflow only
// asks whether the caller is signed in and never mutates auth state.
type Session interface {
	IsAuthenticated() bool
	// Token is the bearer token forwarded to the clinic backend, "" when anonymous.
	Token() string
	// UserKey identifies the signed-in user; rosters are cached under it.
	UserKey() string
}

type session struct {
	token         string
	userKey       string
	authenticated bool
}

// NewSession builds a Session from an already inspected token.
func NewSession(token, userKey string, authenticated bool) Session {
	return session{token: token, userKey: userKey, authenticated: authenticated}
}

// AnonymousSession is used when the request carries no usable token.
func AnonymousSession() Session {
	return session{}
}

func (s session) IsAuthenticated() bool { return s.authenticated }
func (s session) Token() string         { return s.token }
func (s session) UserKey() string       { return s.userKey }
