package services

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/session"
)

// Directive is a redirect the transport must perform, together with the
// cookie to set on the way out.
type Directive struct {
	Status   int
	Location string
	Cookie   *http.Cookie
}

// Write sets the cookie and sends the redirect.
func (d *Directive) Write(w http.ResponseWriter, r *http.Request) {
	if d.Cookie != nil {
		http.SetCookie(w, d.Cookie)
	}
	http.Redirect(w, r, d.Location, d.Status)
}

// Result is either an authenticated user id or a redirect, never both.
type Result struct {
	UserID   string
	Redirect *Directive
}

func (r Result) Authenticated() bool {
	return r.Redirect == nil && r.UserID != ""
}

// UserLookup resolves a user id from a session to an account.
type UserLookup interface {
	GetUserByID(ctx context.Context, id string) (*models.User, error)
}

// SessionManager answers "who is making this request" from the session
// cookie alone, or with a store round trip where the caller needs the account
// to still exist. It keeps no state between requests.
type SessionManager struct {
	codec        *session.Codec
	users        UserLookup
	storeTimeout time.Duration
	log          logging.Logger
}

func NewSessionManager(codec *session.Codec, users UserLookup, storeTimeout time.Duration, log logging.Logger) *SessionManager {
	return &SessionManager{
		codec:        codec,
		users:        users,
		storeTimeout: storeTimeout,
		log:          log.With("module", "session"),
	}
}

// CreateSession issues a cookie for userID and redirects to redirectTo. The
// user's existence is not checked.
func (m *SessionManager) CreateSession(userID, redirectTo string) (*Directive, error) {
	if redirectTo == "" {
		redirectTo = common.DefaultAfterLoginPath
	}

	token, err := m.codec.Encode(session.NewPayload(userID))
	if err != nil {
		return nil, err
	}

	return &Directive{
		Status:   http.StatusFound,
		Location: redirectTo,
		Cookie:   m.codec.Cookie(token),
	}, nil
}

// GetSessionPayload decodes the request's session cookie. A missing or
// undecodable cookie both report false.
func (m *SessionManager) GetSessionPayload(r *http.Request) (session.Payload, bool) {
	ck, err := r.Cookie(m.codec.Options().Name)
	if err != nil || ck.Value == "" {
		return nil, false
	}

	p, err := m.codec.Decode(ck.Value)
	if err != nil {
		m.log.Debug(r.Context(), "session cookie rejected", "reason", err.Error())
		return nil, false
	}
	return p, true
}

// GetUserID returns the session's user id without consulting the store, so a
// deleted user keeps a valid id here until the cookie expires.
func (m *SessionManager) GetUserID(r *http.Request) (string, bool) {
	p, ok := m.GetSessionPayload(r)
	if !ok {
		return "", false
	}
	return p.UserID()
}

// RequireUserID returns the user id or a redirect to redirectTo (the login
// page when empty). The session cookie is left untouched.
func (m *SessionManager) RequireUserID(r *http.Request, redirectTo string) Result {
	if id, ok := m.GetUserID(r); ok {
		return Result{UserID: id}
	}
	if redirectTo == "" {
		redirectTo = common.DefaultLoginPath
	}
	return Result{Redirect: &Directive{Status: http.StatusFound, Location: redirectTo}}
}

// GetCurrentUser loads the session's account. Anonymous requests get
// (nil, nil). When the account cannot be confirmed, for whatever reason, the
// caller gets a logout directive.
func (m *SessionManager) GetCurrentUser(ctx context.Context, r *http.Request) (*models.User, *Directive) {
	id, ok := m.GetUserID(r)
	if !ok {
		return nil, nil
	}

	user, err := m.lookup(ctx, id)
	if err != nil {
		return nil, m.Logout(r)
	}
	return user, nil
}

// ValidateUserSession requires a session whose account still exists.
func (m *SessionManager) ValidateUserSession(ctx context.Context, r *http.Request) Result {
	id, ok := m.GetUserID(r)
	if !ok {
		m.log.Debug(ctx, "session rejected", "reason", "no session")
		return Result{Redirect: m.Logout(r)}
	}

	if _, err := m.lookup(ctx, id); err != nil {
		return Result{Redirect: m.Logout(r)}
	}
	return Result{UserID: id}
}

// Logout clears the cookie and sends the browser to the landing page.
func (m *SessionManager) Logout(r *http.Request) *Directive {
	return &Directive{
		Status:   http.StatusFound,
		Location: common.LandingPath,
		Cookie:   m.codec.ExpiredCookie(),
	}
}

func (m *SessionManager) lookup(ctx context.Context, id string) (*models.User, error) {
	ctx, cancel := context.WithTimeout(ctx, m.storeTimeout)
	defer cancel()

	user, err := m.users.GetUserByID(ctx, id)
	if err != nil {
		m.log.Warn(ctx, "session rejected", "reason", lookupFailure(err), "user_id", id)
		return nil, err
	}
	return user, nil
}

func lookupFailure(err error) string {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return "user not found"
	case errors.Is(err, context.DeadlineExceeded):
		return "store timeout"
	case errors.Is(err, context.Canceled):
		return "request canceled"
	default:
		return "store error"
	}
}
