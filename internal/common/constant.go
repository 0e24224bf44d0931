package common

// SessionCookieName is the name of the cookie carrying the session token.
const SessionCookieName = "WriterLab_session"

// DefaultLoginPath is where anonymous callers are sent when a route needs a user.
const DefaultLoginPath = "/login"

// DefaultAfterLoginPath is the landing page for freshly authenticated users.
const DefaultAfterLoginPath = "/dashboard"

// LandingPath is where logged out users end up.
const LandingPath = "/"
