package httpapi

import (
	"net/http"

	"github.com/dmitrijs2005/writerlab/internal/server/services"
	"github.com/gin-gonic/gin"
)

const userIDKey = "writerlab.userID"

// RequireUserID lets the request through when its session cookie carries a
// user id; otherwise the client is redirected to the login page. The store
// is not consulted.
func RequireUserID(sm *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := sm.RequireUserID(c.Request, "")
		passOrRedirect(c, res)
	}
}

// ValidateUserSession also checks that the session's account still exists
// and logs the client out when it does not.
func ValidateUserSession(sm *services.SessionManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		res := sm.ValidateUserSession(c.Request.Context(), c.Request)
		passOrRedirect(c, res)
	}
}

func passOrRedirect(c *gin.Context, res services.Result) {
	if res.Authenticated() {
		c.Set(userIDKey, res.UserID)
		c.Next()
		return
	}
	if res.Redirect == nil {
		c.AbortWithStatus(http.StatusUnauthorized)
		return
	}
	writeDirective(c, res.Redirect)
}

func writeDirective(c *gin.Context, d *services.Directive) {
	d.Write(c.Writer, c.Request)
	c.Abort()
}

// UserID returns the id stored by one of the guards.
func UserID(c *gin.Context) string {
	return c.GetString(userIDKey)
}
