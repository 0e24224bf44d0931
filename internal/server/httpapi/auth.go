package httpapi

import (
	"net/http"
	"strings"

	"github.com/dmitrijs2005/writerlab/internal/common"
	"github.com/gin-gonic/gin"
)

type signupForm struct {
	Email    string `form:"email" json:"email" binding:"required,email"`
	Password string `form:"password" json:"password" binding:"required,min=8"`
	Name     string `form:"name" json:"name" binding:"required"`
}

type loginForm struct {
	Email      string `form:"email" json:"email" binding:"required,email"`
	Password   string `form:"password" json:"password" binding:"required"`
	RedirectTo string `form:"redirectTo" json:"redirectTo"`
}

const invalidLogin = "Invalid email or password"

// anonymousPage serves the signup and login pages: signed-in visitors are
// sent to their dashboard.
func (h *Handler) anonymousPage(c *gin.Context) {
	if _, ok := h.sessions.GetUserID(c.Request); ok {
		c.Redirect(http.StatusFound, common.DefaultAfterLoginPath)
		return
	}
	c.JSON(http.StatusOK, gin.H{})
}

func (h *Handler) signup(c *gin.Context) {
	var f signupForm
	if err := c.ShouldBind(&f); err != nil {
		bindingError(c, err)
		return
	}

	user, err := h.accounts.CreateUser(c.Request.Context(), f.Email, f.Password, f.Name)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}

	h.startSession(c, user.ID, common.DefaultAfterLoginPath)
}

func (h *Handler) login(c *gin.Context) {
	var f loginForm
	if err := c.ShouldBind(&f); err != nil {
		bindingError(c, err)
		return
	}
	ctx := c.Request.Context()

	allowed, err := h.limiter.Allow(ctx, f.Email)
	if err != nil {
		h.log.Warn(ctx, "login limiter unavailable", "error", err)
	}
	if !allowed {
		serviceError(c, h.log, common.ErrLoginRateLimited)
		return
	}

	user, err := h.accounts.VerifyLogin(ctx, f.Email, f.Password)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	if user == nil {
		if err := h.limiter.RecordFailure(ctx, f.Email); err != nil {
			h.log.Warn(ctx, "login limiter unavailable", "error", err)
		}
		formError(c, http.StatusBadRequest, invalidLogin)
		return
	}

	if err := h.limiter.Reset(ctx, f.Email); err != nil {
		h.log.Warn(ctx, "login limiter unavailable", "error", err)
	}

	h.startSession(c, user.ID, safeRedirect(f.RedirectTo))
}

func (h *Handler) logout(c *gin.Context) {
	writeDirective(c, h.sessions.Logout(c.Request))
}

func (h *Handler) me(c *gin.Context) {
	user, d := h.sessions.GetCurrentUser(c.Request.Context(), c.Request)
	if d != nil {
		writeDirective(c, d)
		return
	}
	if user == nil {
		serviceError(c, h.log, common.ErrorUnauthorized)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (h *Handler) startSession(c *gin.Context, userID, redirectTo string) {
	d, err := h.sessions.CreateSession(userID, redirectTo)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	writeDirective(c, d)
}

// safeRedirect only lets through paths on this site, so a crafted login link
// cannot bounce the user elsewhere.
func safeRedirect(to string) string {
	if to == "" || !strings.HasPrefix(to, "/") || strings.HasPrefix(to, "//") || strings.Contains(to, `\`) {
		return common.DefaultAfterLoginPath
	}
	return to
}
