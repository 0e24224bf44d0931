// Package httpapi is the HTTP transport of the WriterLab server.
package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/writerlab/internal/logging"
	"github.com/dmitrijs2005/writerlab/internal/server/models"
	"github.com/dmitrijs2005/writerlab/internal/server/ratelimit"
	"github.com/dmitrijs2005/writerlab/internal/server/services"
	"github.com/gin-gonic/gin"
)

type Accounts interface {
	CreateUser(ctx context.Context, email, password, name string) (*models.User, error)
	VerifyLogin(ctx context.Context, email, password string) (*models.User, error)
}

type Books interface {
	CreateBook(ctx context.Context, authorID, title string) (*models.Book, error)
	ListBooks(ctx context.Context, authorID string) ([]models.BookSummary, error)
	GetBook(ctx context.Context, authorID, bookID string) (*models.Book, error)
	CreateOutlineItem(ctx context.Context, authorID, bookID, title string, level, position int) (*models.Outline, error)
	CreatePreviewUpload(ctx context.Context, authorID, bookID string) (*models.PreviewUpload, error)
}

type Handler struct {
	accounts Accounts
	books    Books
	sessions *services.SessionManager
	limiter  ratelimit.LoginLimiter
	log      logging.Logger
}

func NewHandler(accounts Accounts, books Books, sessions *services.SessionManager, limiter ratelimit.LoginLimiter, log logging.Logger) *Handler {
	if limiter == nil {
		limiter = ratelimit.Nop{}
	}
	return &Handler{
		accounts: accounts,
		books:    books,
		sessions: sessions,
		limiter:  limiter,
		log:      log.With("module", "http"),
	}
}

// Router builds the gin engine with every route registered.
func (h *Handler) Router() *gin.Engine {
	useFormFieldNames()

	r := gin.New()
	r.Use(gin.Recovery(), RequestLogger(h.log))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/signup", h.anonymousPage)
	r.GET("/login", h.anonymousPage)
	r.POST("/signup", h.signup)
	r.POST("/login", h.login)
	r.POST("/logout", h.logout)
	r.GET("/me", h.me)

	r.GET("/dashboard", ValidateUserSession(h.sessions), h.dashboard)

	books := r.Group("/books", RequireUserID(h.sessions))
	books.POST("", h.createBook)
	books.GET("/:id", h.getBook)
	books.POST("/:id/outline", h.createOutlineItem)
	books.POST("/:id/preview", h.createPreviewUpload)

	return r
}
