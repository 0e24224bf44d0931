package httpapi

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type createBookRequest struct {
	Title string `json:"title" form:"title" binding:"required,max=200"`
}

type createOutlineRequest struct {
	Title    string `json:"title" form:"title" binding:"required,max=200"`
	Level    int    `json:"level" form:"level" binding:"required,min=1"`
	Position int    `json:"position" form:"position" binding:"min=0"`
}

func (h *Handler) dashboard(c *gin.Context) {
	books, err := h.books.ListBooks(c.Request.Context(), UserID(c))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"books": books})
}

func (h *Handler) createBook(c *gin.Context) {
	var req createBookRequest
	if err := c.ShouldBind(&req); err != nil {
		bindingError(c, err)
		return
	}

	book, err := h.books.CreateBook(c.Request.Context(), UserID(c), req.Title)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, book)
}

func (h *Handler) getBook(c *gin.Context) {
	book, err := h.books.GetBook(c.Request.Context(), UserID(c), c.Param("id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusOK, book)
}

func (h *Handler) createOutlineItem(c *gin.Context) {
	var req createOutlineRequest
	if err := c.ShouldBind(&req); err != nil {
		bindingError(c, err)
		return
	}

	item, err := h.books.CreateOutlineItem(c.Request.Context(), UserID(c), c.Param("id"), req.Title, req.Level, req.Position)
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, item)
}

func (h *Handler) createPreviewUpload(c *gin.Context) {
	up, err := h.books.CreatePreviewUpload(c.Request.Context(), UserID(c), c.Param("id"))
	if err != nil {
		serviceError(c, h.log, err)
		return
	}
	c.JSON(http.StatusCreated, up)
}
