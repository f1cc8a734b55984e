package handlers

import (
	"net/http"
	"time"

	"blogicum/internal/services"

	"github.com/gin-gonic/gin"
)

type ListingHandler struct {
	listing *services.PostListing
}

func NewListingHandler(listing *services.PostListing) *ListingHandler {
	return &ListingHandler{listing: listing}
}

// Index 首页：所有公开文章
func (h *ListingHandler) Index(c *gin.Context) {
	page, ok := pageNumber(c)
	if !ok {
		NotFound(c)
		return
	}

	result, err := h.listing.Index(c.Request.Context(), page, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/index.html", gin.H{
		"Page": result,
	})
}

func (h *ListingHandler) Category(c *gin.Context) {
	page, ok := pageNumber(c)
	if !ok {
		NotFound(c)
		return
	}

	category, result, err := h.listing.Category(c.Request.Context(), c.Param("slug"), page, time.Now())
	if err != nil {
		handleError(c, err)
		return
	}

	Render(c, http.StatusOK, "blog/category.html", gin.H{
		"Category": category,
		"Page":     result,
	})
}
