package fetch

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"readhub/internal/auth"
	"readhub/internal/reconcile"
	"readhub/internal/records"
	"readhub/pkg/models"
)

// Handler exposes the metadata fetchers over HTTP: book search for picking
// a candidate by hand, and enrich for taking the best match directly.
type Handler struct {
	Books   *BookSearchClient
	Records *records.Repo
}

func NewHandler(books *BookSearchClient, repo *records.Repo) *Handler {
	return &Handler{Books: books, Records: repo}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/search/books", h.searchBooks)
	rg.POST("/records/:id/enrich", h.enrich)
}

func (h *Handler) searchBooks(c *gin.Context) {
	title := strings.TrimSpace(c.Query("title"))
	if title == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "title required"})
		return
	}
	author := strings.TrimSpace(c.Query("author"))

	limit := 10
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil {
			limit = n
		}
	}

	hits, err := h.Books.Search(c.Request.Context(), title, author, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"candidates": hits})
}

// enrich fills unknown book fields from the best search hit. Existing
// values on the record always win.
func (h *Handler) enrich(c *gin.Context) {
	claims := auth.MustGetClaims(c)
	if claims == nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return
	}

	row, err := h.Records.GetByID(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "lookup failed"})
		return
	}
	if row == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "record not found"})
		return
	}

	rec := reconcile.FromStorage(*row)
	if rec.Kind != models.KindBook {
		c.JSON(http.StatusBadRequest, gin.H{"error": "enrich only applies to books"})
		return
	}

	hits, err := h.Books.Search(c.Request.Context(), rec.Title, rec.Author, 5)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": "search failed"})
		return
	}
	if len(hits) == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "no match found"})
		return
	}

	rec = ApplyBookMatch(rec, hits[0])
	rec.UpdatedAt = time.Now().UTC()

	if err := h.Records.Update(c.Request.Context(), reconcile.ToStorage(rec)); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "save failed"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"record": rec, "match": hits[0]})
}
