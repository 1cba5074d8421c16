package api

import (
	"net/http"
	"slices"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/haruq/dailybrief/app/digest"
)

func NewHandler(store *digest.Store, answerer AnswererInterface, sources []string,
	location *time.Location) *Handler {
	return &Handler{
		store:    store,
		answerer: answerer,
		sources:  sources,
		location: location,
	}
}

// GetDigest serves the rendered Markdown for one source. The date query
// parameter defaults to today in the configured timezone; an absent digest
// still answers 200 with the store's placeholder body.
func (h *Handler) GetDigest(c *gin.Context) {
	source := c.Param("source")
	if !slices.Contains(h.sources, source) {
		c.JSON(http.StatusNotFound, gin.H{"error": "Unknown source"})
		return
	}

	date := c.Query("date")
	if date == "" {
		date = time.Now().In(h.location).Format("2006-01-02")
	}

	body := h.store.Fetch(source, date)

	c.Header("X-Digest-Source", source)
	c.Header("X-Digest-Date", date)
	c.Header("Content-Type", "text/markdown; charset=utf-8")
	c.String(http.StatusOK, body)
}

// ListDigests returns the source keys and every date that has at least one
// digest, newest first, so a viewer can populate its pickers.
func (h *Handler) ListDigests(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"sources": h.sources,
		"dates":   h.store.Dates(),
	})
}

// PostChat answers a question about a digest. The caller either sends the
// digest Markdown inline or names a source and date to load it server-side.
func (h *Handler) PostChat(c *gin.Context) {
	var req ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}

	markdown := req.Markdown
	if markdown == "" {
		if req.Source == "" {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Either markdown or source must be provided"})
			return
		}
		if !slices.Contains(h.sources, req.Source) {
			c.JSON(http.StatusNotFound, gin.H{"error": "Unknown source"})
			return
		}
		date := req.Date
		if date == "" {
			date = time.Now().In(h.location).Format("2006-01-02")
		}
		markdown = h.store.Fetch(req.Source, date)
	}

	answer := h.answerer.Answer(c.Request.Context(), markdown, req.Message, req.History)

	c.JSON(http.StatusOK, gin.H{"response": answer})
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"sources":   len(h.sources),
		"dates":     len(h.store.Dates()),
	}

	c.JSON(http.StatusOK, health)
}
