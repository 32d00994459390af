package http

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/shelfsafe/backend/internal/domain"
	"github.com/shelfsafe/backend/internal/usecase"
)

// Error tags returned in structured error payloads
const (
	errTagInvalidRequest    = "invalid_request"
	errTagSearchUnavailable = "search_unavailable"
)

// Handler holds dependencies for HTTP handlers
type Handler struct {
	screening  *usecase.ScreeningService
	summarizer domain.Summarizer // optional, may be nil
}

// NewHandler creates a new HTTP handler. summarizer may be nil, in which case
// responses carry a plain screening message.
func NewHandler(screening *usecase.ScreeningService, summarizer domain.Summarizer) *Handler {
	return &Handler{
		screening:  screening,
		summarizer: summarizer,
	}
}

// HealthCheck returns the health status of the API
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "shelfsafe-backend",
		"version": "1.0.0",
	})
}

// SearchProducts handles allergen-safe product search requests
func (h *Handler) SearchProducts(c *gin.Context) {
	var req domain.SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			OK:     false,
			Error:  errTagInvalidRequest,
			Detail: err.Error(),
		})
		return
	}

	req.Allergens = cleanStrings(req.Allergens)
	req.Categories = cleanStrings(req.Categories)
	if len(req.Allergens) == 0 || len(req.Categories) == 0 {
		c.JSON(http.StatusBadRequest, domain.ErrorResponse{
			OK:     false,
			Error:  errTagInvalidRequest,
			Detail: "allergens[] and categories[] are required",
		})
		return
	}

	ctx := c.Request.Context()

	results, allergens, err := h.screening.ScreenProducts(ctx, &req)
	if err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded) {
		if errors.Is(err, domain.ErrInvalidRequest) {
			c.JSON(http.StatusBadRequest, domain.ErrorResponse{
				OK:     false,
				Error:  errTagInvalidRequest,
				Detail: err.Error(),
			})
			return
		}
		c.JSON(http.StatusInternalServerError, domain.ErrorResponse{
			OK:     false,
			Error:  errTagSearchUnavailable,
			Detail: err.Error(),
		})
		return
	}
	// On cancellation, categories completed before the abort are preserved
	// and returned; the abandoned category is simply absent.

	if tag, detail, failed := allCategoriesFailed(results); failed {
		c.JSON(http.StatusBadGateway, domain.ErrorResponse{
			OK:     false,
			Error:  tag,
			Detail: detail,
		})
		return
	}

	c.JSON(http.StatusOK, domain.SearchResponse{
		OK:      true,
		Results: results,
		Message: h.buildMessage(ctx, &req, results, allergens),
	})
}

// buildMessage produces the response summary: model prose when a summarizer
// is configured and succeeds, otherwise the plain screening message. The
// summarizer never influences the screening outcome.
func (h *Handler) buildMessage(
	ctx context.Context,
	req *domain.SearchRequest,
	results []domain.CategoryResult,
	allergens *usecase.AllergenSet,
) string {
	if h.summarizer != nil {
		summary, err := h.summarizer.Summarize(ctx, req, results)
		if err == nil {
			return summary
		}
		log.Printf("[HTTP] Summarizer failed, using plain message: %v", err)
	}

	terms := "none"
	if allergens != nil && !allergens.Empty() {
		terms = strings.Join(allergens.All(), ", ")
	}
	return fmt.Sprintf("Screened against (%s).", terms)
}

// allCategoriesFailed reports whether every requested category surfaced a
// search failure, in which case the request as a whole gets an error payload
// instead of a result set of nothing but failures.
func allCategoriesFailed(results []domain.CategoryResult) (tag, detail string, failed bool) {
	if len(results) == 0 {
		return "", "", false
	}
	for _, result := range results {
		if result.Error == "" {
			return "", "", false
		}
	}
	return errTagSearchUnavailable, results[0].Error, true
}

// cleanStrings trims each entry and drops empties
func cleanStrings(values []string) []string {
	cleaned := make([]string, 0, len(values))
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			cleaned = append(cleaned, trimmed)
		}
	}
	return cleaned
}
