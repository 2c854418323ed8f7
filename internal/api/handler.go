package api

import (
	"encoding/json"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/devrewind/github-rewind/internal/collector"
	"github.com/devrewind/github-rewind/internal/domain"
	apperrors "github.com/devrewind/github-rewind/internal/errors"
	"github.com/devrewind/github-rewind/internal/slides"
	"github.com/devrewind/github-rewind/internal/storage"
)

// GitHub's founding year bounds the earliest report
const minYear = 2008

// Login syntax: alphanumeric with single interior hyphens. Length is
// checked separately (max 39).
var usernamePattern = regexp.MustCompile(`^[a-zA-Z0-9](?:-?[a-zA-Z0-9])*$`)

// CollectorFactory builds a collector bound to one request's credential
type CollectorFactory func(token string) collector.Collector

// Handler handles API requests
type Handler struct {
	newCollector  CollectorFactory
	store         storage.Storage  // nil when history is disabled
	generator     slides.Generator // nil when no slide service is configured
	fallbackToken string
}

// NewHandler creates a new API handler
func NewHandler(factory CollectorFactory, store storage.Storage, generator slides.Generator, fallbackToken string) *Handler {
	return &Handler{
		newCollector:  factory,
		store:         store,
		generator:     generator,
		fallbackToken: fallbackToken,
	}
}

// GetWrapped returns the yearly snapshot for a user
// GET /api/v1/wrapped/:username/:year
func (h *Handler) GetWrapped(c *gin.Context) {
	username, year, ok := h.parseSubject(c)
	if !ok {
		return
	}

	coll := h.newCollector(h.credential(c))
	snapshot, err := coll.BuildSnapshot(c.Request.Context(), username, year)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": snapshot,
	})
}

// GetWrappedSlides returns the snapshot together with the generated slide
// deck, optionally saving the finished report to history (?save=true)
// GET /api/v1/wrapped/:username/:year/slides
func (h *Handler) GetWrappedSlides(c *gin.Context) {
	username, year, ok := h.parseSubject(c)
	if !ok {
		return
	}
	if h.generator == nil {
		respondError(c, apperrors.NewBadRequestError("slide generation is not configured"))
		return
	}

	coll := h.newCollector(h.credential(c))
	snapshot, err := coll.BuildSnapshot(c.Request.Context(), username, year)
	if err != nil {
		respondError(c, err)
		return
	}

	deck, err := h.generator.Generate(c.Request.Context(), snapshot)
	if err != nil {
		respondError(c, apperrors.NewUpstreamError("slide generation failed", err))
		return
	}

	var reportID string
	if h.store != nil && c.Query("save") == "true" {
		reportID = h.saveReport(c, username, year, snapshot, deck)
	}

	c.JSON(http.StatusOK, gin.H{
		"data": gin.H{
			"snapshot":  snapshot,
			"slides":    deck,
			"report_id": reportID,
		},
	})
}

// ListReports lists saved reports
// GET /api/v1/reports?username=&limit=
func (h *Handler) ListReports(c *gin.Context) {
	if h.store == nil {
		respondError(c, apperrors.NewBadRequestError("report history is not configured"))
		return
	}

	limit := parseIntQuery(c, "limit", 20)
	reports, err := h.store.ListReports(c.Request.Context(), c.Query("username"), limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": reports,
	})
}

// GetReport retrieves one saved report
// GET /api/v1/reports/:id
func (h *Handler) GetReport(c *gin.Context) {
	if h.store == nil {
		respondError(c, apperrors.NewBadRequestError("report history is not configured"))
		return
	}

	report, err := h.store.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}

// HealthCheck returns the health status of the API
// GET /health
func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status": "ok",
	})
}

func (h *Handler) parseSubject(c *gin.Context) (string, int, bool) {
	username := c.Param("username")
	if len(username) > 39 || !usernamePattern.MatchString(username) {
		respondError(c, apperrors.NewBadRequestError("invalid GitHub username"))
		return "", 0, false
	}

	year, err := strconv.Atoi(c.Param("year"))
	if err != nil || year < minYear || year > time.Now().Year() {
		respondError(c, apperrors.NewBadRequestError("year must be between 2008 and the current year"))
		return "", 0, false
	}
	return username, year, true
}

// credential extracts the caller's bearer token, falling back to the
// server's own token. Never stored; lives for this request only.
func (h *Handler) credential(c *gin.Context) string {
	auth := c.GetHeader("Authorization")
	for _, prefix := range []string{"Bearer ", "bearer ", "token "} {
		if strings.HasPrefix(auth, prefix) {
			return strings.TrimSpace(strings.TrimPrefix(auth, prefix))
		}
	}
	return h.fallbackToken
}

func (h *Handler) saveReport(c *gin.Context, username string, year int, snapshot *domain.YearlySnapshot, deck []slides.Slide) string {
	snapshotJSON, err := json.Marshal(snapshot)
	if err != nil {
		return ""
	}
	slidesJSON, err := json.Marshal(deck)
	if err != nil {
		return ""
	}

	report := &domain.Report{
		ID:        uuid.New().String(),
		Username:  username,
		Year:      year,
		Snapshot:  snapshotJSON,
		Slides:    slidesJSON,
		CreatedAt: time.Now().UTC(),
	}
	if err := h.store.SaveReport(c.Request.Context(), report); err != nil {
		// History is best effort; the response still carries the report
		return ""
	}
	return report.ID
}

// parseIntQuery parses an integer query parameter with a default value
func parseIntQuery(c *gin.Context, key string, defaultValue int) int {
	valueStr := c.Query(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil || value <= 0 {
		return defaultValue
	}
	return value
}

// respondError sends an error response
func respondError(c *gin.Context, err error) {
	if appErr, ok := err.(*apperrors.AppError); ok {
		status := http.StatusInternalServerError
		switch appErr.Code {
		case apperrors.ErrCodeUserNotFound, apperrors.ErrCodeNotFound:
			status = http.StatusNotFound
		case apperrors.ErrCodeUnauthenticated:
			status = http.StatusUnauthorized
		case apperrors.ErrCodeBadRequest:
			status = http.StatusBadRequest
		case apperrors.ErrCodeRateLimited:
			status = http.StatusTooManyRequests
		case apperrors.ErrCodeUpstream, apperrors.ErrCodeGraphQLFailure:
			status = http.StatusBadGateway
		}

		body := gin.H{
			"code":    appErr.Code,
			"message": appErr.Message,
		}
		if appErr.Code == apperrors.ErrCodeRateLimited && !appErr.ResetAt.IsZero() {
			body["reset_at"] = appErr.ResetAt.Format(time.RFC3339)
		}
		c.JSON(status, gin.H{"error": body})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{
		"error": gin.H{
			"code":    "INTERNAL_ERROR",
			"message": err.Error(),
		},
	})
}
