package http

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/linkforge/shortlink/internal/domain"
	"github.com/linkforge/shortlink/internal/service"
)

// Handler holds the HTTP handlers for the short link API
type Handler struct {
	registry service.Registry
	accounts service.Accounts
	baseURL  string
	logger   *zap.Logger
	metrics  *Metrics
}

// NewHandler creates a new HTTP handler
func NewHandler(registry service.Registry, accounts service.Accounts, baseURL string, logger *zap.Logger, metrics *Metrics) *Handler {
	return &Handler{
		registry: registry,
		accounts: accounts,
		baseURL:  baseURL,
		logger:   logger,
		metrics:  metrics,
	}
}

type messageResponse struct {
	Message string `json:"message"`
}

type listLinksResponse struct {
	Links      []domain.LinkResponse `json:"links"`
	TotalCount int                   `json:"total_count"`
	Pagination domain.Pagination     `json:"pagination"`
}

// Register handles POST /auth/register
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req domain.RegisterRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.accounts.Register(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, user)
}

// Login handles POST /auth/login
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	var req domain.LoginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	token, err := h.accounts.Login(r.Context(), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, token)
}

// CreateLink handles POST /urls
func (h *Handler) CreateLink(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.registry.CreateLink(r.Context(), OwnerID(r.Context()), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.linkResponse(link))
}

// ListLinks handles GET /urls
func (h *Handler) ListLinks(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	result, err := h.registry.ListLinks(r.Context(), OwnerID(r.Context()), page, limit)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	links := make([]domain.LinkResponse, 0, len(result.Links))
	for _, link := range result.Links {
		links = append(links, h.linkResponse(link))
	}

	totalPages := (result.TotalCount + result.Limit - 1) / result.Limit

	writeJSON(w, http.StatusOK, listLinksResponse{
		Links:      links,
		TotalCount: result.TotalCount,
		Pagination: domain.Pagination{
			Current: result.Page,
			Total:   totalPages,
			HasNext: result.Page < totalPages,
			HasPrev: result.Page > 1,
		},
	})
}

// UpdateLink handles PUT /urls/{shortKey}
func (h *Handler) UpdateLink(w http.ResponseWriter, r *http.Request) {
	var req domain.UpdateLinkRequest
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	link, err := h.registry.UpdateLink(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "shortKey"), req)
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.linkResponse(link))
}

// DeleteLink handles DELETE /urls/{shortKey}
func (h *Handler) DeleteLink(w http.ResponseWriter, r *http.Request) {
	if err := h.registry.DeleteLink(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "shortKey")); err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{Message: "link deleted"})
}

// LinkStats handles GET /urls/{shortKey}/stats
func (h *Handler) LinkStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.LinkStats(r.Context(), OwnerID(r.Context()), chi.URLParam(r, "shortKey"))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// DashboardStats handles GET /dashboard/stats
func (h *Handler) DashboardStats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.registry.DashboardStats(r.Context(), OwnerID(r.Context()))
	if err != nil {
		h.writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, stats)
}

// Redirect handles GET /{shortKey}. The click is recorded before the
// redirect is issued; if recording fails the client gets an error, not
// an uncounted redirect.
func (h *Handler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortKey := chi.URLParam(r, "shortKey")

	click := domain.Click{
		SourceIP:  r.RemoteAddr,
		UserAgent: r.UserAgent(),
		Referrer:  r.Referer(),
	}

	target, err := h.registry.Resolve(r.Context(), shortKey, click)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrNotFound):
			h.observeRedirect("not_found")
			writeError(w, http.StatusNotFound, "short link not found")
		case errors.Is(err, domain.ErrLinkGone):
			h.observeRedirect("gone")
			writeError(w, http.StatusGone, "short link is no longer active")
		default:
			h.logger.Error("failed to resolve short key",
				zap.String("short_key", shortKey), zap.Error(err))
			h.observeRedirect("error")
			writeError(w, http.StatusInternalServerError, "internal server error")
		}
		return
	}

	h.observeRedirect("ok")
	http.Redirect(w, r, target, http.StatusFound)
}

// Health handles GET /health
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) observeRedirect(result string) {
	if h.metrics != nil {
		h.metrics.observeRedirect(result)
	}
}

func (h *Handler) linkResponse(link *domain.ShortLink) domain.LinkResponse {
	return domain.LinkResponse{
		ID:          link.ID,
		ShortKey:    link.ShortKey,
		ShortURL:    h.baseURL + "/" + link.ShortKey,
		TargetURL:   link.TargetURL,
		Description: link.Description,
		Tags:        link.Tags,
		Active:      link.Active,
		ExpiresAt:   link.ExpiresAt,
		ClickCount:  link.ClickCount,
		CreatedAt:   link.CreatedAt,
	}
}

// writeServiceError maps domain errors to HTTP status codes
func (h *Handler) writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrInvalidTarget), errors.Is(err, domain.ErrAliasTaken):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrUnauthenticated):
		writeError(w, http.StatusUnauthorized, "authentication required")
	case errors.Is(err, domain.ErrInvalidCredentials):
		writeError(w, http.StatusUnauthorized, "invalid email or password")
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "short link not found")
	case errors.Is(err, domain.ErrLinkGone):
		writeError(w, http.StatusGone, "short link is no longer active")
	case errors.Is(err, domain.ErrEmailTaken):
		writeError(w, http.StatusConflict, "email is already registered")
	default:
		h.logger.Error("request failed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeJSON decodes a request body, rejecting unknown fields
func decodeJSON(r *http.Request, v any) error {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(v); err != nil {
		return errors.New("invalid request body: " + err.Error())
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageResponse{Message: message})
}
