package handler

import (
	"encoding/json"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/logger"
	"github.com/linksnip/linksnip/pkg/ports"
)

type HTTPHandler struct {
	identity ports.IdentityService
	links    ports.LinkService
	log      *logger.Logger
}

func NewHTTPHandler(identity ports.IdentityService, links ports.LinkService, log *logger.Logger) *HTTPHandler {
	return &HTTPHandler{identity: identity, links: links, log: log}
}

// ShortenRequest payload
type ShortenRequest struct {
	URL string `json:"url"`
}

// Create shortens a URL. The bearer token is optional: a valid one ties the
// link to the account, anything else creates it anonymously.
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req ShortenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	owner := h.identity.VerifyTokenOptional(bearerToken(r))

	link, err := h.links.Shorten(r.Context(), req.URL, owner)
	if err != nil {
		h.log.Error("ShortenFailed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"id": link.ShortID})
}

// Redirect resolves a short identifier and records the visit.
func (h *HTTPHandler) Redirect(w http.ResponseWriter, r *http.Request) {
	shortID := r.PathValue("shortId")

	destination, err := h.links.Resolve(r.Context(), shortID, visitFromRequest(r))
	if err != nil {
		if !errors.Is(err, domain.ErrNotFound) {
			h.log.Error("ResolveFailed", zap.String("shortId", shortID), zap.Error(err))
		}
		respondServiceError(w, err)
		return
	}

	http.Redirect(w, r, destination, http.StatusFound)
}

// UserLinks lists every link owned by the authenticated account.
func (h *HTTPHandler) UserLinks(w http.ResponseWriter, r *http.Request) {
	owner, err := h.identity.VerifyToken(bearerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	links, err := h.links.ListOwned(r.Context(), owner)
	if err != nil {
		h.log.Error("ListOwnedFailed", zap.Error(err))
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"links": links})
}

// GetOne returns a single owned link with its full visit history.
func (h *HTTPHandler) GetOne(w http.ResponseWriter, r *http.Request) {
	owner, err := h.identity.VerifyToken(bearerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	link, err := h.links.GetOwned(r.Context(), owner, r.PathValue("id"))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// Update applies a partial edit (title, tags, custom back-half) to an owned
// link and returns the updated document.
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	owner, err := h.identity.VerifyToken(bearerToken(r))
	if err != nil {
		respondServiceError(w, err)
		return
	}

	var edit domain.LinkEdit
	if err := json.NewDecoder(r.Body).Decode(&edit); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	link, err := h.links.UpdateOwned(r.Context(), owner, r.PathValue("id"), edit)
	if err != nil {
		respondServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, link)
}

// bearerToken returns the Authorization header value; VerifyToken tolerates
// both "Bearer <token>" and a bare token string.
func bearerToken(r *http.Request) string {
	return r.Header.Get("Authorization")
}

func visitFromRequest(r *http.Request) domain.VisitRecord {
	return domain.VisitRecord{
		Timestamp: time.Now().UnixMilli(),
		IPAddress: clientIP(r),
		UserAgent: r.UserAgent(),
		// Country/city stay empty: coarse geography is best-effort and no
		// resolver is wired in.
	}
}

func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		return strings.TrimSpace(strings.Split(fwd, ",")[0])
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

// respondServiceError maps a typed core failure to a status code and a
// client-facing message.
func respondServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation), errors.Is(err, domain.ErrConflict):
		writeError(w, http.StatusBadRequest, clientMessage(err))
	case errors.Is(err, domain.ErrAuth):
		writeError(w, http.StatusUnauthorized, clientMessage(err))
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, clientMessage(err))
	default:
		writeError(w, http.StatusInternalServerError, "Internal server error")
	}
}

// clientMessage strips the sentinel suffix the services append with %w, so
// clients see "back-half already in use" rather than "...: conflict".
func clientMessage(err error) string {
	msg := err.Error()
	for _, sentinel := range []error{
		domain.ErrValidation, domain.ErrConflict, domain.ErrAuth,
		domain.ErrNotFound, domain.ErrInternal,
	} {
		msg = strings.TrimSuffix(msg, ": "+sentinel.Error())
	}
	return msg
}
