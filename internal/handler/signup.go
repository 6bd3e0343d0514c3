package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	apperrors "github.com/openclaw/waba-signup-go/internal/errors"
	"github.com/openclaw/waba-signup-go/internal/service"
)

// SignupHandler serves the embedded signup flow: the OAuth redirect pair for
// browsers and the direct JSON endpoint for frontends that receive the code
// themselves.
type SignupHandler struct {
	signupService *service.SignupService
	frontendURL   string
}

func NewSignupHandler(signupService *service.SignupService, frontendURL string) *SignupHandler {
	return &SignupHandler{
		signupService: signupService,
		frontendURL:   frontendURL,
	}
}

func (h *SignupHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Get("/auth/meta", h.BeginAuth)
	r.Get("/auth/meta/callback", h.Callback)
	r.Post("/signup", h.Signup)
	r.Get("/accounts", h.ListAccounts)

	return r
}

// BeginAuth redirects the merchant's browser to the Meta consent dialog.
func (h *SignupHandler) BeginAuth(w http.ResponseWriter, r *http.Request) {
	dialogURL, err := h.signupService.BeginAuth(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("failed to begin OAuth flow")
		writeError(w, err)
		return
	}

	http.Redirect(w, r, dialogURL, http.StatusFound)
}

// Callback is where Meta sends the browser back. This endpoint never renders
// JSON errors to the merchant: every failure becomes a redirect to the
// frontend login page with the reason in the query string. The one exception
// is a request with neither code nor error, which no browser coming from
// Meta can produce.
func (h *SignupHandler) Callback(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	if errParam := query.Get("error"); errParam != "" {
		reason := query.Get("error_description")
		if reason == "" {
			reason = errParam
		}
		log.Warn().Str("error", errParam).Str("reason", reason).Msg("consent dialog returned an error")
		h.redirectWithError(w, r, reason)
		return
	}

	code := query.Get("code")
	if code == "" {
		writeError(w, apperrors.MissingRequired("code"))
		return
	}

	if state := query.Get("state"); state != "" {
		if err := h.signupService.ConsumeState(r.Context(), state); err != nil {
			log.Warn().Err(err).Msg("state validation failed on callback")
			h.redirectWithError(w, r, "Invalid or expired state token")
			return
		}
	}

	result, err := h.signupService.Signup(r.Context(), code)
	if err != nil {
		log.Error().Err(err).Msg("signup failed on callback")
		h.redirectWithError(w, r, errorMessage(err))
		return
	}

	target := fmt.Sprintf("%s/auth/meta/callback?token=%s", h.frontendURL, url.QueryEscape(result.Token))
	http.Redirect(w, r, target, http.StatusFound)
}

type signupRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

// Signup is the direct JSON flow: the frontend ran the OAuth dialog itself
// and posts the code and state here. Unlike the browser callback, state is
// mandatory.
func (h *SignupHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req signupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, apperrors.ValidationError("Invalid request body"))
		return
	}

	if req.Code == "" {
		writeError(w, apperrors.MissingRequired("code"))
		return
	}

	if err := h.signupService.ConsumeState(r.Context(), req.State); err != nil {
		writeError(w, err)
		return
	}

	result, err := h.signupService.Signup(r.Context(), req.Code)
	if err != nil {
		log.Error().Err(err).Msg("signup failed")
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    result,
	})
}

// ListAccounts returns the linked business accounts, paginated.
func (h *SignupHandler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	pagination := ParsePagination(r)

	accounts, total, err := h.signupService.ListAccounts(r.Context(), pagination.Limit, pagination.Offset)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"success": true,
		"data":    accounts,
		"pagination": map[string]int{
			"total":  total,
			"limit":  pagination.Limit,
			"offset": pagination.Offset,
		},
	})
}

func (h *SignupHandler) redirectWithError(w http.ResponseWriter, r *http.Request, message string) {
	target := fmt.Sprintf("%s/login?error=%s", h.frontendURL, url.QueryEscape(message))
	http.Redirect(w, r, target, http.StatusFound)
}

// errorMessage extracts the user-facing message from an error for the
// redirect flow. Upstream auth messages pass through verbatim.
func errorMessage(err error) string {
	if appErr, ok := apperrors.AsAppError(err); ok {
		return appErr.Message
	}
	return "Signup failed"
}
