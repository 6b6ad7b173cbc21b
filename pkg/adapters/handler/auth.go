package handler

import (
	"crypto/rand"
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"time"

	"go.uber.org/zap"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"

	"github.com/linksnip/linksnip/pkg/config"
	"github.com/linksnip/linksnip/pkg/core/domain"
	"github.com/linksnip/linksnip/pkg/logger"
	"github.com/linksnip/linksnip/pkg/ports"
)

type AuthHandler struct {
	identity     ports.IdentityService
	oauthConfig  *oauth2.Config
	frontendURL  string
	isProduction bool
	log          *logger.Logger
}

type GoogleUser struct {
	ID            string `json:"id"`
	Email         string `json:"email"`
	VerifiedEmail bool   `json:"verified_email"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

func NewAuthHandler(cfg *config.Config, identity ports.IdentityService, log *logger.Logger) *AuthHandler {
	return &AuthHandler{
		identity: identity,
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.GoogleClientID,
			ClientSecret: cfg.GoogleClientSecret,
			RedirectURL:  cfg.GoogleRedirectURL,
			Scopes: []string{
				"https://www.googleapis.com/auth/userinfo.email",
				"https://www.googleapis.com/auth/userinfo.profile",
			},
			Endpoint: google.Endpoint,
		},
		frontendURL:  cfg.FrontendURL,
		isProduction: cfg.AppEnv == "production",
		log:          log,
	}
}

// SignupRequest payload
type SignupRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// LoginRequest payload
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (h *AuthHandler) Signup(w http.ResponseWriter, r *http.Request) {
	var req SignupRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := h.identity.Register(r.Context(), req.Name, req.Email, req.Password); err != nil {
		if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrConflict) {
			writeError(w, http.StatusBadRequest, clientMessage(err))
			return
		}
		h.log.Error("SignupFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Signup successful"})
}

// Login verifies credentials and returns a 24h bearer token. Bad
// credentials always answer 400 with the same message.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	token, err := h.identity.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, domain.ErrAuth) {
			writeError(w, http.StatusBadRequest, "Invalid credentials")
			return
		}
		h.log.Error("LoginFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"token": token})
}

// GoogleLogin starts the oauth2 flow.
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	state := h.generateStateOauthCookie(w)
	http.Redirect(w, r, h.oauthConfig.AuthCodeURL(state), http.StatusTemporaryRedirect)
}

// GoogleCallback finishes the oauth2 flow: exchange the code, fetch the
// verified profile, find-or-create the account, then hand the bearer token
// to the frontend via the redirect URL.
func (h *AuthHandler) GoogleCallback(w http.ResponseWriter, r *http.Request) {
	oauthState, err := r.Cookie("oauthstate")
	if err != nil {
		h.log.Warn("GoogleCallbackMissingState", zap.Error(err))
		http.Redirect(w, r, h.frontendURL, http.StatusTemporaryRedirect)
		return
	}

	if r.FormValue("state") != oauthState.Value {
		h.log.Warn("GoogleCallbackBadState")
		writeError(w, http.StatusBadRequest, "Invalid oauth state")
		return
	}

	exchanged, err := h.oauthConfig.Exchange(r.Context(), r.FormValue("code"))
	if err != nil {
		h.log.Error("GoogleCodeExchangeFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Code exchange failed")
		return
	}

	response, err := http.Get("https://www.googleapis.com/oauth2/v2/userinfo?access_token=" + url.QueryEscape(exchanged.AccessToken))
	if err != nil {
		h.log.Error("GoogleUserinfoFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed getting user info")
		return
	}
	defer response.Body.Close()

	var googleUser GoogleUser
	if err := json.NewDecoder(response.Body).Decode(&googleUser); err != nil {
		h.log.Error("GoogleUserinfoDecodeFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Failed decoding user info")
		return
	}

	token, err := h.identity.AuthenticateExternal(r.Context(), googleUser.Name, googleUser.Email)
	if err != nil {
		h.log.Error("GoogleSignInFailed", zap.Error(err))
		writeError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	h.log.Info("GoogleSignIn", zap.String("email", googleUser.Email))
	redirect := h.frontendURL + "?token=" + url.QueryEscape(token)
	http.Redirect(w, r, redirect, http.StatusTemporaryRedirect)
}

func (h *AuthHandler) generateStateOauthCookie(w http.ResponseWriter) string {
	b := make([]byte, 16)
	rand.Read(b)
	state := base64.URLEncoding.EncodeToString(b)
	http.SetCookie(w, &http.Cookie{
		Name:     "oauthstate",
		Value:    state,
		Expires:  time.Now().Add(20 * time.Minute),
		Path:     "/",
		HttpOnly: true,
		Secure:   h.isProduction,
		SameSite: http.SameSiteLaxMode,
	})
	return state
}
