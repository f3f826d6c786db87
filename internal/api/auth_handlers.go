package api

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/quickie-study/quickie/internal/auth"
	"github.com/quickie-study/quickie/internal/upstream"
)

type registerRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RePassword string `json:"rePassword"`
	FirstName  string `json:"firstName"`
	LastName   string `json:"lastName"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type activateRequest struct {
	UID   string `json:"uid"`
	Token string `json:"token"`
}

type forgotPasswordRequest struct {
	Email string `json:"email"`
}

type resetPasswordRequest struct {
	UID           string `json:"uid"`
	Token         string `json:"token"`
	NewPassword   string `json:"newPassword"`
	ReNewPassword string `json:"reNewPassword"`
}

type deleteAccountRequest struct {
	CurrentPassword string `json:"currentPassword"`
}

// writeUpstreamError translates a known upstream rejection into a stable
// client message, and anything else into a logged generic 500.
func writeUpstreamError(w http.ResponseWriter, op string, err error) {
	var apiErr *upstream.APIError
	if errors.As(err, &apiErr) {
		status, msg := auth.TranslateUpstreamError(apiErr.Status, apiErr.Body)
		writeMessage(w, status, msg)
		return
	}
	log.Printf("[AUTH] %s failed: %v", op, err)
	writeMessage(w, http.StatusInternalServerError, genericServerError)
}

// RegisterHandler creates a new upstream account. The account starts
// inactive; the upstream emails an activation link.
func (api *Api) RegisterHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	switch {
	case req.Email == "":
		writeMessage(w, http.StatusBadRequest, "Email is required.")
		return
	case req.Password == "":
		writeMessage(w, http.StatusBadRequest, "Password is required.")
		return
	case req.Password != req.RePassword:
		writeMessage(w, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	user, err := api.upstream.Register(r.Context(), req.Email, req.Password, req.RePassword, req.FirstName, req.LastName)
	if err != nil {
		writeUpstreamError(w, "register", err)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"user":    user,
		"message": "Account created. Check your email to activate it.",
	})
}

// LoginHandler exchanges credentials for the cookie pair and returns the
// reshaped user. No cookie is set unless the whole exchange succeeds.
func (api *Api) LoginHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	switch {
	case req.Email == "":
		writeMessage(w, http.StatusBadRequest, "Email is required.")
		return
	case req.Password == "":
		writeMessage(w, http.StatusBadRequest, "Password is required.")
		return
	}

	pair, err := api.upstream.CreateTokens(r.Context(), req.Email, req.Password)
	if err != nil {
		writeUpstreamError(w, "login", err)
		return
	}

	user, err := api.upstream.CurrentUser(r.Context(), pair.Access)
	if err != nil {
		writeUpstreamError(w, "login user fetch", err)
		return
	}

	auth.SetSessionCookies(w, pair.Access, pair.Refresh, api.cookieSettings())
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// RefreshHandler trades the refresh cookie for a fresh access cookie and
// re-stamps both, sliding the refresh window.
func (api *Api) RefreshHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	refresh := auth.RefreshToken(r)
	if refresh == "" {
		writeMessage(w, http.StatusUnauthorized, "Your session has expired. Please log in again.")
		return
	}

	access, err := api.upstream.RefreshAccess(r.Context(), refresh)
	if err != nil {
		writeUpstreamError(w, "refresh", err)
		return
	}

	user, err := api.upstream.CurrentUser(r.Context(), access)
	if err != nil {
		writeUpstreamError(w, "refresh user fetch", err)
		return
	}

	auth.SetSessionCookies(w, access, refresh, api.cookieSettings())
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}

// LogoutHandler clears both cookies. The upstream is stateless about JWTs, so
// there is nothing to revoke server-side.
func (api *Api) LogoutHandler(w http.ResponseWriter, r *http.Request) {
	auth.ClearSessionCookies(w, api.cookieSettings())
	writeMessage(w, http.StatusOK, "Logged out.")
}

// ActivateHandler confirms an account from the emailed uid/token pair.
func (api *Api) ActivateHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	var req activateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.UID == "" || req.Token == "" {
		writeMessage(w, http.StatusBadRequest, "Activation link is incomplete.")
		return
	}

	if err := api.upstream.Activate(r.Context(), req.UID, req.Token); err != nil {
		writeUpstreamError(w, "activate", err)
		return
	}
	writeMessage(w, http.StatusOK, "Account activated. You can now log in.")
}

// ForgotPasswordHandler always answers the same success shape whether or not
// the email belongs to an account, so the route cannot be used to probe for
// registered addresses.
func (api *Api) ForgotPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	var req forgotPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.Email == "" {
		writeMessage(w, http.StatusBadRequest, "Email is required.")
		return
	}

	if err := api.upstream.RequestPasswordReset(r.Context(), req.Email); err != nil {
		log.Printf("[AUTH] password reset request failed: %v", err)
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": true,
		"message": "If an account with that email exists, a reset link has been sent.",
	})
}

// ResetPasswordHandler finalizes a password reset from the emailed link.
func (api *Api) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}

	var req resetPasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	switch {
	case req.UID == "" || req.Token == "":
		writeMessage(w, http.StatusBadRequest, "Reset link is incomplete.")
		return
	case req.NewPassword == "":
		writeMessage(w, http.StatusBadRequest, "New password is required.")
		return
	case req.NewPassword != req.ReNewPassword:
		writeMessage(w, http.StatusBadRequest, "Passwords do not match.")
		return
	}

	err := api.upstream.ConfirmPasswordReset(r.Context(), req.UID, req.Token, req.NewPassword, req.ReNewPassword)
	if err != nil {
		writeUpstreamError(w, "reset password", err)
		return
	}
	writeMessage(w, http.StatusOK, "Password has been reset. You can now log in.")
}

// DeleteAccountHandler removes the upstream account and clears the session.
func (api *Api) DeleteAccountHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	var req deleteAccountRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid request body.")
		return
	}
	if req.CurrentPassword == "" {
		writeMessage(w, http.StatusBadRequest, "Current password is required.")
		return
	}

	if err := api.upstream.DeleteAccount(r.Context(), token, req.CurrentPassword); err != nil {
		writeUpstreamError(w, "delete account", err)
		return
	}

	auth.ClearSessionCookies(w, api.cookieSettings())
	writeMessage(w, http.StatusOK, "Your account has been deleted.")
}

// CurrentUserHandler returns the reshaped authenticated user.
func (api *Api) CurrentUserHandler(w http.ResponseWriter, r *http.Request) {
	if !api.requireUpstream(w) {
		return
	}
	token, ok := api.requireAccess(w, r)
	if !ok {
		return
	}

	user, err := api.upstream.CurrentUser(r.Context(), token)
	if err != nil {
		writeUpstreamError(w, "current user", err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"user": user})
}
