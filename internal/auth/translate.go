package auth

import (
	"net/http"
	"strings"
)

// GenericFailureMessage is what the client sees when the upstream error body
// has no shape we recognize.
const GenericFailureMessage = "Something went wrong. Please try again."

// errorFields is the ordered list of field names the upstream identity API is
// known to put validation errors under. Order matters: the first populated
// field wins so the client gets one actionable message.
var errorFields = []string{
	"email",
	"password",
	"new_password",
	"re_new_password",
	"current_password",
	"uid",
	"token",
	"non_field_errors",
	"detail",
}

// stableMessages maps known upstream error strings to the copy we actually
// want users to read. Anything unmapped is passed through as-is, since the
// upstream's validation strings are already sentences.
var stableMessages = map[string]string{
	"user with this email already exists.":                     "An account with this email already exists.",
	"No active account found with the given credentials":       "Invalid email or password.",
	"Invalid token for given user.":                            "This link is invalid or has already been used.",
	"Invalid user id or user doesn't exist.":                   "This link is invalid or has already been used.",
	"Stale token for given user.":                              "This link has expired. Please request a new one.",
	"Token is invalid or expired":                              "Your session has expired. Please log in again.",
	"Unable to log in with provided credentials.":              "Invalid email or password.",
	"Authentication credentials were not provided.":            "You must be logged in to do that.",
	"Invalid password.":                                        "The password you entered is incorrect.",
	"This password is too short. It must contain at least 8 characters.": "Password must be at least 8 characters long.",
	"This password is too common.":                             "That password is too common. Please pick a stronger one.",
}

// TranslateUpstreamError turns an upstream identity-API error body into a
// stable client-facing status and message. Unknown shapes fall back to a
// generic message at the upstream's own status code.
func TranslateUpstreamError(status int, body map[string]interface{}) (int, string) {
	for _, field := range errorFields {
		raw, ok := body[field]
		if !ok {
			continue
		}
		msg := firstString(raw)
		if msg == "" {
			continue
		}
		if stable, ok := stableMessages[msg]; ok {
			msg = stable
		}
		return statusFor(field, status), msg
	}
	return status, GenericFailureMessage
}

// statusFor picks the client-facing status for a translated error. Credential
// rejections always come back as 401, field validation as 400, everything
// else keeps the upstream's status.
func statusFor(field string, upstream int) int {
	switch field {
	case "detail", "non_field_errors":
		if upstream == http.StatusUnauthorized || upstream == http.StatusForbidden {
			return http.StatusUnauthorized
		}
		return upstream
	default:
		return http.StatusBadRequest
	}
}

// firstString digs the first string out of an upstream error value, which may
// be a bare string or a list of strings.
func firstString(v interface{}) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case []interface{}:
		for _, item := range t {
			if s, ok := item.(string); ok && strings.TrimSpace(s) != "" {
				return strings.TrimSpace(s)
			}
		}
	}
	return ""
}
