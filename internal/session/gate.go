package session

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quickie-study/quickie/internal/auth"
)

// RouteClass is the gate's classification of a request path.
type RouteClass int

const (
	// Public routes pass through regardless of authentication state.
	Public RouteClass = iota
	// AuthOnly routes (login, register, ...) bounce authenticated users home.
	AuthOnly
	// Protected routes bounce unauthenticated users to login.
	Protected
)

const (
	LoginPath = "/login"
	HomePath  = "/dashboard"

	// CallbackParam carries the originally requested path through the login
	// redirect so the client can return the user there afterwards.
	CallbackParam = "callbackUrl"
)

var authRoutes = []string{
	"/login",
	"/register",
	"/forgot-password",
	"/reset-password",
	"/activate",
}

var protectedRoutes = []string{
	"/dashboard",
	"/notes",
	"/flashcards",
	"/quizzes",
	"/pomodoro",
	"/profile",
	"/achievements",
}

// Classify buckets a path into one of the three disjoint route sets. Matching
// is by path segment prefix, so /notes/42 is protected but /notestuff is not.
func Classify(path string) RouteClass {
	for _, p := range authRoutes {
		if matchesPrefix(path, p) {
			return AuthOnly
		}
	}
	for _, p := range protectedRoutes {
		if matchesPrefix(path, p) {
			return Protected
		}
	}
	return Public
}

func matchesPrefix(path, prefix string) bool {
	if path == prefix {
		return true
	}
	return strings.HasPrefix(path, prefix+"/")
}

// Authenticated reports whether the given token carries an unexpired exp
// claim. The signature is deliberately NOT verified here: the gate only
// routes the browser, and the upstream API re-checks the token on every
// proxied call. A malformed token counts as unauthenticated.
func Authenticated(token string, now time.Time) bool {
	if token == "" {
		return false
	}
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.After(now)
}

// Gate is the request filter in front of the page routes. It decides one of
// {allow, redirect-to-login, redirect-to-home} from the path class and the
// access cookie, and never blocks API or public traffic.
func Gate() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			class := Classify(r.URL.Path)
			if class == Public {
				next.ServeHTTP(w, r)
				return
			}

			authed := Authenticated(auth.AccessToken(r), time.Now())

			switch {
			case class == Protected && !authed:
				target := LoginPath + "?" + CallbackParam + "=" + url.QueryEscape(r.URL.Path)
				http.Redirect(w, r, target, http.StatusTemporaryRedirect)
			case class == AuthOnly && authed:
				http.Redirect(w, r, HomePath, http.StatusTemporaryRedirect)
			default:
				next.ServeHTTP(w, r)
			}
		})
	}
}
