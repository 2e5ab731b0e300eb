package middleware

import (
	"net/http"
	"strings"

	"github.com/google/uuid"

	"github.com/angelmondragon/spa-backend/pkg/logger"
)

const (
	ClientIDHeader  = "X-Client-Id"
	SessionIDHeader = "X-Booking-Session"
	clientCookie    = "spa_client"
	sessionCookie   = "spa_booking"

	maxIdentityLength = 64
	clientCookieAge   = 365 * 24 * 60 * 60
)

// ClientIdentity resolves the caller's cart owner and booking session.
// Ids come from the header first, then the cookie; missing or malformed ids
// are replaced with fresh ones and echoed back on both channels. The client
// id is long lived; the session cookie expires with the browser session.
func ClientIdentity(secureCookies bool, logg *logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			clientID, fresh := resolveIdentity(r, ClientIDHeader, clientCookie)
			if fresh {
				http.SetCookie(w, &http.Cookie{
					Name:     clientCookie,
					Value:    clientID,
					Path:     "/",
					MaxAge:   clientCookieAge,
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(ClientIDHeader, clientID)

			sessionID, fresh := resolveIdentity(r, SessionIDHeader, sessionCookie)
			if fresh {
				http.SetCookie(w, &http.Cookie{
					Name:     sessionCookie,
					Value:    sessionID,
					Path:     "/",
					HttpOnly: true,
					Secure:   secureCookies,
					SameSite: http.SameSiteLaxMode,
				})
			}
			w.Header().Set(SessionIDHeader, sessionID)

			ctx := WithClientID(r.Context(), clientID)
			ctx = WithSessionID(ctx, sessionID)
			if logg != nil {
				ctx = logg.WithClientID(ctx, clientID)
				ctx = logg.WithSessionID(ctx, sessionID)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func resolveIdentity(r *http.Request, header, cookie string) (string, bool) {
	if v := strings.TrimSpace(r.Header.Get(header)); validIdentity(v) {
		return v, false
	}
	if c, err := r.Cookie(cookie); err == nil {
		if v := strings.TrimSpace(c.Value); validIdentity(v) {
			return v, false
		}
	}
	return uuid.NewString(), true
}

// validIdentity accepts short opaque tokens of letters, digits, '-' and '_'.
func validIdentity(value string) bool {
	if value == "" || len(value) > maxIdentityLength {
		return false
	}
	for _, c := range value {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			return false
		}
	}
	return true
}
