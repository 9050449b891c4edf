package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/nevbird/storefront-api/pkg/config"
	"github.com/nevbird/storefront-api/pkg/logger"
)

// Session assigns every visitor a stable cart session id via cookie,
// generating one on first contact. The id keys the visitor's durable cart
// slot, so it must survive page reloads the way the original storefront's
// local storage did.
func Session(cfg config.CartConfig, logg *logger.Logger) func(http.Handler) http.Handler {
	name := cfg.SessionCookie
	if name == "" {
		name = "nevbird_session"
	}
	maxAge := int(cfg.SlotTTL / time.Second)

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sessionID := ""
			if cookie, err := r.Cookie(name); err == nil {
				if _, parseErr := uuid.Parse(cookie.Value); parseErr == nil {
					sessionID = cookie.Value
				}
			}
			if sessionID == "" {
				sessionID = uuid.NewString()
				http.SetCookie(w, &http.Cookie{
					Name:     name,
					Value:    sessionID,
					Path:     "/",
					MaxAge:   maxAge,
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			ctx := WithSessionID(r.Context(), sessionID)
			if logg != nil {
				ctx = logg.WithSessionID(ctx, sessionID)
			}
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
