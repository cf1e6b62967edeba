package middleware

import (
	"context"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// GuestCookieName is the cookie carrying the guest portfolio id.
const GuestCookieName = "guest_id"

const guestIDKey contextKey = "guest_id"

// Guest returns a middleware that identifies non-authenticated visitors by the
// guest_id cookie, issuing a new id when the cookie is missing or malformed.
func Guest(secure bool, maxAge time.Duration) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var guestID string
			if c, err := r.Cookie(GuestCookieName); err == nil {
				if id, err := uuid.Parse(c.Value); err == nil {
					guestID = id.String()
				}
			}

			if guestID == "" {
				guestID = uuid.New().String()
				sameSite := http.SameSiteLaxMode
				if secure {
					sameSite = http.SameSiteNoneMode
				}
				http.SetCookie(w, &http.Cookie{
					Name:     GuestCookieName,
					Value:    guestID,
					Path:     "/",
					MaxAge:   int(maxAge.Seconds()),
					HttpOnly: true,
					Secure:   secure,
					SameSite: sameSite,
				})
			}

			next.ServeHTTP(w, r.WithContext(WithGuestID(r.Context(), guestID)))
		})
	}
}

// WithGuestID returns a copy of ctx carrying the guest id.
func WithGuestID(ctx context.Context, guestID string) context.Context {
	return context.WithValue(ctx, guestIDKey, guestID)
}

// GuestIDFromContext returns the id stored by Guest.
func GuestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(guestIDKey).(string)
	return id
}
