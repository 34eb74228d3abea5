package middleware

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const (
	cartCookieName = "bw_cart"
	cartContextKey = "cart_key"
	cartCookieTTL  = 180 * 24 * time.Hour
)

// CartSession attaches an opaque cart key to the request, issuing a cookie on
// first touch. This is not authentication; the key only names a cart.
func CartSession() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key := ""
			if ck, err := c.Cookie(cartCookieName); err == nil && ck.Value != "" {
				key = ck.Value
			}

			if key == "" {
				key = uuid.NewString()
				c.SetCookie(&http.Cookie{
					Name:     cartCookieName,
					Value:    key,
					Path:     "/",
					Expires:  time.Now().Add(cartCookieTTL),
					HttpOnly: true,
					SameSite: http.SameSiteLaxMode,
				})
			}

			c.Set(cartContextKey, key)
			return next(c)
		}
	}
}

// CartKeyFromContext reads the key set by CartSession.
func CartKeyFromContext(c echo.Context) (string, bool) {
	key, ok := c.Get(cartContextKey).(string)
	if !ok || key == "" {
		return "", false
	}
	return key, true
}
