package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/golang-jwt/jwt/v4"
)

// Locals keys hydrated by AuthJWT. Handlers read these, never the raw token.
const (
	LocUserID = "user_id"
	LocRole   = "role"
)

type AuthJWTOpts struct {
	Secret              string
	AllowCookieFallback bool // use the access_token cookie when no Bearer header
}

// AuthJWT validates the bearer token issued by the external auth provider and
// hydrates user_id / role locals. Token issuance and sessions live outside
// this service; the claims are trusted once the signature checks out.
func AuthJWT(o AuthJWTOpts) fiber.Handler {
	secret := strings.TrimSpace(o.Secret)

	return func(c *fiber.Ctx) error {
		if secret == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "auth is not configured")
		}

		raw := ""
		if authz := strings.TrimSpace(c.Get(fiber.HeaderAuthorization)); strings.HasPrefix(strings.ToLower(authz), "bearer ") {
			raw = strings.TrimSpace(authz[7:])
		} else if o.AllowCookieFallback {
			raw = strings.TrimSpace(c.Cookies("access_token"))
		}
		if raw == "" {
			return fiber.NewError(fiber.StatusUnauthorized, "Unauthorized")
		}

		tok, err := jwt.Parse(raw, func(t *jwt.Token) (any, error) {
			if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "invalid signing method")
			}
			return []byte(secret), nil
		})
		if err != nil || !tok.Valid {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token")
		}

		claims, ok := tok.Claims.(jwt.MapClaims)
		if !ok {
			return fiber.NewError(fiber.StatusUnauthorized, "invalid token claims")
		}

		switch v := claims["user_id"].(type) {
		case float64:
			c.Locals(LocUserID, uint(v))
		case string:
			// some issuers stringify numeric ids
			c.Locals(LocUserID, v)
		}
		if r, ok := claims["role"].(string); ok {
			c.Locals(LocRole, r)
		}

		return c.Next()
	}
}

// UserID returns the authenticated staff id, 0 when absent.
func UserID(c *fiber.Ctx) uint {
	if v, ok := c.Locals(LocUserID).(uint); ok {
		return v
	}
	return 0
}

func Role(c *fiber.Ctx) string {
	if v, ok := c.Locals(LocRole).(string); ok {
		return v
	}
	return ""
}
