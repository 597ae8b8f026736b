package middleware

import (
	"github.com/gofiber/fiber/v2"
)

// UserIDLocalKey is the key under which the verified caller identity is stored
// in Fiber's context locals.
const UserIDLocalKey = "user_id"

// CredentialVerifier validates a bearer credential and extracts a user identity.
type CredentialVerifier interface {
	Verify(bearer string) (string, error)
}

// RequireAuth rejects requests without a valid bearer credential and stores
// the verified user ID in context locals.
func RequireAuth(v CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		userID, err := v.Verify(c.Get(fiber.HeaderAuthorization))
		if err != nil {
			return fiber.ErrUnauthorized
		}
		c.Locals(UserIDLocalKey, userID)
		return c.Next()
	}
}

// OptionalAuth stores the verified user ID when a valid bearer credential is
// present and continues anonymously otherwise. Used on routes where link or
// token possession can stand in for identity (shared views, the byte proxy).
func OptionalAuth(v CredentialVerifier) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if bearer := c.Get(fiber.HeaderAuthorization); bearer != "" {
			if userID, err := v.Verify(bearer); err == nil {
				c.Locals(UserIDLocalKey, userID)
			}
			// An invalid credential downgrades to anonymous rather than failing:
			// the resolver decides whether anonymity is sufficient.
		}
		return c.Next()
	}
}

// UserID extracts the verified caller identity, empty for anonymous callers.
func UserID(c *fiber.Ctx) string {
	if v, ok := c.Locals(UserIDLocalKey).(string); ok {
		return v
	}
	return ""
}
