package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/fatemameem/technest-backend/internal/auth"
)

// RequireRole verifies the bearer token, resolves the caller's role against
// the allow-list and rejects the request unless the role is one of the given
// set. On success the email and role are stored in c.Locals.
func RequireRole(verifier *auth.JWTVerifier, resolver *auth.Resolver, log *zap.SugaredLogger, roles ...string) fiber.Handler {
	allowed := make(map[string]bool, len(roles))
	for _, r := range roles {
		allowed[r] = true
	}
	return func(c *fiber.Ctx) error {
		header := c.Get("Authorization")
		if header == "" {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "missing authorization"})
		}
		parts := strings.SplitN(header, " ", 2)
		if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid authorization"})
		}
		email, err := verifier.VerifyToken(parts[1])
		if err != nil {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "invalid token"})
		}
		role, err := resolver.Resolve(c.Context(), email)
		if err == auth.ErrNotAllowed {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "not authorized"})
		}
		if err != nil {
			log.Errorw("role lookup failed", "email", email, "err", err)
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "role lookup failed"})
		}
		if !allowed[role] {
			return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "insufficient role"})
		}
		c.Locals("email", email)
		c.Locals("role", role)
		return c.Next()
	}
}
