package middleware

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/econova/econova-api/internal/utils"
)

// RequireRole guards a route group so only the named roles pass. It reads
// the role JWTProtected stored in the request locals; an absent role is a
// plain 403, never a panic.
func RequireRole(roles ...string) fiber.Handler {
	allowed := make(map[string]struct{}, len(roles))
	for _, role := range roles {
		if normalized := strings.ToLower(strings.TrimSpace(role)); normalized != "" {
			allowed[normalized] = struct{}{}
		}
	}

	return func(c *fiber.Ctx) error {
		role := roleString(c.Locals("user_role"))
		if _, ok := allowed[role]; !ok {
			return utils.SendError(c, fiber.StatusForbidden, "insufficient permissions")
		}
		return c.Next()
	}
}

// roleString lowercases a role value that may arrive as a plain string or,
// from older tokens, as a list of strings.
func roleString(value interface{}) string {
	switch v := value.(type) {
	case string:
		return strings.ToLower(strings.TrimSpace(v))
	case []interface{}:
		for _, item := range v {
			if s, ok := item.(string); ok {
				if role := strings.ToLower(strings.TrimSpace(s)); role != "" {
					return role
				}
			}
		}
	}
	return ""
}
