package middleware

import (
	"context"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// Correlation ids tie a scored submission to its progression and
// notification side effects across log lines and nodes. Clients may supply
// one; otherwise a fresh uuid is minted per request.
const correlationHeader = "X-Correlation-ID"

const correlationLocal = "correlation_id"

type correlationContextKey struct{}

// CorrelationID stamps every request with a correlation identifier and
// echoes it back in the response headers.
func CorrelationID() fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := strings.TrimSpace(c.Get(correlationHeader))
		if id == "" {
			id = uuid.NewString()
		}

		c.Locals(correlationLocal, id)
		c.Set(correlationHeader, id)
		c.SetUserContext(context.WithValue(c.Context(), correlationContextKey{}, id))

		return c.Next()
	}
}

// CorrelationIDFromContext extracts the correlation identifier carried by a
// context, or "" when none was attached.
func CorrelationIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(correlationContextKey{}).(string)
	return id
}

// GetCorrelationID returns the identifier stamped on the active request.
func GetCorrelationID(c *fiber.Ctx) string {
	if c == nil {
		return ""
	}
	if id, ok := c.Locals(correlationLocal).(string); ok && id != "" {
		return id
	}
	return CorrelationIDFromContext(c.Context())
}

// ContextWithCorrelation rebinds the identifier onto a detached context, for
// work that outlives the fiber request (SSE streams, async publishes).
func ContextWithCorrelation(ctx context.Context, correlationID string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	correlationID = strings.TrimSpace(correlationID)
	if correlationID == "" {
		return ctx
	}
	return context.WithValue(ctx, correlationContextKey{}, correlationID)
}
