package userctx

import (
	"context"

	"github.com/nkiryanov/booklend/internal/models"
)

type ctxKey string

const principalKey ctxKey = "principal"

// Create a new context with the verified request sender
func New(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

// Extract the verified request sender from the context
func FromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey).(models.Principal)
	return p, ok
}
