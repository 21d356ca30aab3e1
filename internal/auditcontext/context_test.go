package auditcontext

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestActorOrDefault(t *testing.T) {
	ctx := context.Background()
	assert.Equal(t, "Sistema", ActorOrDefault(ctx, "Sistema"))

	ctx = WithActor(ctx, "  Ana ")
	assert.Equal(t, "Ana", ActorOrDefault(ctx, "Sistema"))

	blank := WithActor(context.Background(), "   ")
	_, ok := ActorFromContext(blank)
	assert.False(t, ok)
}
