package roles

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	id "mindcare/pkg/domain"
)

func TestInMemoryGrantAndRevoke(t *testing.T) {
	ctx := context.Background()
	s := NewInMemory()
	userID := id.UserID(uuid.New())

	ok, err := s.IsProfessional(ctx, userID)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.GrantProfessional(ctx, userID))
	ok, _ = s.IsProfessional(ctx, userID)
	assert.True(t, ok)

	require.NoError(t, s.RevokeProfessional(ctx, userID))
	ok, _ = s.IsProfessional(ctx, userID)
	assert.False(t, ok)
}
