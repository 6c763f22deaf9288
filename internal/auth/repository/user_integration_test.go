//go:build integration

package repository_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	autherrors "gatepass/internal/auth/errors"
	"gatepass/internal/auth/repository"
	"gatepass/pkg/model"
	"gatepass/pkg/testutil/containers"
)

func TestUserRepository_Mongo(t *testing.T) {
	mc := containers.NewMongoContainer(t)
	repo := repository.NewMongoUserRepository(mc.Config())
	ctx := context.Background()

	user := &model.User{
		Name:         "Desk",
		Email:        "desk@example.com",
		PasswordHash: "$2a$10$abcdefghijklmnopqrstuv",
		CreatedAt:    time.Now().UTC(),
	}
	require.NoError(t, repo.Create(ctx, user))
	require.NotEmpty(t, user.ID)

	got, err := repo.FindByEmail(ctx, "desk@example.com")
	require.NoError(t, err)
	require.Equal(t, user.ID, got.ID)
	require.Equal(t, user.PasswordHash, got.PasswordHash)

	dup := *user
	dup.ID = ""
	err = repo.Create(ctx, &dup)
	require.True(t, errors.Is(err, autherrors.ErrEmailTaken))

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	require.True(t, errors.Is(err, autherrors.ErrNotFound))
}
