//go:build integration

package repository_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	visitorserrors "gatepass/internal/visitors/errors"
	"gatepass/internal/visitors/repository"
	"gatepass/pkg/model"
	"gatepass/pkg/testutil/containers"
)

func newGroup(id string, in time.Time) *model.VisitorGroup {
	return &model.VisitorGroup{
		GroupID: id,
		PrimaryVisitor: model.PrimaryVisitor{
			VisitorName: "Alice",
			PhoneNumber: "+14155550123",
			Address:     "1 Main St",
			Reason:      "Interview",
			PhotoURL:    "https://example.com/a.jpg",
		},
		Companions: []model.Companion{{Name: "Bo"}},
		InTime:     in,
	}
}

func TestVisitorGroupRepository_Mongo(t *testing.T) {
	mc := containers.NewMongoContainer(t)
	repo := repository.NewMongoVisitorGroupRepository(mc.Config())
	ctx := context.Background()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)

	t.Run("empty listing is an empty slice", func(t *testing.T) {
		groups, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.NotNil(t, groups)
		require.Empty(t, groups)
	})

	t.Run("create and read back", func(t *testing.T) {
		g := newGroup("AB12", base)
		require.NoError(t, repo.Create(ctx, g))
		require.NotEmpty(t, g.ID)

		exists, err := repo.ExistsByGroupID(ctx, "AB12")
		require.NoError(t, err)
		require.True(t, exists)

		got, err := repo.FindByGroupID(ctx, "AB12")
		require.NoError(t, err)
		require.Equal(t, "Alice", got.PrimaryVisitor.VisitorName)
		require.Nil(t, got.OutTime)
	})

	t.Run("duplicate group id", func(t *testing.T) {
		err := repo.Create(ctx, newGroup("AB12", base))
		require.True(t, errors.Is(err, visitorserrors.ErrDuplicateGroupID))
	})

	t.Run("schema rejects a group without companions array", func(t *testing.T) {
		g := newGroup("NOCO", base)
		g.Companions = nil
		require.Error(t, repo.Create(ctx, g))
	})

	t.Run("listing is newest first", func(t *testing.T) {
		require.NoError(t, repo.Create(ctx, newGroup("CD34", base.Add(time.Hour))))
		groups, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Equal(t, "CD34", groups[0].GroupID)
		require.Equal(t, "AB12", groups[1].GroupID)
	})

	t.Run("equal in_time lists the later insert first", func(t *testing.T) {
		same := base.Add(3 * time.Hour)
		require.NoError(t, repo.Create(ctx, newGroup("EF56", same)))
		require.NoError(t, repo.Create(ctx, newGroup("GH78", same)))
		groups, err := repo.FindAll(ctx)
		require.NoError(t, err)
		require.Equal(t, "GH78", groups[0].GroupID)
		require.Equal(t, "EF56", groups[1].GroupID)
	})

	t.Run("concurrent checkout has one winner", func(t *testing.T) {
		const n = 8
		var wg sync.WaitGroup
		var mu sync.Mutex
		wins, already := 0, 0
		for i := 0; i < n; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_, err := repo.Checkout(ctx, "CD34", base.Add(2*time.Hour))
				mu.Lock()
				defer mu.Unlock()
				switch {
				case err == nil:
					wins++
				case errors.Is(err, visitorserrors.ErrAlreadyCheckedOut):
					already++
				}
			}()
		}
		wg.Wait()
		require.Equal(t, 1, wins)
		require.Equal(t, n-1, already)

		got, err := repo.FindByGroupID(ctx, "CD34")
		require.NoError(t, err)
		require.NotNil(t, got.OutTime)
	})

	t.Run("checkout unknown group", func(t *testing.T) {
		_, err := repo.Checkout(ctx, "ZZZZ", base)
		require.True(t, errors.Is(err, visitorserrors.ErrNotFound))
	})
}
