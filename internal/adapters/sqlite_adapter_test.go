package adapters

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bizdash/internal/core"
	"bizdash/internal/services"
	"bizdash/internal/storage"
)

type recordingPublisher struct {
	actions []string
}

func (p *recordingPublisher) PublishServiceChanged(_ context.Context, id, action string) error {
	p.actions = append(p.actions, action+":"+id)
	return nil
}

func TestSQLiteAdapterRoutesWritesThroughCatalog(t *testing.T) {
	repo, err := storage.NewSQLiteRepository(filepath.Join(t.TempDir(), "test.db"), time.UTC)
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })

	pub := &recordingPublisher{}
	a := NewSQLiteAdapter(repo, services.NewCatalogService(repo, pub))
	ctx := context.Background()

	id, err := a.CreateService(ctx, core.Service{Title: "Haircut", Details: "Basic", Price: decimal.NewFromInt(150), Available: true})
	require.NoError(t, err)
	require.NoError(t, a.SetAvailability(ctx, id, false))
	require.NoError(t, a.DeleteService(ctx, id))

	assert.Equal(t, []string{"created:" + id, "availability:" + id, "deleted:" + id}, pub.actions)

	list, err := a.ListServices(ctx)
	require.NoError(t, err)
	assert.Empty(t, list)

	err = a.UpdateService(ctx, core.Service{ID: id, Title: "x", Details: "y", Price: decimal.NewFromInt(1)})
	assert.ErrorIs(t, err, core.ErrServiceNotFound)
	assert.Len(t, pub.actions, 3, "failed writes are not announced")

	require.NoError(t, a.Ping(ctx))
}
