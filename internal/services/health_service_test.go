package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"evmap/internal/store"
	"evmap/pkg/contracts/domain"
)

func TestHealthService_HealthCheck(t *testing.T) {
	hs := NewHealthService("1.2.3", nil, nil)

	status := hs.HealthCheck(context.Background())
	assert.Equal(t, "ok", status.Status)
	assert.Equal(t, "1.2.3", status.Version)
	assert.Contains(t, status.Runtime, "uptime")
}

func TestHealthService_ReadinessCheck(t *testing.T) {
	ctx := context.Background()

	t.Run("no dataset", func(t *testing.T) {
		status := NewHealthService("dev", nil, nil).ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
	})

	t.Run("all tables loaded", func(t *testing.T) {
		status := NewHealthService("dev", newTestDataService(), nil).ReadinessCheck(ctx)
		assert.Equal(t, "ready", status.Status)
		require.Contains(t, status.Services, "vehicles")
		assert.Equal(t, 5, status.Services["vehicles"].(ServiceHealth).Records)
	})

	t.Run("empty table", func(t *testing.T) {
		ds := testDataset()
		ds.Environment = store.NewTable(domain.SourceEnvironment, nil)
		svc := NewDataService(ds, nil, nil)

		status := NewHealthService("dev", svc, nil).ReadinessCheck(ctx)
		assert.Equal(t, "not_ready", status.Status)
		assert.Equal(t, "not_ready", status.Services["environment"].(ServiceHealth).Status)
	})
}
