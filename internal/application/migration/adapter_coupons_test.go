package migrationapp

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/domain/migration"
	"github.com/nahidhasantamim/CT-wix-store-migrator-sub003/internal/infrastructure/wix"
)

func TestCouponAdapterRemapScope(t *testing.T) {
	ctx := context.Background()
	adapter := NewCouponAdapter(nil, nil, nil, nil)

	t.Run("derives a start time when the source omits one", func(t *testing.T) {
		spec := &wix.CouponSpecification{Name: "Legacy Coupon", Code: "SAVE10", Active: true}

		out, err := adapter.remapScope(ctx, spec)
		require.NoError(t, err)
		require.NotEmpty(t, out.StartTime)

		parsed, err := time.Parse(time.RFC3339, out.StartTime)
		require.NoError(t, err)
		assert.WithinDuration(t, time.Now().UTC(), parsed, time.Minute)

		assert.Empty(t, spec.StartTime, "the source specification stays untouched")
	})

	t.Run("keeps a start time the source carries", func(t *testing.T) {
		spec := &wix.CouponSpecification{
			Name:      "Spring Sale",
			Code:      "SPRING",
			StartTime: "2023-04-01T00:00:00Z",
			Active:    true,
		}

		out, err := adapter.remapScope(ctx, spec)
		require.NoError(t, err)
		assert.Equal(t, "2023-04-01T00:00:00Z", out.StartTime)
	})

	t.Run("rejects a coupon without a code", func(t *testing.T) {
		_, err := adapter.remapScope(ctx, &wix.CouponSpecification{Name: "No Code"})
		var vErr *migration.ValidationError
		require.ErrorAs(t, err, &vErr)
		assert.Equal(t, "code", vErr.Field)
	})
}
