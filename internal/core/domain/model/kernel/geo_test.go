package kernel_test

import (
	"testing"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/pkg/errs"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewGeoPoint(t *testing.T) {
	t.Run("valid coordinates", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(3.1390, 101.6869)

		require.NoError(t, err)
		assert.InDelta(t, 3.1390, p.Lat(), 1e-9)
		assert.InDelta(t, 101.6869, p.Lng(), 1e-9)
		assert.False(t, p.IsPseudo())
		require.NoError(t, p.Validate())
	})

	t.Run("latitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(91, 0)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("longitude out of range", func(t *testing.T) {
		_, err := kernel.NewGeoPoint(0, -181)
		require.ErrorIs(t, err, errs.ErrValueIsOutOfRange)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var p kernel.GeoPoint
		require.Error(t, p.Validate())
	})
}

func TestGeoPointDistanceKm(t *testing.T) {
	t.Run("identical points have zero distance", func(t *testing.T) {
		p, err := kernel.NewGeoPoint(3.1390, 101.6869)
		require.NoError(t, err)

		assert.InDelta(t, 0, p.DistanceKm(p), 1e-9)
	})

	t.Run("one degree of latitude is about 111 km", func(t *testing.T) {
		a, err := kernel.NewGeoPoint(0, 0)
		require.NoError(t, err)
		b, err := kernel.NewGeoPoint(1, 0)
		require.NoError(t, err)

		assert.InDelta(t, 111.19, a.DistanceKm(b), 0.5)
	})

	t.Run("distance is symmetric", func(t *testing.T) {
		a, err := kernel.NewGeoPoint(3.10, 101.60)
		require.NoError(t, err)
		b, err := kernel.NewGeoPoint(3.20, 101.75)
		require.NoError(t, err)

		assert.InDelta(t, a.DistanceKm(b), b.DistanceKm(a), 1e-9)
	})
}

func TestPseudoPoint(t *testing.T) {
	t.Run("deterministic for the same address", func(t *testing.T) {
		p1 := kernel.PseudoPoint("north", "12 Jalan Besar")
		p2 := kernel.PseudoPoint("north", "12 Jalan Besar")

		assert.True(t, p1.IsEqual(p2))
	})

	t.Run("marked as pseudo and valid", func(t *testing.T) {
		p := kernel.PseudoPoint("north", "12 Jalan Besar")

		assert.True(t, p.IsPseudo())
		require.NoError(t, p.Validate())
	})

	t.Run("different addresses map to different points", func(t *testing.T) {
		p1 := kernel.PseudoPoint("north", "12 Jalan Besar")
		p2 := kernel.PseudoPoint("north", "14 Jalan Besar")

		assert.False(t, p1.IsEqual(p2))
	})

	t.Run("stays inside the service region box", func(t *testing.T) {
		for _, addr := range []string{"a", "b", "c", "long street name 123", ""} {
			p := kernel.PseudoPoint("south", addr)
			assert.GreaterOrEqual(t, p.Lat(), 3.02)
			assert.LessOrEqual(t, p.Lat(), 3.26)
			assert.GreaterOrEqual(t, p.Lng(), 101.55)
			assert.LessOrEqual(t, p.Lng(), 101.79)
		}
	})
}

func TestUUID(t *testing.T) {
	t.Run("NewUUID is valid and unique", func(t *testing.T) {
		id1 := kernel.NewUUID()
		id2 := kernel.NewUUID()

		require.NoError(t, id1.Validate())
		assert.False(t, id1.IsEqual(id2))
	})

	t.Run("round-trips through string", func(t *testing.T) {
		id := kernel.NewUUID()

		parsed, err := kernel.UUIDFromString(id.String())
		require.NoError(t, err)
		assert.True(t, id.IsEqual(parsed))
	})

	t.Run("rejects malformed string", func(t *testing.T) {
		_, err := kernel.UUIDFromString("not-a-uuid")
		require.Error(t, err)
	})

	t.Run("zero value fails validation", func(t *testing.T) {
		var id kernel.UUID
		require.ErrorIs(t, id.Validate(), errs.ErrValueIsRequired)
	})
}
