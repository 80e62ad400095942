package segment

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDistanceKm(t *testing.T) {
	t.Run("zero distance to itself", func(t *testing.T) {
		assert.Equal(t, 0.0, DistanceKm(55.0, 12.0, 55.0, 12.0))
	})

	t.Run("symmetric", func(t *testing.T) {
		a := DistanceKm(55.0, 12.0, 59.3293, 18.0686)
		b := DistanceKm(59.3293, 18.0686, 55.0, 12.0)
		assert.InDelta(t, a, b, 1e-9)
	})

	t.Run("known distance", func(t *testing.T) {
		// Copenhagen to Stockholm, roughly 522 km.
		d := DistanceKm(55.6761, 12.5683, 59.3293, 18.0686)
		assert.InDelta(t, 522, d, 5)
	})

	t.Run("never negative", func(t *testing.T) {
		assert.GreaterOrEqual(t, DistanceKm(-33.86, 151.21, 40.71, -74.0), 0.0)
	})
}

func spotSegment(lat, lng, radiusM float64) *Segment {
	r := radiusM
	return &Segment{
		Kind:      KindSpot,
		CenterLat: lat,
		CenterLng: lng,
		Radius:    &r,
		IsActive:  true,
	}
}

func TestIsWithinSpot(t *testing.T) {
	seg := spotSegment(55.0, 12.0, 100)

	t.Run("center is inside", func(t *testing.T) {
		assert.True(t, IsWithin(55.0, 12.0, seg))
	})

	t.Run("50m away is inside", func(t *testing.T) {
		assert.True(t, IsWithin(55.00045, 12.0, seg))
	})

	t.Run("far away is outside", func(t *testing.T) {
		assert.False(t, IsWithin(55.01, 12.0, seg))
	})

	t.Run("boundary is inclusive", func(t *testing.T) {
		// Measure the exact distance to a nearby point and use it as the
		// radius: the point sits exactly on the circle and must be included.
		lat, lng := 55.0008, 12.0003
		exactM := DistanceKm(lat, lng, seg.CenterLat, seg.CenterLng) * 1000

		onEdge := spotSegment(55.0, 12.0, exactM)
		assert.True(t, IsWithin(lat, lng, onEdge))

		justInside := spotSegment(55.0, 12.0, exactM-0.01)
		assert.False(t, IsWithin(lat, lng, justInside))
	})

	t.Run("missing radius defaults to 100m", func(t *testing.T) {
		noRadius := &Segment{Kind: KindSpot, CenterLat: 55.0, CenterLng: 12.0}
		assert.True(t, IsWithin(55.0008, 12.0, noRadius))  // ~89m
		assert.False(t, IsWithin(55.0010, 12.0, noRadius)) // ~111m
	})
}

func TestIsWithinZone(t *testing.T) {
	t.Run("polygon bounds are authoritative", func(t *testing.T) {
		bounds := `[{"lat":55.0,"lng":12.0},{"lat":55.1,"lng":12.0},{"lat":55.1,"lng":12.1},{"lat":55.0,"lng":12.1}]`
		seg := &Segment{
			Kind:      KindZone,
			CenterLat: 55.05,
			CenterLng: 12.05,
			Bounds:    &bounds,
			IsActive:  true,
		}

		assert.True(t, IsWithin(55.05, 12.05, seg))
		// Inside the polygon but several km from the center: the legacy 1km
		// fallback would reject this point, the polygon accepts it.
		assert.True(t, IsWithin(55.01, 12.01, seg))
		assert.False(t, IsWithin(55.05, 12.11, seg))
		assert.False(t, IsWithin(54.99, 12.05, seg))
	})

	t.Run("zone without bounds falls back to 1km circle", func(t *testing.T) {
		seg := &Segment{Kind: KindZone, CenterLat: 55.0, CenterLng: 12.0, IsActive: true}

		assert.True(t, IsWithin(55.008, 12.0, seg))   // ~890m
		assert.False(t, IsWithin(55.0095, 12.0, seg)) // ~1056m
	})

	t.Run("malformed bounds fall back to 1km circle", func(t *testing.T) {
		bad := `{"not":"a polygon"}`
		seg := &Segment{Kind: KindRoute, CenterLat: 55.0, CenterLng: 12.0, Bounds: &bad, IsActive: true}

		assert.True(t, IsWithin(55.008, 12.0, seg))
	})
}

func TestPointInPolygon(t *testing.T) {
	triangle := []LatLng{{Lat: 0, Lng: 0}, {Lat: 10, Lng: 0}, {Lat: 0, Lng: 10}}

	cases := []struct {
		lat, lng float64
		want     bool
	}{
		{2, 2, true},
		{1, 1, true},
		{6, 6, false},
		{-1, 5, false},
		{11, 0, false},
	}

	for _, tc := range cases {
		t.Run(fmt.Sprintf("%.0f_%.0f", tc.lat, tc.lng), func(t *testing.T) {
			require.Equal(t, tc.want, pointInPolygon(tc.lat, tc.lng, triangle))
		})
	}
}
