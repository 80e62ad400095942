package segment

import (
	"encoding/json"
	"math"
)

const (
	earthRadiusKm = 6371

	// defaultSpotRadiusM applies to spot segments created without a radius.
	defaultSpotRadiusM = 100
	// fallbackRadiusM applies to route/zone segments without a usable boundary.
	fallbackRadiusM = 1000
)

// DistanceKm returns the Haversine great-circle distance in kilometers
// between two WGS84 lat/lng points given in degrees.
func DistanceKm(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := toRadians(lat2 - lat1)
	dLon := toRadians(lon2 - lon1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(toRadians(lat1))*math.Cos(toRadians(lat2))*
			math.Sin(dLon/2)*math.Sin(dLon/2)

	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
	return earthRadiusKm * c
}

func toRadians(degrees float64) float64 {
	return degrees * (math.Pi / 180)
}

// LatLng is a single boundary vertex.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Boundary is the membership shape of a segment: a circle for spots (and as
// fallback), or a polygon parsed from the segment's serialized bounds.
type Boundary struct {
	CenterLat float64
	CenterLng float64
	RadiusM   float64
	Polygon   []LatLng
}

// BoundaryOf derives the authoritative membership shape for a segment.
// Spots are always circles. Routes and zones use their stored polygon when it
// has at least 3 vertices; otherwise they degrade to a 1 km circle around the
// center, which matches the historical behavior for segments created before
// polygon bounds were captured.
func BoundaryOf(seg *Segment) Boundary {
	b := Boundary{CenterLat: seg.CenterLat, CenterLng: seg.CenterLng}

	if seg.Kind == KindSpot {
		b.RadiusM = defaultSpotRadiusM
		if seg.Radius != nil && *seg.Radius > 0 {
			b.RadiusM = *seg.Radius
		}
		return b
	}

	if seg.Bounds != nil {
		var poly []LatLng
		if err := json.Unmarshal([]byte(*seg.Bounds), &poly); err == nil && len(poly) >= 3 {
			b.Polygon = poly
			return b
		}
	}

	b.RadiusM = fallbackRadiusM
	return b
}

// IsWithin reports whether a GPS point belongs to the segment. The boundary
// test is inclusive: a point exactly on the circle edge counts as inside.
func IsWithin(lat, lng float64, seg *Segment) bool {
	b := BoundaryOf(seg)

	if len(b.Polygon) >= 3 {
		return pointInPolygon(lat, lng, b.Polygon)
	}

	return DistanceKm(lat, lng, b.CenterLat, b.CenterLng)*1000 <= b.RadiusM
}

// pointInPolygon runs a standard ray cast along the longitude axis. Vertices
// on the boundary may land on either side depending on floating-point
// rounding; segment polygons are large enough that this does not matter.
func pointInPolygon(lat, lng float64, poly []LatLng) bool {
	inside := false
	j := len(poly) - 1
	for i := 0; i < len(poly); i++ {
		pi, pj := poly[i], poly[j]
		if (pi.Lat > lat) != (pj.Lat > lat) &&
			lng < (pj.Lng-pi.Lng)*(lat-pi.Lat)/(pj.Lat-pi.Lat)+pi.Lng {
			inside = !inside
		}
		j = i
	}
	return inside
}
