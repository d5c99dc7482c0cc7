package kernel

import (
	"fmt"
	"hash/fnv"
	"math"

	"dispatch/internal/pkg/errs"
)

// Geographic bounds for valid coordinates.
const (
	LatitudeMin  = -90.0
	LatitudeMax  = 90.0
	LongitudeMin = -180.0
	LongitudeMax = 180.0
)

// EarthRadiusKm is the mean Earth radius used for great-circle distance.
const EarthRadiusKm = 6371.0

// KmPerDegree approximates how many kilometers one degree of latitude spans.
// Used to convert grid-cell edge lengths between kilometers and degrees.
const KmPerDegree = 111.0

// Pseudo-coordinate region. When an order carries no geocoded location, a
// deterministic placeholder inside this box is derived from its address so
// that clustering and routing still have something to work with. This is a
// documented placeholder, not a correctness guarantee.
const (
	pseudoBaseLat = 3.0200   // service region south-west corner
	pseudoBaseLng = 101.5500
	pseudoSpanDeg = 0.2400 // ~27 km box
)

// ErrGeoPointIsNotConstructed is returned when attempting to use an improperly
// initialized GeoPoint. Points must be created via NewGeoPoint or PseudoPoint.
var ErrGeoPointIsNotConstructed = errs.NewValueIsRequiredError(
	"geo point must be created via NewGeoPoint or PseudoPoint constructors")

// GeoPoint is an immutable WGS84 coordinate value object. The zero value is
// invalid and fails validation - use the constructors.
type GeoPoint struct {
	lat    float64
	lng    float64
	pseudo bool
	guard  ConstructorGuard
}

// NewGeoPoint creates a GeoPoint with validated latitude and longitude.
func NewGeoPoint(lat, lng float64) (GeoPoint, error) {
	if lat < LatitudeMin || lat > LatitudeMax {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("latitude", lat, LatitudeMin, LatitudeMax)
	}
	if lng < LongitudeMin || lng > LongitudeMax {
		return GeoPoint{}, errs.NewValueIsOutOfRangeError("longitude", lng, LongitudeMin, LongitudeMax)
	}

	return GeoPoint{
		lat:   lat,
		lng:   lng,
		guard: NewConstructorGuard(),
	}, nil
}

// PseudoPoint derives a deterministic placeholder coordinate from an address.
// The same address always maps to the same point inside the service-region
// box, so clustering stays stable across runs. IsPseudo reports true on the
// result so callers can surface the degraded accuracy as a warning.
func PseudoPoint(area, address string) GeoPoint {
	h := fnv.New64a()
	_, _ = h.Write([]byte(area))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(address))
	sum := h.Sum64()

	// Split the hash into two independent offsets inside the region box.
	latFrac := float64(sum&0xFFFFFFFF) / float64(math.MaxUint32)
	lngFrac := float64(sum>>32) / float64(math.MaxUint32)

	return GeoPoint{
		lat:    pseudoBaseLat + latFrac*pseudoSpanDeg,
		lng:    pseudoBaseLng + lngFrac*pseudoSpanDeg,
		pseudo: true,
		guard:  NewConstructorGuard(),
	}
}

// RestoreGeoPoint reconstructs a point from persistence, preserving the
// pseudo flag. Used by repositories only.
func RestoreGeoPoint(lat, lng float64, pseudo bool) (GeoPoint, error) {
	p, err := NewGeoPoint(lat, lng)
	if err != nil {
		return GeoPoint{}, err
	}
	p.pseudo = pseudo
	return p, nil
}

// Lat returns the latitude in degrees.
func (p GeoPoint) Lat() float64 {
	return p.lat
}

// Lng returns the longitude in degrees.
func (p GeoPoint) Lng() float64 {
	return p.lng
}

// IsPseudo reports whether this point is a hash-derived placeholder rather
// than a real geocoded coordinate.
func (p GeoPoint) IsPseudo() bool {
	return p.pseudo
}

// IsEqual compares two points by coordinates.
func (p GeoPoint) IsEqual(other GeoPoint) bool {
	return p.lat == other.lat && p.lng == other.lng
}

// DistanceKm returns the great-circle (haversine) distance to other in kilometers.
func (p GeoPoint) DistanceKm(other GeoPoint) float64 {
	lat1 := p.lat * math.Pi / 180
	lat2 := other.lat * math.Pi / 180
	dLat := (other.lat - p.lat) * math.Pi / 180
	dLng := (other.lng - p.lng) * math.Pi / 180

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(lat1)*math.Cos(lat2)*math.Sin(dLng/2)*math.Sin(dLng/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusKm * c
}

// String returns a "lat,lng" representation suitable for cache keys and logs.
func (p GeoPoint) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.lat, p.lng)
}

// Validate ensures the point was built via a constructor.
func (p GeoPoint) Validate() error {
	return p.guard.Validate(ErrGeoPointIsNotConstructed)
}
