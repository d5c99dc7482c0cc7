// Package kernel provides shared value objects for the dispatch domain model.
//
// The package contains the building blocks used by every aggregate:
//   - UUID: validated identifier wrapping github.com/google/uuid
//   - GeoPoint: immutable WGS84 coordinate with haversine distance
//   - ConstructorGuard: defensive pattern enforcing constructor usage
//
// PseudoPoint deserves a note: orders sometimes arrive without geocoded
// coordinates. Rather than failing the whole optimization batch, a
// deterministic placeholder inside the service region is derived from the
// address hash. Callers can detect these via GeoPoint.IsPseudo and surface
// warnings; the substitution strategy is pluggable at the application layer.
package kernel
