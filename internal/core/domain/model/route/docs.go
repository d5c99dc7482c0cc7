// Package route implements the Route aggregate root, representing one
// driver's optimized delivery sequence for a single day.
//
// A Route owns its Stops and is the only place stop sequence numbers are
// assigned or changed. Every mutation preserves two invariants: sequence
// numbers are exactly the contiguous set {1..N}, and the cumulative load at
// every prefix of the stop list fits within the vehicle capacity snapshot
// captured when the route was built.
//
// Lifecycle: Planned -> Active -> Finalized. Finalized routes are historical
// records consumed by analytics and reject all mutation.
package route
