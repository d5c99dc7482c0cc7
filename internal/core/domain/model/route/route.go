package route

import (
	"errors"
	"fmt"
	"time"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/order"
	"dispatch/internal/core/domain/model/vehicle"
	"dispatch/internal/pkg/errs"
)

// ErrRouteIsNotConstructed is returned when a Route instance was not created
// through the NewRoute or RestoreRoute factory methods.
var ErrRouteIsNotConstructed = errors.New("Route must be created via NewRoute constructor")

// ErrRouteIsFinalized is returned when attempting to mutate a finalized route.
var ErrRouteIsFinalized = errors.New("route is finalized and read-only")

// ErrStopAlreadyOnRoute signals an idempotent insertion: the order already
// has a stop on this route, so re-applying the adjustment must not duplicate it.
var ErrStopAlreadyOnRoute = errors.New("order already has a stop on this route")

// Score bounds and penalties for route quality.
const (
	ScoreMax              = 100
	ScoreFallback         = 50
	scoreLongDurationOver = 8 * time.Hour
	scoreLongDistanceKm   = 200.0
	scorePenalty          = 10
	scoreUrgentBonus      = 2
	scoreUrgentBonusCap   = 10
)

// Route is the aggregate root for one driver's optimized delivery sequence
// on a given date.
//
// Invariants maintained by every mutation:
//   - Stop sequence numbers are exactly {1..N}, contiguous, no duplicates
//   - The cumulative load at every prefix of the stop list fits within the
//     vehicle capacity snapshot taken at build time
//   - An order appears at most once on the route
//   - Finalized routes reject all mutation
type Route struct {
	id         kernel.UUID
	vehicleID  kernel.UUID
	date       time.Time
	stops      []Stop
	capacity   vehicle.Capacity
	distanceKm float64
	duration   time.Duration
	score      int
	warnings   []string
	status     Status

	isConstructed bool
}

// NewRoute creates a validated Route in Planned status. The stops must
// already be in visiting order; sequence numbers are assigned here. The
// capacity snapshot is the vehicle's full capacity at build time and is the
// bound every later insertion is checked against.
func NewRoute(
	id kernel.UUID,
	vehicleID kernel.UUID,
	date time.Time,
	stops []Stop,
	capacity vehicle.Capacity,
	distanceKm float64,
	duration time.Duration,
	score int,
	warnings []string,
) (*Route, error) {
	if err := id.Validate(); err != nil {
		return nil, err
	}
	if err := vehicleID.Validate(); err != nil {
		return nil, err
	}
	if date.IsZero() {
		return nil, errs.NewValueIsRequiredError("route date")
	}
	if err := capacity.Validate(); err != nil {
		return nil, err
	}
	if distanceKm < 0 {
		return nil, errs.NewValueIsInvalidError("route distance")
	}

	r := &Route{
		id:            id,
		vehicleID:     vehicleID,
		date:          date,
		capacity:      capacity,
		distanceKm:    distanceKm,
		duration:      duration,
		score:         clampScore(score),
		warnings:      append([]string(nil), warnings...),
		status:        Planned,
		isConstructed: true,
	}

	r.stops = make([]Stop, len(stops))
	copy(r.stops, stops)
	for i := range r.stops {
		r.stops[i].sequence = i + 1
	}

	if err := r.checkCapacity(); err != nil {
		return nil, err
	}

	return r, nil
}

// RestoreRoute reconstructs a Route from persistence. Stops must carry their
// persisted sequence numbers; they are validated, not reassigned.
func RestoreRoute(
	id kernel.UUID,
	vehicleID kernel.UUID,
	date time.Time,
	stops []Stop,
	capacity vehicle.Capacity,
	distanceKm float64,
	duration time.Duration,
	score int,
	warnings []string,
	status Status,
) (*Route, error) {
	r, err := NewRoute(id, vehicleID, date, stops, capacity, distanceKm, duration, score, warnings)
	if err != nil {
		return nil, err
	}

	// Restore persisted sequences and verify contiguity.
	for i, s := range stops {
		r.stops[i].sequence = s.sequence
	}
	if err := r.checkSequences(); err != nil {
		return nil, err
	}

	r.status = status
	return r, nil
}

// Validate ensures the Route was properly constructed.
func (r *Route) Validate() error {
	if r == nil || !r.isConstructed {
		return ErrRouteIsNotConstructed
	}
	return nil
}

// ID returns the route's unique identifier.
func (r *Route) ID() kernel.UUID {
	return r.id
}

// VehicleID returns the vehicle executing the route.
func (r *Route) VehicleID() kernel.UUID {
	return r.vehicleID
}

// Date returns the delivery date.
func (r *Route) Date() time.Time {
	return r.date
}

// Stops returns a copy of the stops in sequence order.
func (r *Route) Stops() []Stop {
	out := make([]Stop, len(r.stops))
	copy(out, r.stops)
	return out
}

// Capacity returns the vehicle capacity snapshot taken at build time.
func (r *Route) Capacity() vehicle.Capacity {
	return r.capacity
}

// DistanceKm returns the total planned driving distance.
func (r *Route) DistanceKm() float64 {
	return r.distanceKm
}

// Duration returns the total planned driving plus service time.
func (r *Route) Duration() time.Duration {
	return r.duration
}

// Score returns the optimization quality score in [0,100].
func (r *Route) Score() int {
	return r.score
}

// Warnings returns a copy of accumulated warnings.
func (r *Route) Warnings() []string {
	return append([]string(nil), r.warnings...)
}

// Status returns the lifecycle state.
func (r *Route) Status() Status {
	return r.status
}

// TotalLoad returns the combined weight and per-category counts of all stops.
func (r *Route) TotalLoad() vehicle.Load {
	load := vehicle.Load{Units: make(map[order.CylinderCategory]int)}
	for _, s := range r.stops {
		for c, n := range s.demand {
			load.Units[c] += n
			load.WeightKg += c.LadenWeightKg() * float64(n)
		}
	}
	return load
}

// ContainsOrder reports whether the order already has a stop on this route.
func (r *Route) ContainsOrder(orderID kernel.UUID) bool {
	for _, s := range r.stops {
		if s.orderID.IsEqual(orderID) {
			return true
		}
	}
	return false
}

// StopForOrder returns the stop serving the order, if any.
func (r *Route) StopForOrder(orderID kernel.UUID) (Stop, bool) {
	for _, s := range r.stops {
		if s.orderID.IsEqual(orderID) {
			return s, true
		}
	}
	return Stop{}, false
}

// CanAccept reports whether an additional demand still fits within the
// capacity snapshot given the current total load.
func (r *Route) CanAccept(demand order.Demand) bool {
	load := r.TotalLoad()
	if load.WeightKg+demand.WeightKg() > r.capacity.MaxWeightKg() {
		return false
	}
	maxUnits := r.capacity.MaxUnits()
	for c, n := range demand {
		if load.Units[c]+n > maxUnits[c] {
			return false
		}
	}
	return true
}

// InsertStopAt inserts a stop so that it becomes sequence number position
// (1-based, up to N+1 for appending). Subsequent stops shift by one. The
// insertion is rejected if the order is already on the route
// (ErrStopAlreadyOnRoute) or the added demand no longer fits.
func (r *Route) InsertStopAt(position int, stop Stop) error {
	if err := r.mutable(); err != nil {
		return err
	}
	if position < 1 || position > len(r.stops)+1 {
		return errs.NewValueIsOutOfRangeError("stop position", position, 1, len(r.stops)+1)
	}
	if r.ContainsOrder(stop.orderID) {
		return ErrStopAlreadyOnRoute
	}
	if !r.CanAccept(stop.demand) {
		return errs.NewValueIsInvalidErrorWithCause("route capacity",
			fmt.Errorf("inserting order %s exceeds vehicle capacity", stop.orderID))
	}

	idx := position - 1
	r.stops = append(r.stops, Stop{})
	copy(r.stops[idx+1:], r.stops[idx:])
	r.stops[idx] = stop
	for i := range r.stops {
		r.stops[i].sequence = i + 1
	}

	return nil
}

// RemoveStop removes the stop serving the order and closes the sequence gap.
func (r *Route) RemoveStop(orderID kernel.UUID) (Stop, error) {
	if err := r.mutable(); err != nil {
		return Stop{}, err
	}

	for i, s := range r.stops {
		if s.orderID.IsEqual(orderID) {
			r.stops = append(r.stops[:i], r.stops[i+1:]...)
			for j := range r.stops {
				r.stops[j].sequence = j + 1
			}
			return s, nil
		}
	}

	return Stop{}, errs.NewObjectNotFoundError("orderId", orderID.String())
}

// CompleteStop records the actual arrival for the order's stop and marks it done.
func (r *Route) CompleteStop(orderID kernel.UUID, arrivedAt time.Time) error {
	if err := r.mutable(); err != nil {
		return err
	}

	for i := range r.stops {
		if r.stops[i].orderID.IsEqual(orderID) {
			r.stops[i].completed = true
			r.stops[i].actualArrival = &arrivedAt
			return nil
		}
	}

	return errs.NewObjectNotFoundError("orderId", orderID.String())
}

// UpdateTiming replaces per-stop ETAs (in sequence order) and route totals
// after a re-estimation. The ETA slice length must match the stop count.
func (r *Route) UpdateTiming(etas []time.Time, distanceKm float64, duration time.Duration) error {
	if err := r.mutable(); err != nil {
		return err
	}
	if len(etas) != len(r.stops) {
		return errs.NewValueIsInvalidErrorWithCause("etas",
			fmt.Errorf("got %d ETAs for %d stops", len(etas), len(r.stops)))
	}
	if distanceKm < 0 {
		return errs.NewValueIsInvalidError("route distance")
	}

	for i := range r.stops {
		r.stops[i].eta = etas[i]
	}
	r.distanceKm = distanceKm
	r.duration = duration
	return nil
}

// Reorder rearranges the stops so the stop currently at index perm[i]
// becomes the (i+1)-th visit. perm must be a permutation of 0..N-1. The
// stop set is unchanged, so capacity invariants cannot break.
func (r *Route) Reorder(perm []int) error {
	if err := r.mutable(); err != nil {
		return err
	}
	if len(perm) != len(r.stops) {
		return errs.NewValueIsInvalidErrorWithCause("stop permutation",
			fmt.Errorf("got %d indices for %d stops", len(perm), len(r.stops)))
	}

	reordered := make([]Stop, 0, len(r.stops))
	seen := make(map[int]bool, len(perm))
	for _, idx := range perm {
		if idx < 0 || idx >= len(r.stops) || seen[idx] {
			return errs.NewValueIsInvalidErrorWithCause("stop permutation",
				fmt.Errorf("indices must be a permutation of 0..%d", len(r.stops)-1))
		}
		seen[idx] = true
		reordered = append(reordered, r.stops[idx])
	}

	r.stops = reordered
	for i := range r.stops {
		r.stops[i].sequence = i + 1
	}
	return nil
}

// SetScore replaces the score, clamped to [0,100].
func (r *Route) SetScore(score int) error {
	if err := r.mutable(); err != nil {
		return err
	}
	r.score = clampScore(score)
	return nil
}

// AddWarning appends an operational warning to the route.
func (r *Route) AddWarning(warning string) error {
	if err := r.mutable(); err != nil {
		return err
	}
	r.warnings = append(r.warnings, warning)
	return nil
}

// Activate transitions the route from Planned to Active.
func (r *Route) Activate() error {
	newStatus, err := r.status.Activate()
	if err != nil {
		return err
	}
	r.status = newStatus
	return nil
}

// Finalize makes the route a read-only historical record.
func (r *Route) Finalize() error {
	newStatus, err := r.status.Finalize()
	if err != nil {
		return err
	}
	r.status = newStatus
	return nil
}

func (r *Route) mutable() error {
	if r.status == Finalized {
		return ErrRouteIsFinalized
	}
	return nil
}

// checkCapacity verifies that the cumulative load at every prefix of the
// stop list stays within the capacity snapshot. All cylinders are loaded at
// the depot, so the first prefix violation is also the largest.
func (r *Route) checkCapacity() error {
	weight := 0.0
	units := make(map[order.CylinderCategory]int)
	maxUnits := r.capacity.MaxUnits()

	for _, s := range r.stops {
		for c, n := range s.demand {
			units[c] += n
			weight += c.LadenWeightKg() * float64(n)
			if units[c] > maxUnits[c] {
				return errs.NewValueIsInvalidErrorWithCause("route capacity",
					fmt.Errorf("category %s exceeds capacity at stop %d", c, s.sequence))
			}
		}
		if weight > r.capacity.MaxWeightKg() {
			return errs.NewValueIsInvalidErrorWithCause("route capacity",
				fmt.Errorf("cumulative weight %.1fkg exceeds capacity at stop %d", weight, s.sequence))
		}
	}
	return nil
}

// checkSequences verifies stops carry exactly the sequence set {1..N}.
func (r *Route) checkSequences() error {
	seen := make(map[int]bool, len(r.stops))
	for _, s := range r.stops {
		if s.sequence < 1 || s.sequence > len(r.stops) || seen[s.sequence] {
			return errs.NewValueIsInvalidErrorWithCause("stop sequence",
				fmt.Errorf("sequence numbers must be exactly 1..%d", len(r.stops)))
		}
		seen[s.sequence] = true
	}
	return nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > ScoreMax {
		return ScoreMax
	}
	return score
}

// ComputeScore derives the quality score for a built route: start at 100,
// penalize routes longer than 8 hours or 200 km, reward served urgent
// orders (+2 each, capped at +10), clamp to [0,100].
func ComputeScore(duration time.Duration, distanceKm float64, urgentServed int) int {
	score := ScoreMax
	if duration > scoreLongDurationOver {
		score -= scorePenalty
	}
	if distanceKm > scoreLongDistanceKm {
		score -= scorePenalty
	}
	bonus := urgentServed * scoreUrgentBonus
	if bonus > scoreUrgentBonusCap {
		bonus = scoreUrgentBonusCap
	}
	return clampScore(score + bonus)
}
