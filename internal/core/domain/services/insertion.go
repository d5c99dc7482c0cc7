package services

import (
	"math"

	"dispatch/internal/core/domain/model/kernel"
	"dispatch/internal/core/domain/model/route"
)

// insertionToleranceKm treats detour costs within 10 meters as equal so the
// earliest-position tie-break is stable against floating-point noise in the
// great-circle math.
const insertionToleranceKm = 0.01

// InsertionEvaluator finds the cheapest position for a new stop on an
// existing route. Detour cost for inserting between prev and next is
//
//	d(prev, new) + d(new, next) - d(prev, next)
//
// where prev is the depot for position 1. Appending after the last stop
// costs the single leg d(last, new). Ties go to the earliest position.
//
// Pairwise distances are memoized for the lifetime of the evaluator, so one
// evaluator can score many candidate routes without recomputing legs.
type InsertionEvaluator struct {
	distances map[pairKey]float64
}

type pairKey struct {
	from string
	to   string
}

// NewInsertionEvaluator creates an evaluator with an empty distance cache.
func NewInsertionEvaluator() *InsertionEvaluator {
	return &InsertionEvaluator{distances: make(map[pairKey]float64)}
}

// BestInsertion returns the cheapest 1-based position for a stop at
// location on the route, and the detour cost in kilometers. The depot is
// the route's starting point. Works for empty routes too: position 1 with
// the depot leg as cost.
func (e *InsertionEvaluator) BestInsertion(
	r *route.Route,
	depot kernel.GeoPoint,
	location kernel.GeoPoint,
) (int, float64) {
	stops := r.Stops()

	bestPosition := 1
	bestCost := math.MaxFloat64

	for position := 1; position <= len(stops)+1; position++ {
		prev := depot
		if position > 1 {
			prev = stops[position-2].Location()
		}

		var cost float64
		if position == len(stops)+1 {
			cost = e.distance(prev, location)
		} else {
			next := stops[position-1].Location()
			cost = e.distance(prev, location) + e.distance(location, next) - e.distance(prev, next)
		}

		if cost < bestCost-insertionToleranceKm {
			bestCost = cost
			bestPosition = position
		}
	}

	return bestPosition, bestCost
}

func (e *InsertionEvaluator) distance(from, to kernel.GeoPoint) float64 {
	key := pairKey{from: from.String(), to: to.String()}
	if d, ok := e.distances[key]; ok {
		return d
	}
	d := from.DistanceKm(to)
	e.distances[key] = d
	return d
}
