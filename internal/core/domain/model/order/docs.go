// Package order contains the Order aggregate: a gas-cylinder delivery
// request with per-category demand, a destination (possibly a pseudo-point
// when geocoding was unavailable), an urgency flag, a delivery time window,
// and the Pending/Assigned/Completed lifecycle that keeps each order linked
// to at most one active route.
package order
