// Package services provides domain services that orchestrate business
// operations across multiple aggregates in the dispatch system.
//
// The package includes:
//   - GeoClusterer: groups pending orders by administrative area and grid cell
//   - ClusterAssigner: greedily assigns clusters to vehicles under capacity
//   - RouteBuilder: turns one vehicle's assigned orders into an optimized Route
//   - InsertionEvaluator: finds the cheapest stop position for a new order
//
// Domain services coordinate between aggregates, implementing business logic
// that spans multiple bounded contexts following Domain-Driven Design
// principles.
package services
