// Package cluster defines the ephemeral order grouping produced by
// geographic clustering. Clusters exist only for the duration of one
// optimization run and are never persisted.
package cluster
