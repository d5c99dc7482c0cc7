// Package adjustment defines the request and result types for real-time
// route adjustments. The Type enum is closed: handlers match every variant
// explicitly and unknown wire values are rejected at parse time.
package adjustment
