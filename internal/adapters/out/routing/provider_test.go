package routing_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dispatch/internal/adapters/out/routing"
	"dispatch/internal/core/ports"
)

func TestHTTPProviderPlan(t *testing.T) {
	ctx := context.Background()

	t.Run("decodes a successful response", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

			var body map[string]any
			require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
			assert.Len(t, body["waypoints"], 2)

			_ = json.NewEncoder(w).Encode(map[string]any{
				"distance_meters":  25000,
				"duration_seconds": 2700,
				"waypoint_order":   []int{1, 0},
				"legs": []map[string]int{
					{"distance_meters": 10000, "duration_seconds": 900},
					{"distance_meters": 10000, "duration_seconds": 900},
					{"distance_meters": 5000, "duration_seconds": 900},
				},
				"polyline": "abc123",
			})
		}))
		defer srv.Close()

		provider := routing.NewHTTPProvider(srv.URL, "test-key", "en")
		plan, err := provider.Plan(ctx, planRequest(t))

		require.NoError(t, err)
		assert.Equal(t, 25000, plan.DistanceMeters)
		assert.Equal(t, []int{1, 0}, plan.WaypointOrder)
		assert.Len(t, plan.Legs, 3)
		assert.False(t, plan.Estimated)
	})

	statusTests := []struct {
		name      string
		status    int
		retryable bool
	}{
		{"429 is rate limited and retry-worthy", http.StatusTooManyRequests, true},
		{"500 is transient and retry-worthy", http.StatusInternalServerError, true},
		{"503 is transient and retry-worthy", http.StatusServiceUnavailable, true},
		{"401 is auth and not retry-worthy", http.StatusUnauthorized, false},
		{"403 is auth and not retry-worthy", http.StatusForbidden, false},
	}

	for _, tt := range statusTests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
			}))
			defer srv.Close()

			provider := routing.NewHTTPProvider(srv.URL, "test-key", "en")
			_, err := provider.Plan(ctx, planRequest(t))

			require.Error(t, err)
			assert.Equal(t, tt.retryable, ports.IsRetryWorthy(err))
		})
	}
}
