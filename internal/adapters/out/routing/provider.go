package routing

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"dispatch/internal/core/ports"
)

// HTTPProvider talks to the external route-optimization service over HTTP
// JSON. It does classification only; resilience is the gateway's job.
type HTTPProvider struct {
	baseURL string
	apiKey  string
	locale  string
	client  *http.Client
}

// NewHTTPProvider creates a provider client. The http.Client carries no
// timeout of its own; the gateway bounds every call through the context.
func NewHTTPProvider(baseURL, apiKey, locale string) *HTTPProvider {
	return &HTTPProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		locale:  locale,
		client:  &http.Client{},
	}
}

type coordinatePayload struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

type planRequestPayload struct {
	Origin      coordinatePayload   `json:"origin"`
	Destination coordinatePayload   `json:"destination"`
	Waypoints   []coordinatePayload `json:"waypoints"`
	Traffic     bool                `json:"traffic"`
	KeepOrder   bool                `json:"keep_order,omitempty"`
	Locale      string              `json:"locale,omitempty"`
}

type legPayload struct {
	DistanceMeters  int `json:"distance_meters"`
	DurationSeconds int `json:"duration_seconds"`
}

type planResponsePayload struct {
	DistanceMeters  int          `json:"distance_meters"`
	DurationSeconds int          `json:"duration_seconds"`
	WaypointOrder   []int        `json:"waypoint_order,omitempty"`
	Legs            []legPayload `json:"legs"`
	Polyline        string       `json:"polyline,omitempty"`
}

// Plan performs one provider call. HTTP status classification: 429 is rate
// limited, 401/403 are auth, everything else unexpected is transient.
func (p *HTTPProvider) Plan(ctx context.Context, req ports.PlanRequest) (ports.Plan, error) {
	payload := planRequestPayload{
		Origin:      coordinatePayload{Lat: req.Origin.Lat(), Lng: req.Origin.Lng()},
		Destination: coordinatePayload{Lat: req.Destination.Lat(), Lng: req.Destination.Lng()},
		Waypoints:   make([]coordinatePayload, 0, len(req.Waypoints)),
		Traffic:     req.TrafficAware,
		KeepOrder:   req.KeepOrder,
		Locale:      p.locale,
	}
	for _, w := range req.Waypoints {
		payload.Waypoints = append(payload.Waypoints, coordinatePayload{Lat: w.Lat(), Lng: w.Lng()})
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindTransient,
			fmt.Errorf("encoding plan request: %w", err))
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.baseURL+"/v1/routes/plan", bytes.NewReader(body))
	if err != nil {
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindTransient, err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(httpReq)
	if err != nil {
		// Network errors and context timeouts are transient by nature.
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindTransient, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusTooManyRequests:
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindRateLimited,
			fmt.Errorf("provider returned %d", resp.StatusCode))
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindAuth,
			fmt.Errorf("provider returned %d", resp.StatusCode))
	default:
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindTransient,
			fmt.Errorf("provider returned %d", resp.StatusCode))
	}

	var decoded planResponsePayload
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		return ports.Plan{}, ports.NewProviderError(ports.ErrorKindTransient,
			fmt.Errorf("decoding plan response: %w", err))
	}

	plan := ports.Plan{
		DistanceMeters: decoded.DistanceMeters,
		Duration:       time.Duration(decoded.DurationSeconds) * time.Second,
		WaypointOrder:  decoded.WaypointOrder,
		Legs:           make([]ports.Leg, 0, len(decoded.Legs)),
		Polyline:       decoded.Polyline,
	}
	for _, leg := range decoded.Legs {
		plan.Legs = append(plan.Legs, ports.Leg{
			DistanceMeters: leg.DistanceMeters,
			Duration:       time.Duration(leg.DurationSeconds) * time.Second,
		})
	}

	return plan, nil
}
