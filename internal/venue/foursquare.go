package venue

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultBaseURL = "https://api.foursquare.com/v2"

	// apiVersion is the Foursquare versioning date parameter.
	apiVersion = "20160108"

	requestTimeout = 30 * time.Second
)

// FoursquareClient implements Lookup against the Foursquare venues/search API.
type FoursquareClient struct {
	clientID     string
	clientSecret string
	near         string
	limit        int
	baseURL      string
	httpClient   *http.Client
}

var _ Lookup = (*FoursquareClient)(nil)

// FoursquareOption configures the client.
type FoursquareOption func(*FoursquareClient)

// WithBaseURL overrides the API endpoint, used by tests.
func WithBaseURL(u string) FoursquareOption {
	return func(c *FoursquareClient) {
		c.baseURL = u
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) FoursquareOption {
	return func(c *FoursquareClient) {
		c.httpClient = hc
	}
}

// NewFoursquareClient creates a venue search client. near is the fixed
// reference location every search is biased toward; limit caps the number of
// candidates returned.
func NewFoursquareClient(clientID, clientSecret, near string, limit int, opts ...FoursquareOption) *FoursquareClient {
	c := &FoursquareClient{
		clientID:     clientID,
		clientSecret: clientSecret,
		near:         near,
		limit:        limit,
		baseURL:      defaultBaseURL,
		httpClient:   &http.Client{Timeout: requestTimeout},
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

// searchResponse is the subset of the venues/search payload we care about.
type searchResponse struct {
	Meta struct {
		Code        int    `json:"code"`
		ErrorType   string `json:"errorType"`
		ErrorDetail string `json:"errorDetail"`
	} `json:"meta"`
	Response struct {
		Venues []struct {
			ID       string `json:"id"`
			Name     string `json:"name"`
			Location struct {
				Address string `json:"address"`
			} `json:"location"`
		} `json:"venues"`
	} `json:"response"`
}

// Search queries venues/search near the configured location.
func (c *FoursquareClient) Search(ctx context.Context, query string) ([]Venue, error) {
	params := url.Values{}
	params.Set("client_id", c.clientID)
	params.Set("client_secret", c.clientSecret)
	params.Set("v", apiVersion)
	params.Set("near", c.near)
	params.Set("limit", fmt.Sprintf("%d", c.limit))
	params.Set("query", query)

	endpoint := c.baseURL + "/venues/search?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build venue search request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("venue search request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	var body searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode venue search response: %w", err)
	}

	if resp.StatusCode != http.StatusOK || (body.Meta.Code != 0 && body.Meta.Code != http.StatusOK) {
		return nil, fmt.Errorf("venue search returned %d: %s %s",
			resp.StatusCode, body.Meta.ErrorType, body.Meta.ErrorDetail)
	}

	venues := make([]Venue, 0, len(body.Response.Venues))
	for _, v := range body.Response.Venues {
		venues = append(venues, Venue{
			ID:      v.ID,
			Name:    v.Name,
			Address: v.Location.Address,
		})
	}

	return venues, nil
}
