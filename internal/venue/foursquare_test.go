package venue_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lunchybot/lunchy/internal/venue"
)

const searchFixture = `{
  "meta": {"code": 200},
  "response": {
    "venues": [
      {"id": "v1", "name": "Joe's Pizza", "location": {"address": "7 Carmine St"}},
      {"id": "v2", "name": "Joe's Shanghai", "location": {"address": "9 Pell St"}}
    ]
  }
}`

func TestFoursquareClient_Search(t *testing.T) {
	var gotQuery map[string]string

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/venues/search", r.URL.Path)
		q := r.URL.Query()
		gotQuery = map[string]string{
			"client_id":     q.Get("client_id"),
			"client_secret": q.Get("client_secret"),
			"near":          q.Get("near"),
			"limit":         q.Get("limit"),
			"query":         q.Get("query"),
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(searchFixture))
	}))
	defer srv.Close()

	client := venue.NewFoursquareClient("id", "secret", "440 Lafayette St. 10003", 5,
		venue.WithBaseURL(srv.URL))

	venues, err := client.Search(context.Background(), "joe's")
	require.NoError(t, err)

	assert.Equal(t, map[string]string{
		"client_id":     "id",
		"client_secret": "secret",
		"near":          "440 Lafayette St. 10003",
		"limit":         "5",
		"query":         "joe's",
	}, gotQuery)

	require.Len(t, venues, 2)
	assert.Equal(t, venue.Venue{ID: "v1", Name: "Joe's Pizza", Address: "7 Carmine St"}, venues[0])
	assert.Equal(t, venue.Venue{ID: "v2", Name: "Joe's Shanghai", Address: "9 Pell St"}, venues[1])
}

func TestFoursquareClient_EmptyResultIsNotAnError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"meta": {"code": 200}, "response": {"venues": []}}`))
	}))
	defer srv.Close()

	client := venue.NewFoursquareClient("id", "secret", "near", 5,
		venue.WithBaseURL(srv.URL))

	venues, err := client.Search(context.Background(), "nowhere")
	require.NoError(t, err)
	assert.Empty(t, venues)
}

func TestFoursquareClient_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"meta": {"code": 401, "errorType": "invalid_auth", "errorDetail": "bad credentials"}}`))
	}))
	defer srv.Close()

	client := venue.NewFoursquareClient("id", "secret", "near", 5,
		venue.WithBaseURL(srv.URL))

	_, err := client.Search(context.Background(), "joe's")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid_auth")
}

func TestFoursquareClient_ProviderUnreachable(t *testing.T) {
	client := venue.NewFoursquareClient("id", "secret", "near", 5,
		venue.WithBaseURL("http://127.0.0.1:1"))

	_, err := client.Search(context.Background(), "joe's")
	require.Error(t, err)
}
