package overpass

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/pricing-cli/internal/model"
	"github.com/sells-group/pricing-cli/internal/poi"
)

func TestQuery(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		require.NoError(t, r.ParseForm())
		ql := r.PostForm.Get("data")
		assert.Contains(t, ql, `node["office"="coworking"]`)
		assert.Contains(t, ql, "around:10000,")
		w.Write([]byte(`{"elements":[
			{"lat":40.71,"lon":-74.0,"tags":{"name":"WeWork Midtown"}},
			{"lat":40.72,"lon":-74.01,"tags":{}}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	points, err := c.Query(context.Background(), model.Coordinates{Latitude: 40.7, Longitude: -74}, 10000)
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, poi.Point{Name: "WeWork Midtown", Latitude: 40.71, Longitude: -74.0}, points[0])
	// Unnamed nodes pass through unchanged.
	assert.Empty(t, points[1].Name)
}

func TestQuery_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusGatewayTimeout)
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Query(context.Background(), model.Coordinates{}, 10000)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unexpected status 504")
}

func TestQuery_MalformedBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "not json")
	}))
	defer srv.Close()

	c := NewClient(WithBaseURL(srv.URL))
	_, err := c.Query(context.Background(), model.Coordinates{}, 10000)
	require.Error(t, err)
}

func TestQuery_SatisfiesQueryFunc(t *testing.T) {
	var _ poi.QueryFunc = NewClient().Query
}
