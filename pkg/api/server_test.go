package api

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeStats struct {
	rooms   int
	clients int
}

func (s *fakeStats) RoomCount() int   { return s.rooms }
func (s *fakeStats) ClientCount() int { return s.clients }

func TestRouter(t *testing.T) {
	wsHit := false
	router := NewRouter(&fakeStats{rooms: 3, clients: 5}, func(w http.ResponseWriter, r *http.Request) {
		wsHit = true
	})
	ts := httptest.NewServer(router)
	defer ts.Close()

	resp, err := http.Get(ts.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = http.Get(ts.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)

	health := HealthResponse{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.True(t, health.OK)
	assert.Equal(t, 3, health.Rooms)
	assert.Equal(t, 5, health.Clients)
	assert.Positive(t, health.TS)

	resp, err = http.Get(ts.URL + "/ws")
	require.NoError(t, err)
	resp.Body.Close()
	assert.True(t, wsHit)
}
