package client

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractIDFromURL(t *testing.T) {
	tests := []struct {
		url      string
		expected string
	}{
		{"https://www.vlr.gg/378822/sentinels-vs-loud", "378822"},
		{"/378822/sentinels-vs-loud", "378822"},
		{"https://www.vlr.gg/team/2/sentinels", "2"},
		{"/team/624/loud", "624"},
		{"https://www.vlr.gg/events", ""},
		{"", ""},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.expected, ExtractIDFromURL(tt.url), "url %q", tt.url)
	}
}

func TestMatchDetail_StartTime(t *testing.T) {
	m := &MatchDetail{ID: "1", UTCTimestamp: "2025-07-01 18:30:00"}
	ts, err := m.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC), ts)

	m.UTCTimestamp = "2025-07-01T18:30:00Z"
	ts, err = m.StartTime()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 7, 1, 18, 30, 0, 0, time.UTC), ts)

	m.UTCTimestamp = ""
	_, err = m.StartTime()
	assert.Error(t, err, "A missing timestamp must be an error, never defaulted")

	m.UTCTimestamp = "tomorrow-ish"
	_, err = m.StartTime()
	assert.Error(t, err)
}

func TestMatchDetail_StatusPredicates(t *testing.T) {
	assert.True(t, (&MatchDetail{Status: "final"}).IsFinal())
	assert.True(t, (&MatchDetail{Status: " Final "}).IsFinal())
	assert.False(t, (&MatchDetail{Status: "upcoming"}).IsFinal())
	assert.True(t, (&MatchDetail{Status: "LIVE"}).IsLive())
	assert.False(t, (&MatchDetail{Status: "final"}).IsLive())
}

func newTestClient(serverURL string) *Client {
	c := NewClient(serverURL, 5*time.Second, 100)
	c.retryDelay = time.Millisecond
	return c
}

func TestClient_ListUpcomingMatches(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match", r.URL.Path)
		assert.Equal(t, "upcoming", r.URL.Query().Get("q"))
		w.Write([]byte(`{"data":{"segments":[
			{"team1":"Sentinels","team2":"LOUD","match_page":"https://www.vlr.gg/501/a"},
			{"team1":"Fnatic","team2":"NAVI","match_page":"https://www.vlr.gg/502/b"}
		]}}`))
	}))
	defer srv.Close()

	matches, err := newTestClient(srv.URL).ListUpcomingMatches(context.Background())
	require.NoError(t, err)
	require.Len(t, matches, 2)
	assert.Equal(t, "Sentinels", matches[0].Team1)
	assert.Equal(t, "501", matches[0].ExternalID())
}

func TestClient_GetMatchDetail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/match/600", r.URL.Path)
		w.Write([]byte(`{"status":"final","utc_timestamp":"2025-06-01 18:00:00",
			"team1":{"name":"Sentinels","score":2},"team2":{"name":"LOUD","score":1},
			"event":{"name":"Masters Shanghai"}}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).GetMatchDetail(context.Background(), "600")
	require.NoError(t, err)
	assert.Equal(t, "600", detail.ID, "A missing id in the body falls back to the requested one")
	assert.True(t, detail.IsFinal())
	require.NotNil(t, detail.Team1.Score)
	assert.Equal(t, 2, *detail.Team1.Score)
}

func TestClient_RetriesTransientFailures(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"id":"1","status":"upcoming"}`))
	}))
	defer srv.Close()

	detail, err := newTestClient(srv.URL).GetMatchDetail(context.Background(), "1")
	require.NoError(t, err)
	assert.Equal(t, int32(3), calls.Load(), "Two transient failures then success")
	assert.Equal(t, "upcoming", detail.Status)
}

func TestClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).GetMatchDetail(context.Background(), "999")
	assert.Error(t, err)
	assert.Equal(t, int32(1), calls.Load(), "A 404 is permanent and must not be retried")
}
