package sleeper

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"yst-fantasy/internal/components/telemetry"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/scrapers"

	"github.com/stretchr/testify/require"
)

const playersJson = `{
	"6794": {"player_id": "6794", "full_name": "Justin Jefferson", "team": "MIN", "position": "WR", "age": 25},
	"4984": {"player_id": "4984", "first_name": "Josh", "last_name": "Allen", "team": "BUF", "position": "QB"},
	"DAL": {"first_name": "Dallas", "last_name": "Cowboys", "team": "DAL", "position": "DEF"}
}`

func TestGetPlayers(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/v1/players/nfl", r.URL.Path)
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(playersJson))
	}))
	defer server.Close()

	tel := &telemetry.RecorderAPI{}
	client, err := NewClient(Options{BaseUrl: server.URL}, tel)
	require.NoError(t, err)

	players, err := client.GetPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 3)

	for i := range players {
		players[i].Data = nil
	}
	require.Equal(t, []reconcile.RawPlayer{
		{Id: "4984", Name: "Josh Allen", Team: "BUF", Position: "QB"},
		{Id: "6794", Name: "Justin Jefferson", Team: "MIN", Position: "WR"},
		{Id: "DAL", Name: "Dallas Cowboys", Team: "DAL", Position: "DEF"},
	}, players)

	counts := tel.Find("count")
	require.Len(t, counts, 1)
	require.Equal(t, int64(3), counts[0].Count)
}

func TestGetPlayersWithDumpOutput(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("content-type", "application/json")
		_, _ = w.Write([]byte(playersJson))
	}))
	defer server.Close()

	dumps := filepath.Join(t.TempDir(), "dumps")
	output, err := telemetry.NewFilesystemOutput(dumps)
	require.NoError(t, err)

	client, err := NewClient(Options{BaseUrl: server.URL, Output: output}, &telemetry.RecorderAPI{})
	require.NoError(t, err)

	players, err := client.GetPlayers(context.Background())
	require.NoError(t, err)
	require.Len(t, players, 3)

	dump, err := os.ReadFile(filepath.Join(dumps, "1"))
	require.NoError(t, err)
	require.Contains(t, string(dump), "GET")
	require.Contains(t, string(dump), "<NO BODY AVAILABLE>")
	require.Contains(t, string(dump), "Justin Jefferson")
}

func TestGetPlayersKeepsRecord(t *testing.T) {
	players, err := decodePlayers([]byte(playersJson))
	require.NoError(t, err)
	require.JSONEq(t,
		`{"player_id": "6794", "full_name": "Justin Jefferson", "team": "MIN", "position": "WR", "age": 25}`,
		string(players[1].Data),
	)
}

func TestGetPlayersServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	client, err := NewClient(Options{BaseUrl: server.URL}, &telemetry.RecorderAPI{})
	require.NoError(t, err)

	_, err = client.GetPlayers(context.Background())
	var statusErr *scrapers.StatusError
	require.True(t, errors.As(err, &statusErr))
	require.Equal(t, http.StatusBadGateway, statusErr.StatusCode)
}
