package snapshot

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/reconcile"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

var testTime = chrono.FixedTime{At: time.Date(2024, 9, 8, 17, 30, 0, 0, time.UTC)}

func TestWriteRaw(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root, testTime)

	players := []reconcile.RawPlayer{
		{Id: "4034", Name: "Christian McCaffrey", Team: "SF", Position: "RB", Data: json.RawMessage(`{"age":28}`)},
	}
	path, err := writer.WriteRaw(reconcile.ProviderSleeper, players)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "raw", "sleeper_20240908T173000.000Z.json"), path)

	info, err := os.Stat(path)
	require.NoError(t, err)
	require.Equal(t, os.FileMode(0600), info.Mode().Perm())

	snapshot, err := ReadRaw(path)
	require.NoError(t, err)
	require.Equal(t, "sleeper", snapshot.Provider)
	require.Equal(t, 1, snapshot.Count)
	require.True(t, testTime.At.Equal(snapshot.GeneratedAt))

	latest, err := ReadPlayers(LatestRawPath(root, reconcile.ProviderSleeper))
	require.NoError(t, err)
	require.Len(t, latest, 1)
	// the provider record is re-indented on write
	require.JSONEq(t, `{"age":28}`, string(latest[0].Data))
	latest[0].Data = nil
	players[0].Data = nil
	if diff := cmp.Diff(players, latest); diff != "" {
		t.Fatal(diff)
	}
}

func TestWriteRawKeepsEarlierSnapshot(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root, testTime)

	first := []reconcile.RawPlayer{{Id: "1", Name: "Bijan Robinson", Team: "ATL", Position: "RB"}}
	path, err := writer.WriteRaw(reconcile.ProviderTank01, first)
	require.NoError(t, err)

	second := []reconcile.RawPlayer{{Id: "2", Name: "Drake London", Team: "ATL", Position: "WR"}}
	_, err = writer.WriteRaw(reconcile.ProviderTank01, second)
	require.ErrorIs(t, err, os.ErrExist)

	kept, err := ReadPlayers(path)
	require.NoError(t, err)
	require.Equal(t, first, kept)

	latest, err := ReadPlayers(LatestRawPath(root, reconcile.ProviderTank01))
	require.NoError(t, err)
	require.Equal(t, first, latest)

	later := NewWriter(root, chrono.FixedTime{At: testTime.At.Add(250 * time.Millisecond)})
	laterPath, err := later.WriteRaw(reconcile.ProviderTank01, second)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "raw", "tank01_20240908T173000.250Z.json"), laterPath)

	latest, err = ReadPlayers(LatestRawPath(root, reconcile.ProviderTank01))
	require.NoError(t, err)
	require.Equal(t, second, latest)
}

func TestReadPlayersBareArray(t *testing.T) {
	path := filepath.Join(t.TempDir(), "players.json")
	err := os.WriteFile(path, []byte(`[{"id":"1","name":"Bijan Robinson","team":"ATL","position":"RB"}]`), 0600)
	require.NoError(t, err)

	players, err := ReadPlayers(path)
	require.NoError(t, err)
	require.Equal(t, []reconcile.RawPlayer{{Id: "1", Name: "Bijan Robinson", Team: "ATL", Position: "RB"}}, players)

	_, err = ReadPlayers(filepath.Join(t.TempDir(), "missing.json"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWriteComprehensive(t *testing.T) {
	root := t.TempDir()
	writer := NewWriter(root, testTime)

	result := reconcile.Reconcile(
		[]reconcile.RawPlayer{{Id: "y1", Name: "A.J. Brown", Team: "PHI", Position: "WR"}},
		[]reconcile.RawPlayer{{Id: "s1", Name: "AJ Brown", Team: "PHI", Position: "WR"}, {Name: ""}},
		nil,
	)
	path, err := writer.WriteComprehensive(result)
	require.NoError(t, err)
	require.Equal(t, filepath.Join(root, "comprehensive_20240908T173000.000Z.json"), path)

	contents, err := os.ReadFile(filepath.Join(root, "comprehensive_latest.json"))
	require.NoError(t, err)

	var snapshot ComprehensiveSnapshot
	require.NoError(t, json.Unmarshal(contents, &snapshot))
	require.Len(t, snapshot.Players, 1)
	require.Equal(t, "A.J. Brown", snapshot.Players[0].Name)
	require.Equal(t, "s1", snapshot.Players[0].SleeperData.Id)
	require.Nil(t, snapshot.Players[0].Tank01Data)
	require.Equal(t, 1, snapshot.Report.Records)
	require.Equal(t, ProviderCounts{Inputs: 2, Matched: 1, Malformed: 1}, snapshot.Report.Providers["sleeper"])
	require.Len(t, snapshot.Report.Malformed, 1)

	var raw map[string]any
	require.NoError(t, json.Unmarshal(contents, &raw))
	player := raw["players"].([]any)[0].(map[string]any)
	require.Contains(t, player, "yahoo_data")
	require.Contains(t, player, "sleeper_data")
	require.NotContains(t, player, "tank01_data")
}
