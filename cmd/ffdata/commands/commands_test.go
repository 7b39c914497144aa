package commands

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/oauth1"
	"yst-fantasy/internal/reconcile"
	"yst-fantasy/internal/snapshot"

	"github.com/stretchr/testify/require"
)

func TestParseParams(t *testing.T) {
	params, err := parseParams([]string{"format=json", "q=a=b", "empty="})
	require.NoError(t, err)
	require.Equal(t, map[string]string{"format": "json", "q": "a=b", "empty": ""}, params)

	_, err = parseParams([]string{"novalue"})
	require.Error(t, err)
	_, err = parseParams([]string{"a=1", "a=2"})
	require.Error(t, err)
}

func TestRunSign(t *testing.T) {
	signer := oauth1.NewSigner(
		chrono.FixedTime{At: time.Unix(1700000000, 0)},
		oauth1.FixedNonce("abcdefghijklmnop0123"),
	)
	var out bytes.Buffer
	err := runSign(&out, signer, signFlags{
		method:         "get",
		url:            "https://fantasysports.yahooapis.com/fantasy/v2/game/nfl/players;start=0;count=25",
		params:         []string{"format=json"},
		consumerKey:    "dj0yJmk9consumer",
		consumerSecret: "s3cr3t",
	})
	require.NoError(t, err)
	require.Equal(t,
		`Authorization: OAuth oauth_consumer_key="dj0yJmk9consumer", oauth_nonce="abcdefghijklmnop0123", `+
			`oauth_signature="hVdrCY4tzL2sOcGrWubxXEv8TgM%3D", oauth_signature_method="HMAC-SHA1", `+
			`oauth_timestamp="1700000000", oauth_version="1.0"`+"\n",
		out.String(),
	)

	err = runSign(&out, signer, signFlags{method: "GET", url: "https://example.com"})
	require.Error(t, err)
}

func writeSnapshot(t *testing.T, root string, provider reconcile.Provider, players []reconcile.RawPlayer) string {
	path, err := snapshot.NewWriter(root, chrono.FixedTime{At: time.Unix(1700000000, 0)}).WriteRaw(provider, players)
	require.NoError(t, err)
	return path
}

func TestRunReconcile(t *testing.T) {
	root := t.TempDir()
	yahooPath := writeSnapshot(t, root, reconcile.ProviderYahoo, []reconcile.RawPlayer{
		{Id: "449.p.33393", Name: "Kenneth Walker III", Team: "SEA", Position: "RB"},
	})
	sleeperPath := writeSnapshot(t, root, reconcile.ProviderSleeper, []reconcile.RawPlayer{
		{Id: "8151", Name: "Kenneth Walker", Team: "SEA", Position: "RB"},
		{Id: "", Name: "", Team: "SEA"},
	})

	outDir := filepath.Join(root, "merged")
	var out bytes.Buffer
	result, err := runReconcile(&out, chrono.FixedTime{At: time.Unix(1700000000, 0)}, reconcileFlags{
		inputs: map[reconcile.Provider]*string{
			reconcile.ProviderYahoo:   &yahooPath,
			reconcile.ProviderSleeper: &sleeperPath,
		},
		outputDir: outDir,
		nearMiss:  reconcile.DefaultNearMissThreshold,
	})
	require.NoError(t, err)
	require.Len(t, result.Records, 2)
	require.Len(t, result.Report.NearMisses, 1)
	require.Len(t, result.Report.Malformed, 1)

	printed := out.String()
	require.Contains(t, printed, "Near misses")
	require.Contains(t, printed, "Kenneth Walker III")
	require.Contains(t, printed, "Malformed")

	_, err = os.Stat(filepath.Join(outDir, "comprehensive_latest.json"))
	require.NoError(t, err)
}

func TestRunReconcileWithoutInputs(t *testing.T) {
	_, err := runReconcile(&bytes.Buffer{}, chrono.FixedTime{}, reconcileFlags{})
	require.Error(t, err)
}
