package telemetry

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/go-resty/resty/v2"
	"github.com/stretchr/testify/require"
)

func TestScopedAPI(t *testing.T) {
	recorder := &RecorderAPI{}
	scoped := NewScopedAPI("sleeper_scraper", recorder)

	scoped.ReportBroken("client.get-players", errors.New("boom"))
	scoped.ReportWarning("client.decode", 3)
	scoped.ReportDebug("fetching")
	scoped.ReportCount("client.get-players", 12)

	require.Equal(t, []Report{
		{Kind: "broken", Id: "sleeper_scraper: client.get-players", Params: []any{errors.New("boom")}},
		{Kind: "warning", Id: "sleeper_scraper: client.decode", Params: []any{3}},
		{Kind: "debug", Id: "sleeper_scraper: fetching", Params: nil},
		{Kind: "count", Id: "sleeper_scraper: client.get-players", Count: 12},
	}, recorder.Reports)

	nested := NewScopedAPI("collector", scoped)
	nested.ReportWarning("run")
	require.Equal(t, "sleeper_scraper: collector: run", recorder.Find("warning")[1].Id)
}

func TestSlogAPI(t *testing.T) {
	var out bytes.Buffer
	api := SlogAPI{Logger: NewSlogLogger(&out, false)}

	api.ReportDebug("hidden unless verbose")
	api.ReportWarning("reconcile.ambiguous", "josh allen", 2)
	api.ReportCount("reconcile.records", 10)

	logged := out.String()
	require.NotContains(t, logged, "hidden unless verbose")
	require.Contains(t, logged, "id=reconcile.ambiguous")
	require.Contains(t, logged, `params.0="josh allen"`)
	require.Contains(t, logged, "params.1=2")
	require.Contains(t, logged, "n=10")

	out.Reset()
	verbose := SlogAPI{Logger: NewSlogLogger(&out, true)}
	verbose.ReportDebug("shown")
	require.Contains(t, out.String(), "msg=shown")
}

type memoryOutput struct {
	messages map[string]string
}

func (m *memoryOutput) Write(id, contents string) {
	m.messages[id] = contents
}

func TestInstrumentResty(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("x-served-by", "test")
		_, _ = w.Write([]byte(`{"ok":true}`))
	}))
	defer server.Close()

	recorder := &RecorderAPI{}
	output := &memoryOutput{messages: map[string]string{}}
	client := resty.New().SetBaseURL(server.URL)
	client.SetHeader("X-RapidAPI-Key", "super-secret")
	InstrumentResty(client, recorder, "test", output)

	_, err := client.R().SetContext(context.Background()).Get("/players")
	require.NoError(t, err)
	res, err := client.R().Get("/missing")
	require.NoError(t, err)
	require.Equal(t, http.StatusNotFound, res.StatusCode())

	debug := recorder.Find("debug")
	require.Len(t, debug, 4)
	require.Equal(t, report_resty_request, debug[0].Id)
	require.Equal(t, report_resty_response, debug[1].Id)
	require.Equal(t, uint64(2), debug[2].Params[0])

	require.Len(t, output.messages, 2)
	first := output.messages["1"]
	require.Contains(t, first, "GET "+server.URL+"/players")
	require.Contains(t, first, `{"ok":true}`)
	require.Contains(t, first, "X-Served-By: test")
	require.Contains(t, first, "X-Rapidapi-Key: <REDACTED>")
	require.NotContains(t, first, "super-secret")
}

func TestInstrumentRestyError(t *testing.T) {
	recorder := &RecorderAPI{}
	client := resty.New()
	InstrumentResty(client, recorder, "test", nil)

	_, err := client.R().Get("http://127.0.0.1:1/unreachable")
	require.Error(t, err)

	broken := recorder.Find("broken")
	require.Len(t, broken, 1)
	require.Equal(t, report_resty_response, broken[0].Id)
}

func TestFilesystemOutput(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "dumps")
	require.NoError(t, os.MkdirAll(dir, 0777))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stale"), []byte("old"), 0600))

	output, err := NewFilesystemOutput(dir)
	require.NoError(t, err)
	output.Write("1", "contents")

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	contents, err := os.ReadFile(filepath.Join(dir, "1"))
	require.NoError(t, err)
	require.Equal(t, "contents", string(contents))
}
