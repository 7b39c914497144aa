// Package snapshot persists provider and reconciliation output as json files.
// A snapshot is never modified after it is written, the next run writes a new one.
package snapshot

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"
	"yst-fantasy/internal/components/assert"
	"yst-fantasy/internal/components/chrono"
	"yst-fantasy/internal/reconcile"
)

const timestampLayout = "20060102T150405.000Z"

// Writer writes snapshots under a root directory:
//
//	<root>/raw/<provider>_<timestamp>.json
//	<root>/raw/<provider>_latest.json
//	<root>/comprehensive_<timestamp>.json
//	<root>/comprehensive_latest.json
type Writer struct {
	root string
	time chrono.TimeAPI
}

func NewWriter(root string, time chrono.TimeAPI) Writer {
	assert.NotEmptyStr(root)
	assert.NotNil(time)
	return Writer{root: root, time: time}
}

// RawSnapshot is the on-disk shape of a single provider's player list.
type RawSnapshot struct {
	Provider    string                `json:"provider"`
	GeneratedAt time.Time             `json:"generated_at"`
	Count       int                   `json:"count"`
	Players     []reconcile.RawPlayer `json:"players"`
}

type ProviderCounts struct {
	Inputs    int `json:"inputs"`
	Matched   int `json:"matched"`
	Ambiguous int `json:"ambiguous"`
	Malformed int `json:"malformed"`
}

type ReportSummary struct {
	Records    int                       `json:"records"`
	Providers  map[string]ProviderCounts `json:"providers"`
	Malformed  []string                  `json:"malformed,omitempty"`
	NearMisses []reconcile.NearMiss      `json:"near_misses,omitempty"`
}

// Summarize converts a reconciliation report into its on-disk shape.
func Summarize(report reconcile.Report) ReportSummary {
	summary := ReportSummary{
		Records:    report.Records,
		Providers:  map[string]ProviderCounts{},
		NearMisses: report.NearMisses,
	}
	for _, p := range reconcile.Providers {
		summary.Providers[p.String()] = ProviderCounts{
			Inputs:    report.Inputs[p],
			Matched:   report.Matched[p],
			Ambiguous: report.Ambiguous[p],
			Malformed: report.MalformedCount(p),
		}
	}
	for _, m := range report.Malformed {
		summary.Malformed = append(summary.Malformed, m.Error())
	}
	return summary
}

// ComprehensiveSnapshot is the on-disk shape of a reconciliation.
type ComprehensiveSnapshot struct {
	GeneratedAt time.Time                      `json:"generated_at"`
	Report      ReportSummary                  `json:"report"`
	Players     []reconcile.MergedPlayerRecord `json:"players"`
}

func (w Writer) write(path string, value any, flag int) error {
	err := os.MkdirAll(filepath.Dir(path), 0777)
	if err != nil {
		return err
	}
	encoded, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return fmt.Errorf("json marshal: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|flag, 0600)
	if err != nil {
		return err
	}
	_, err = f.Write(encoded)
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

// writeVersioned writes the timestamped snapshot, which must not exist yet, and then
// replaces the latest copy.
func (w Writer) writeVersioned(dir, prefix string, value any) (string, error) {
	stamp := w.time.Now().UTC().Format(timestampLayout)
	path := filepath.Join(dir, fmt.Sprintf("%s_%s.json", prefix, stamp))
	err := w.write(path, value, os.O_EXCL)
	if err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	err = w.write(filepath.Join(dir, fmt.Sprintf("%s_latest.json", prefix)), value, os.O_TRUNC)
	if err != nil {
		return "", err
	}
	return path, nil
}

// WriteRaw writes a provider's player list and returns the path of the timestamped file.
func (w Writer) WriteRaw(provider reconcile.Provider, players []reconcile.RawPlayer) (string, error) {
	if players == nil {
		players = []reconcile.RawPlayer{}
	}
	return w.writeVersioned(filepath.Join(w.root, "raw"), provider.String(), RawSnapshot{
		Provider:    provider.String(),
		GeneratedAt: w.time.Now().UTC(),
		Count:       len(players),
		Players:     players,
	})
}

// WriteComprehensive writes the merged records of a reconciliation.
func (w Writer) WriteComprehensive(result reconcile.Result) (string, error) {
	players := result.Records
	if players == nil {
		players = []reconcile.MergedPlayerRecord{}
	}
	return w.writeVersioned(w.root, "comprehensive", ComprehensiveSnapshot{
		GeneratedAt: w.time.Now().UTC(),
		Report:      Summarize(result.Report),
		Players:     players,
	})
}

// LatestRawPath is the path WriteRaw keeps the newest snapshot of a provider at.
func LatestRawPath(root string, provider reconcile.Provider) string {
	return filepath.Join(root, "raw", fmt.Sprintf("%s_latest.json", provider.String()))
}

// ReadRaw reads a snapshot written by WriteRaw.
func ReadRaw(path string) (RawSnapshot, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return RawSnapshot{}, err
	}
	var out RawSnapshot
	err = json.Unmarshal(contents, &out)
	if err != nil {
		return RawSnapshot{}, fmt.Errorf("json unmarshal %s: %w", path, err)
	}
	return out, nil
}

// ReadPlayers reads the players of a snapshot written by WriteRaw, a bare json array of
// players is accepted as well.
func ReadPlayers(path string) ([]reconcile.RawPlayer, error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var players []reconcile.RawPlayer
	if json.Unmarshal(contents, &players) == nil {
		return players, nil
	}
	var snapshot RawSnapshot
	err = json.Unmarshal(contents, &snapshot)
	if err != nil {
		return nil, fmt.Errorf("json unmarshal %s: %w", path, err)
	}
	return snapshot.Players, nil
}
