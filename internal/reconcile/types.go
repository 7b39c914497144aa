package reconcile

import (
	"encoding/json"
	"fmt"
)

// Provider is one of the external fantasy data sources.
type Provider int

const (
	// ProviderYahoo is the base identity set, every yahoo player seeds a record.
	ProviderYahoo Provider = iota
	ProviderSleeper
	ProviderTank01

	providerCount = 3
)

// Providers lists every provider in matching precedence order.
var Providers = []Provider{ProviderYahoo, ProviderSleeper, ProviderTank01}

func (p Provider) String() string {
	switch p {
	case ProviderYahoo:
		return "yahoo"
	case ProviderSleeper:
		return "sleeper"
	case ProviderTank01:
		return "tank01"
	}
	return fmt.Sprintf("provider(%d)", int(p))
}

// ParseProvider is the inverse of Provider.String.
func ParseProvider(name string) (Provider, error) {
	for _, p := range Providers {
		if p.String() == name {
			return p, nil
		}
	}
	return 0, fmt.Errorf("unknown provider %q", name)
}

// RawPlayer is a player as a single provider reports it. Data carries the provider's
// own record verbatim.
type RawPlayer struct {
	Id       string          `json:"id"`
	Name     string          `json:"name"`
	Team     string          `json:"team,omitempty"`
	Position string          `json:"position,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}

// PlayerIdentity is the canonical key of a real athlete across providers.
type PlayerIdentity struct {
	Name          string
	Team          string
	PositionGroup string
}

func identityOf(p RawPlayer) PlayerIdentity {
	return PlayerIdentity{
		Name:          NormalizeName(p.Name),
		Team:          NormalizeTeam(p.Team),
		PositionGroup: PositionGroup(p.Position),
	}
}

// MergedPlayerRecord is one canonical player with the data of every provider that
// matched it. At least one of the provider fields is always set.
type MergedPlayerRecord struct {
	Name        string     `json:"name"`
	Position    string     `json:"position"`
	Team        string     `json:"team"`
	YahooData   *RawPlayer `json:"yahoo_data,omitempty"`
	SleeperData *RawPlayer `json:"sleeper_data,omitempty"`
	Tank01Data  *RawPlayer `json:"tank01_data,omitempty"`
}

// Data returns the provider's data attached to the record, or nil.
func (r MergedPlayerRecord) Data(p Provider) *RawPlayer {
	switch p {
	case ProviderYahoo:
		return r.YahooData
	case ProviderSleeper:
		return r.SleeperData
	case ProviderTank01:
		return r.Tank01Data
	}
	return nil
}

// Identity returns the canonical identity of the record.
func (r MergedPlayerRecord) Identity() PlayerIdentity {
	return PlayerIdentity{
		Name:          NormalizeName(r.Name),
		Team:          NormalizeTeam(r.Team),
		PositionGroup: PositionGroup(r.Position),
	}
}

func (r *MergedPlayerRecord) attach(p Provider, player RawPlayer) {
	copied := player
	switch p {
	case ProviderYahoo:
		r.YahooData = &copied
	case ProviderSleeper:
		r.SleeperData = &copied
	case ProviderTank01:
		r.Tank01Data = &copied
	}

	if r.Name == "" {
		r.Name = collapseWhitespace(player.Name)
	}
	if r.Team == "" {
		r.Team = NormalizeTeam(player.Team)
	}
	if r.Position == "" {
		r.Position = normalizePosition(player.Position)
	}
}

// NearMiss is a pair of records on the same team whose names are similar but were
// not merged. They are only reported for review.
type NearMiss struct {
	Left       string  `json:"left"`
	Right      string  `json:"right"`
	Team       string  `json:"team"`
	Similarity float64 `json:"similarity"`
}

// Report accounts for every input record of a reconciliation.
type Report struct {
	Inputs    [providerCount]int
	Matched   [providerCount]int
	Ambiguous [providerCount]int
	Malformed []*MalformedRecordError
	// Records is the number of merged records produced.
	Records    int
	NearMisses []NearMiss
}

// MalformedCount returns the number of malformed records of a provider.
func (r Report) MalformedCount(p Provider) int {
	n := 0
	for _, m := range r.Malformed {
		if m.Provider == p {
			n++
		}
	}
	return n
}

// Accounted reports whether every input record of the provider was either attached to
// a record, skipped as ambiguous or skipped as malformed.
func (r Report) Accounted(p Provider) bool {
	return r.Inputs[p] == r.Matched[p]+r.Ambiguous[p]+r.MalformedCount(p)
}

// Result is the output of a reconciliation.
type Result struct {
	Records []MergedPlayerRecord
	Report  Report
}
