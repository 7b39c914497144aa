// Package reconcile merges the player lists of yahoo, sleeper and tank01 into one
// record per real player.
//
// Providers share no common id, so players are matched by normalized name. When a
// name is shared by several candidates they are told apart by team, then by position
// group. A match that cannot be decided is left out instead of guessed.
package reconcile

import (
	"bytes"
	"sort"
	"strings"
)

const DefaultNearMissThreshold = 0.93

type Options struct {
	// NearMissThreshold is the Jaro-Winkler similarity above which two unmerged records
	// on the same team are reported as a near miss, 0 disables the report.
	NearMissThreshold float64
}

type Reconciler struct {
	opts Options
}

func NewReconciler(opts Options) Reconciler {
	return Reconciler{opts: opts}
}

// Reconcile merges the players using the default options.
func Reconcile(yahoo, sleeper, tank01 []RawPlayer) Result {
	return NewReconciler(Options{NearMissThreshold: DefaultNearMissThreshold}).
		Reconcile(yahoo, sleeper, tank01)
}

type entry struct {
	provider  Provider
	index     int
	player    RawPlayer
	identity  PlayerIdentity
	claimed   bool
	ambiguous bool
}

func (e *entry) less(o *entry) bool {
	if e.identity.Name != o.identity.Name {
		return e.identity.Name < o.identity.Name
	}
	if e.identity.Team != o.identity.Team {
		return e.identity.Team < o.identity.Team
	}
	if e.identity.PositionGroup != o.identity.PositionGroup {
		return e.identity.PositionGroup < o.identity.PositionGroup
	}
	if e.player.Id != o.player.Id {
		return e.player.Id < o.player.Id
	}
	if e.player.Name != o.player.Name {
		return e.player.Name < o.player.Name
	}
	if c := bytes.Compare(e.player.Data, o.player.Data); c != 0 {
		return c < 0
	}
	return e.index < o.index
}

type pool struct {
	entries []*entry
	byName  map[string][]*entry
}

func newPool(provider Provider, players []RawPlayer, report *Report) pool {
	p := pool{byName: map[string][]*entry{}}
	for i, player := range players {
		report.Inputs[provider]++

		if strings.TrimSpace(player.Name) == "" {
			report.Malformed = append(report.Malformed, &MalformedRecordError{
				Provider: provider,
				Index:    i,
				Id:       player.Id,
				Reason:   "missing name",
			})
			continue
		}
		identity := identityOf(player)
		if identity.Name == "" {
			report.Malformed = append(report.Malformed, &MalformedRecordError{
				Provider: provider,
				Index:    i,
				Id:       player.Id,
				Reason:   "name has no letters or digits",
			})
			continue
		}

		e := &entry{
			provider: provider,
			index:    i,
			player:   player,
			identity: identity,
		}
		p.entries = append(p.entries, e)
	}

	sort.SliceStable(p.entries, func(i, j int) bool {
		return p.entries[i].less(p.entries[j])
	})
	for _, e := range p.entries {
		p.byName[e.identity.Name] = append(p.byName[e.identity.Name], e)
	}
	return p
}

func conflicts(seed PlayerIdentity, candidate PlayerIdentity) bool {
	if seed.Team != "" && candidate.Team != "" && seed.Team != candidate.Team {
		return true
	}
	if seed.PositionGroup != "" && candidate.PositionGroup != "" && seed.PositionGroup != candidate.PositionGroup {
		return true
	}
	return false
}

func filter(entries []*entry, keep func(e *entry) bool) []*entry {
	var out []*entry
	for _, e := range entries {
		if keep(e) {
			out = append(out, e)
		}
	}
	return out
}

// match finds the single candidate in the pool that is the same player as seed.
//
// A lone candidate matches unless its team or position group contradicts the seed.
// Several candidates are decided by team first: a single candidate on the seed's team
// is the only one that can match, and it is rejected as ambiguous when its position
// group contradicts the seed. Otherwise the remaining candidates are narrowed by
// position group. When no single candidate is left every candidate that could still be
// the seed is marked ambiguous and nothing matches.
func (p pool) match(seed PlayerIdentity) *entry {
	candidates := filter(p.byName[seed.Name], func(e *entry) bool {
		return !e.claimed
	})
	if len(candidates) == 0 {
		return nil
	}
	if len(candidates) == 1 {
		if conflicts(seed, candidates[0].identity) {
			return nil
		}
		return candidates[0]
	}

	narrowed := candidates
	if seed.Team != "" {
		byTeam := filter(candidates, func(e *entry) bool {
			return e.identity.Team == seed.Team
		})
		switch {
		case len(byTeam) == 1:
			if conflicts(seed, byTeam[0].identity) {
				byTeam[0].ambiguous = true
				return nil
			}
			return byTeam[0]
		case len(byTeam) > 1:
			narrowed = byTeam
		default:
			// candidates on another team can never be the seed
			narrowed = filter(candidates, func(e *entry) bool {
				return e.identity.Team == ""
			})
		}
	}
	if seed.PositionGroup != "" {
		byGroup := filter(narrowed, func(e *entry) bool {
			return e.identity.PositionGroup == seed.PositionGroup
		})
		if len(byGroup) == 1 {
			return byGroup[0]
		}
		if len(byGroup) > 1 {
			narrowed = byGroup
		}
	}

	for _, e := range narrowed {
		if !conflicts(seed, e.identity) {
			e.ambiguous = true
		}
	}
	return nil
}

type builder struct {
	records []MergedPlayerRecord
	report  *Report
}

func (b *builder) seed(e *entry) *MergedPlayerRecord {
	e.claimed = true
	b.report.Matched[e.provider]++
	b.records = append(b.records, MergedPlayerRecord{})
	record := &b.records[len(b.records)-1]
	record.attach(e.provider, e.player)
	return record
}

func (b *builder) extend(record *MergedPlayerRecord, p pool) {
	e := p.match(record.Identity())
	if e == nil {
		return
	}
	e.claimed = true
	b.report.Matched[e.provider]++
	record.attach(e.provider, e.player)
}

// Reconcile merges the players of the three providers. It is deterministic and does
// not depend on the order of the inputs.
func (r Reconciler) Reconcile(yahoo, sleeper, tank01 []RawPlayer) Result {
	report := Report{}
	pools := [providerCount]pool{
		newPool(ProviderYahoo, yahoo, &report),
		newPool(ProviderSleeper, sleeper, &report),
		newPool(ProviderTank01, tank01, &report),
	}

	b := &builder{report: &report}

	// yahoo is the base identity set
	for _, e := range pools[ProviderYahoo].entries {
		record := b.seed(e)
		b.extend(record, pools[ProviderSleeper])
		b.extend(record, pools[ProviderTank01])
	}

	// players yahoo does not list (ex. free agents only sleeper knows of)
	for _, e := range pools[ProviderSleeper].entries {
		if e.claimed || e.ambiguous {
			continue
		}
		record := b.seed(e)
		b.extend(record, pools[ProviderTank01])
	}
	for _, e := range pools[ProviderTank01].entries {
		if e.claimed || e.ambiguous {
			continue
		}
		b.seed(e)
	}

	for _, p := range pools {
		for _, e := range p.entries {
			if !e.claimed && e.ambiguous {
				report.Ambiguous[e.provider]++
			}
		}
	}

	records := b.records
	sortRecords(records)
	report.Records = len(records)
	if r.opts.NearMissThreshold > 0 {
		report.NearMisses = findNearMisses(records, r.opts.NearMissThreshold)
	}

	return Result{Records: records, Report: report}
}

func recordKey(r MergedPlayerRecord) []string {
	identity := r.Identity()
	key := []string{identity.Name, identity.Team, identity.PositionGroup}
	for _, p := range Providers {
		data := r.Data(p)
		if data == nil {
			key = append(key, "")
			continue
		}
		key = append(key, data.Id)
	}
	return key
}

func sortRecords(records []MergedPlayerRecord) {
	type keyed struct {
		key    []string
		record MergedPlayerRecord
	}
	sorted := make([]keyed, len(records))
	for i, r := range records {
		sorted[i] = keyed{key: recordKey(r), record: r}
	}
	sort.SliceStable(sorted, func(i, j int) bool {
		a := sorted[i].key
		b := sorted[j].key
		for k := range a {
			if a[k] != b[k] {
				return a[k] < b[k]
			}
		}
		return false
	})
	for i, k := range sorted {
		records[i] = k.record
	}
}
