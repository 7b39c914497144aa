package reconcile

import (
	"sort"

	"github.com/antzucaro/matchr"
)

func disjoint(a, b MergedPlayerRecord) bool {
	for _, p := range Providers {
		if a.Data(p) != nil && b.Data(p) != nil {
			return false
		}
	}
	return true
}

// findNearMisses compares records on the same team that share no provider. Those are
// the pairs that could have been the same player under a looser name comparison.
func findNearMisses(records []MergedPlayerRecord, threshold float64) []NearMiss {
	byTeam := map[string][]int{}
	for i, r := range records {
		if r.Team == "" {
			continue
		}
		byTeam[r.Team] = append(byTeam[r.Team], i)
	}

	var out []NearMiss
	for team, indices := range byTeam {
		for x := 0; x < len(indices); x++ {
			left := records[indices[x]]
			leftName := NormalizeName(left.Name)
			for y := x + 1; y < len(indices); y++ {
				right := records[indices[y]]
				if !disjoint(left, right) {
					continue
				}
				rightName := NormalizeName(right.Name)
				if leftName == rightName {
					continue
				}
				similarity := matchr.JaroWinkler(leftName, rightName, false)
				if similarity < threshold {
					continue
				}
				out = append(out, NearMiss{
					Left:       left.Name,
					Right:      right.Name,
					Team:       team,
					Similarity: similarity,
				})
			}
		}
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Team != out[j].Team {
			return out[i].Team < out[j].Team
		}
		if out[i].Left != out[j].Left {
			return out[i].Left < out[j].Left
		}
		return out[i].Right < out[j].Right
	})
	return out
}
