package reconcile

import (
	"regexp"
	"strings"
)

var whitespaceRegex = regexp.MustCompile(`\s+`)

// punctuation providers render inconsistently, ex. "A.J." vs "AJ" or "Ja'Marr" vs "JaMarr"
var punctuationReplacer = strings.NewReplacer(
	".", "",
	"'", "",
	"’", "",
	"`", "",
	",", "",
	"-", " ",
)

func collapseWhitespace(s string) string {
	return strings.Trim(whitespaceRegex.ReplaceAllString(s, " "), " ")
}

// NormalizeName lowercases a player name, strips punctuation and collapses whitespace.
func NormalizeName(name string) string {
	name = strings.ToLower(name)
	name = punctuationReplacer.Replace(name)
	return collapseWhitespace(name)
}

var teamAliases = map[string]string{
	"JAC": "JAX",
	"WSH": "WAS",
	"LA":  "LAR",
	"LVR": "LV",
	"OAK": "LV",
	"SD":  "LAC",
	"STL": "LAR",
	"FA":  "",
	"N/A": "",
}

// NormalizeTeam uppercases a team abbreviation and maps the historical and
// provider-specific spellings onto one abbreviation. Free agents have no team.
func NormalizeTeam(team string) string {
	team = strings.ToUpper(strings.TrimSpace(team))
	alias, ok := teamAliases[team]
	if ok {
		return alias
	}
	return team
}

func normalizePosition(position string) string {
	return strings.ToUpper(strings.TrimSpace(position))
}

var positionGroups = map[string]string{
	"QB":   "QB",
	"RB":   "RB",
	"FB":   "RB",
	"HB":   "RB",
	"WR":   "WR",
	"TE":   "TE",
	"K":    "K",
	"PK":   "K",
	"OT":   "OL",
	"OG":   "OL",
	"C":    "OL",
	"G":    "OL",
	"T":    "OL",
	"OL":   "OL",
	"LT":   "OL",
	"RT":   "OL",
	"LG":   "OL",
	"RG":   "OL",
	"DE":   "DL",
	"DT":   "DL",
	"NT":   "DL",
	"DL":   "DL",
	"LB":   "LB",
	"ILB":  "LB",
	"OLB":  "LB",
	"MLB":  "LB",
	"CB":   "DB",
	"S":    "DB",
	"FS":   "DB",
	"SS":   "DB",
	"DB":   "DB",
	"DEF":  "DEF",
	"DST":  "DEF",
	"D/ST": "DEF",
	"P":    "P",
	"LS":   "LS",
}

// PositionGroup maps a position onto the group used to tell players apart, ex. "OLB"
// and "LB" are both "LB". Multi-position values like "WR,TE" use the first position.
// Unknown positions are their own group.
func PositionGroup(position string) string {
	position = normalizePosition(position)
	if i := strings.IndexAny(position, ",/"); i > 0 && position != "D/ST" {
		position = position[:i]
	}
	group, ok := positionGroups[position]
	if ok {
		return group
	}
	return position
}
