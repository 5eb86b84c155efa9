package normalize

import (
	"regexp"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Patterns anchored on how the provider writes descriptions:
// "Nikola Jokic makes driving layup (Jamal Murray assists)".
var (
	verbPattern = regexp.MustCompile(`^([A-Z][A-Za-z'.-]*(?:\s+[A-Z][A-Za-z'.-]*)+?)(?:\s+(?:Jr\.|Sr\.|II|III|IV))?\s+(?:makes|misses|draws|commits|blocks|steals|with|offensive|defensive|personal|shooting|loose|turnover)`)
	byPattern   = regexp.MustCompile(`(?:by|from)\s+([A-Z][A-Za-z'.-]*(?:\s+[A-Z][A-Za-z'.-]*)+?)(?:\s+(?:Jr\.|Sr\.|II|III|IV))?(?:\s|$|\.|\)|,)`)
	astPattern  = regexp.MustCompile(`\(([A-Z][A-Za-z'.-]*(?:\s+[A-Z][A-Za-z'.-]*)+)\s+assists\)`)
)

// maxResolveDistance bounds the edit distance for roster resolution; a
// worse match keeps the extracted name verbatim.
const maxResolveDistance = 3

// ExtractPlayer pulls the acting player's name out of a play description.
// Returns empty when no name can be found, never an error.
func ExtractPlayer(text string) string {
	if text == "" {
		return ""
	}
	if m := verbPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	if m := byPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// ExtractAssist pulls the assisting player from descriptions of assisted
// makes, e.g. "(Jamal Murray assists)".
func ExtractAssist(text string) string {
	if m := astPattern.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return ""
}

// resolve maps an extracted name onto the closest roster entry so the same
// player never splits across ledger keys. Without a roster, or without a
// match within maxResolveDistance, the extracted name is kept.
func (n *Normalizer) resolve(name string) string {
	if name == "" || len(n.roster) == 0 {
		return name
	}
	best := ""
	bestDistance := maxResolveDistance + 1
	lowered := strings.ToLower(name)
	for _, candidate := range n.roster {
		if strings.EqualFold(candidate, name) {
			return candidate
		}
		distance := fuzzy.LevenshteinDistance(lowered, strings.ToLower(candidate))
		if distance < bestDistance {
			bestDistance = distance
			best = candidate
		}
	}
	if best != "" {
		return best
	}
	return name
}
