package match

import (
	"fmt"
	"strings"

	"anisync/internal/jikan"
	"anisync/internal/textutil"
)

// bestMatchThreshold is the minimum similarity FindBestMatch accepts. The
// slug path deliberately has no floor: a slug carries structural hints the
// title path lacks, so it is allowed to be permissive.
const bestMatchThreshold = 0.6

// containmentScore is the score assigned when one normalized title
// substring-contains the other.
const containmentScore = 0.8

// FindMatchBySlug picks the catalog candidate that best fits a canonical
// key, using the key's season/part/cour hints before text similarity.
//
// A key without hints trusts the API's relevance ranking and takes the
// first candidate. A key with hints is first scanned for a candidate whose
// title names the hinted number explicitly; only when that fails does the
// fuzzy fallback run, and it keeps the highest-scoring candidate without a
// minimum threshold.
func FindMatchBySlug(key string, candidates []jikan.Anime) *jikan.Anime {
	if len(candidates) == 0 {
		return nil
	}

	info := ExtractSeasonInfo(key)
	if !info.HasHints() {
		return &candidates[0]
	}

	for i := range candidates {
		if titleMatchesHints(candidates[i].Title, info) {
			return &candidates[i]
		}
	}

	var best *jikan.Anime
	bestScore := 0.0
	collapsed := strings.ToLower(strings.ReplaceAll(key, "-", " "))
	for i := range candidates {
		score := textutil.Similarity(collapsed, strings.ToLower(candidates[i].Title))
		if score > bestScore {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}

// titleMatchesHints reports whether a candidate title explicitly names the
// hinted season, part, or cour. Season hints take precedence over part,
// part over cour. A cour hint is also satisfied by a "part N" title because
// catalogs frequently label cour releases as parts.
func titleMatchesHints(title string, info SeasonInfo) bool {
	lower := strings.ToLower(title)

	if info.Season != nil {
		return containsAny(lower,
			fmt.Sprintf("season %d", *info.Season),
			fmt.Sprintf("s%d", *info.Season),
		)
	}
	if info.Part != nil {
		return containsAny(lower,
			fmt.Sprintf("part %d", *info.Part),
			fmt.Sprintf("pt %d", *info.Part),
		)
	}
	if info.Cour != nil {
		n := *info.Cour
		return containsAny(lower,
			fmt.Sprintf("%dst cour", n),
			fmt.Sprintf("%dnd cour", n),
			fmt.Sprintf("%drd cour", n),
			fmt.Sprintf("%dth cour", n),
			fmt.Sprintf("cour %d", n),
			fmt.Sprintf("part %d", n),
			fmt.Sprintf("pt %d", n),
		)
	}
	return false
}

func containsAny(haystack string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(haystack, needle) {
			return true
		}
	}
	return false
}

// FindBestMatch picks a candidate by title alone, with no season awareness.
// Each candidate scores the maximum of normalized text similarity and a
// fixed containment score when one normalized title contains the other; the
// winner is accepted only above the 0.6 floor. This is the conservative
// sibling of FindMatchBySlug, used when no slug-derived context exists.
func FindBestMatch(title string, candidates []jikan.Anime) *jikan.Anime {
	if len(candidates) == 0 {
		return nil
	}

	normalized := NormalizeTitle(title)

	var best *jikan.Anime
	bestScore := 0.0
	for i := range candidates {
		candidateNorm := NormalizeTitle(candidates[i].Title)
		score := textutil.Similarity(normalized, candidateNorm)
		if candidateNorm != "" && normalized != "" &&
			(strings.Contains(candidateNorm, normalized) || strings.Contains(normalized, candidateNorm)) {
			if containmentScore > score {
				score = containmentScore
			}
		}
		if score > bestScore && score > bestMatchThreshold {
			bestScore = score
			best = &candidates[i]
		}
	}
	return best
}
