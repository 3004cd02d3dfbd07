package match

import (
	"regexp"
	"strconv"
	"strings"
)

// SeasonInfo carries the structured season/part/cour hints extracted from a
// canonical key. A key may carry all three at once. Residual is the key
// with every recognized fragment removed, kept only as a descriptive
// leftover.
type SeasonInfo struct {
	Season   *int
	Part     *int
	Cour     *int
	Residual string
}

// HasHints reports whether any of season, part, or cour was found.
func (s SeasonInfo) HasHints() bool {
	return s.Season != nil || s.Part != nil || s.Cour != nil
}

var (
	seasonPattern   = regexp.MustCompile(`(?i)season[-]?(\d+)|s(\d+)`)
	partPattern     = regexp.MustCompile(`(?i)part[-]?(\d+)|pt(\d+)`)
	courPattern     = regexp.MustCompile(`(?i)(\d+)(?:st|nd|rd|th)?[\s-]*cour|cour[-]?(\d+)`)
	residualPattern = regexp.MustCompile(`(?i)season-?\d+|s\d+|part-?\d+|pt\d+|\d+(?:st|nd|rd|th)?[\s-]*cour|cour-?\d+`)
)

// ExtractSeasonInfo applies the three pattern families independently
// against the canonical key. Deterministic and recomputed on demand; the
// result is never stored.
func ExtractSeasonInfo(key string) SeasonInfo {
	info := SeasonInfo{
		Season: firstNumber(seasonPattern, key),
		Part:   firstNumber(partPattern, key),
		Cour:   firstNumber(courPattern, key),
	}
	residual := residualPattern.ReplaceAllString(key, "")
	info.Residual = strings.Trim(residual, "- ")
	return info
}

func firstNumber(pattern *regexp.Regexp, key string) *int {
	groups := pattern.FindStringSubmatch(key)
	if groups == nil {
		return nil
	}
	for _, group := range groups[1:] {
		if group == "" {
			continue
		}
		n, err := strconv.Atoi(group)
		if err != nil {
			continue
		}
		return &n
	}
	return nil
}
