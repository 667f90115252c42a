package parsing

import (
	"regexp"
	"strings"
	"sync"

	"github.com/jonathan/career-assistant/internal/types"
)

// Section vocabularies for the three narrative tasks, in presentation order.
var (
	CareerPathVocabulary = []string{
		"short_term_prospects",
		"long_term_prospects",
		"challenges",
		"growth_areas",
	}
	SkillPlanVocabulary = []string{
		"core_skills",
		"skill_gaps",
		"learning_resources",
		"timeline",
	}
	IndustryForecastVocabulary = []string{
		"industries",
		"technological_trends",
		"market_shifts",
		"potential_disruptions",
		"career_implications",
	}
)

var (
	tagPatternsMu sync.RWMutex
	tagPatterns   = make(map[string]*regexp.Regexp)
)

func tagPattern(tag string) *regexp.Regexp {
	tagPatternsMu.RLock()
	re, ok := tagPatterns[tag]
	tagPatternsMu.RUnlock()
	if ok {
		return re
	}

	quoted := regexp.QuoteMeta(tag)
	re = regexp.MustCompile(`(?s)<` + quoted + `>(.*?)</` + quoted + `>`)

	tagPatternsMu.Lock()
	tagPatterns[tag] = re
	tagPatternsMu.Unlock()
	return re
}

// ExtractSections pulls the first <tag>...</tag> block for each vocabulary tag
// out of text. Blocks are trimmed; tags that do not appear are left out of the
// result and reported by its Missing method.
func ExtractSections(text string, vocabulary []string) types.Sections {
	sections := types.NewSections(vocabulary)
	for _, tag := range vocabulary {
		if tag == "" {
			continue
		}
		if m := tagPattern(tag).FindStringSubmatch(text); m != nil {
			sections.Blocks[tag] = strings.TrimSpace(m[1])
		}
	}
	return sections
}
