package parsing

import (
	"strings"
	"unicode"
)

// skillNormalizations maps common skill name variants to canonical names
var skillNormalizations = map[string]string{
	"golang":     "Go",
	"go lang":    "Go",
	"javascript": "JavaScript",
	"js":         "JavaScript",
	"typescript": "TypeScript",
	"ts":         "TypeScript",
	"k8s":        "Kubernetes",
	"python3":    "Python",
	"ml":         "Machine Learning",
	"ai":         "AI",
	"sql":        "SQL",
	"excel":      "Excel",
	"node.js":    "Node.js",
	"nodejs":     "Node.js",
}

// NormalizeSkillName normalizes a skill name to its canonical form. Acronyms
// written in capitals are kept as they are.
func NormalizeSkillName(skillName string) string {
	normalized := strings.TrimSpace(skillName)
	if normalized == "" {
		return ""
	}

	lower := strings.ToLower(normalized)
	if canonical, ok := skillNormalizations[lower]; ok {
		return canonical
	}

	if normalized == lower && !strings.Contains(normalized, " ") {
		r := []rune(normalized)
		r[0] = unicode.ToUpper(r[0])
		return string(r)
	}
	return normalized
}

// SplitSkills splits a free-form skills list on commas, semicolons and new
// lines, normalizing and de-duplicating names. Order of first mention is kept.
func SplitSkills(list string) []string {
	fields := strings.FieldsFunc(list, func(r rune) bool {
		return r == ',' || r == ';' || r == '\n'
	})

	skills := make([]string, 0, len(fields))
	seen := make(map[string]bool)
	for _, f := range fields {
		name := NormalizeSkillName(f)
		if name == "" {
			continue
		}
		key := strings.ToLower(name)
		if seen[key] {
			continue
		}
		seen[key] = true
		skills = append(skills, name)
	}
	return skills
}
