// Package inflect provides the Rails-style word-form conversions used by the
// route and controller resolvers. The rule tables are naming heuristics, not
// a linguistically exhaustive inflector: first match wins, case-insensitive.
package inflect

import (
	"regexp"
	"strings"
)

// irregulars maps singular forms to plurals that no rule covers
var irregulars = map[string]string{
	"person":   "people",
	"child":    "children",
	"man":      "men",
	"woman":    "women",
	"tooth":    "teeth",
	"foot":     "feet",
	"mouse":    "mice",
	"goose":    "geese",
	"ox":       "oxen",
	"datum":    "data",
	"medium":   "media",
	"analysis": "analyses",
	"crisis":   "crises",
	"thesis":   "theses",
}

var irregularsReverse = func() map[string]string {
	out := make(map[string]string, len(irregulars))
	for singular, plural := range irregulars {
		out[plural] = singular
	}
	return out
}()

// uncountable words keep the same form in both directions
var uncountable = map[string]struct{}{
	"equipment":   {},
	"information": {},
	"rice":        {},
	"money":       {},
	"species":     {},
	"series":      {},
	"fish":        {},
	"sheep":       {},
	"jeans":       {},
	"police":      {},
	"data":        {},
	"feedback":    {},
	"status":      {},
	"metadata":    {},
}

type rule struct {
	pattern *regexp.Regexp
	replace string
}

func newRule(pattern, replace string) rule {
	return rule{pattern: regexp.MustCompile("(?i)" + pattern), replace: replace}
}

var pluralRules = []rule{
	newRule(`(quiz)$`, "${1}zes"),
	newRule(`^(oxen)$`, "${1}"),
	newRule(`^(ox)$`, "${1}en"),
	newRule(`(m|l)ice$`, "${1}ice"),
	newRule(`(m|l)ouse$`, "${1}ice"),
	newRule(`(pea)se$`, "${1}se"),
	newRule(`(pea)$`, "${1}se"),
	newRule(`(matr|vert|append)ix$`, "${1}ices"),
	newRule(`(x|ch|ss|sh)$`, "${1}es"),
	newRule(`([^aeiouy]|qu)y$`, "${1}ies"),
	newRule(`(hive)$`, "${1}s"),
	newRule(`([^f])fe$`, "${1}ves"),
	newRule(`([lr])f$`, "${1}ves"),
	newRule(`sis$`, "ses"),
	newRule(`([ti])a$`, "${1}a"),
	newRule(`([ti])um$`, "${1}a"),
	newRule(`(buffal|tomat|volcan)o$`, "${1}oes"),
	newRule(`(bu|mis|gas)s$`, "${1}ses"),
	newRule(`(alias|status)$`, "${1}es"),
	newRule(`(octop|vir|radi|nucle|fung|cact|stimul)us$`, "${1}i"),
	newRule(`(octop|vir|radi|nucle|fung|cact|stimul)i$`, "${1}i"),
	newRule(`(ax|test)is$`, "${1}es"),
	newRule(`s$`, "s"),
	newRule(`$`, "s"),
}

var singularRules = []rule{
	newRule(`(database)s$`, "${1}"),
	newRule(`(quiz)zes$`, "${1}"),
	newRule(`(matr)ices$`, "${1}ix"),
	newRule(`(vert|append)ices$`, "${1}ix"),
	newRule(`^(ox)en`, "${1}"),
	newRule(`(alias|status)es$`, "${1}"),
	newRule(`(octop|vir|radi|nucle|fung|cact|stimul)i$`, "${1}us"),
	newRule(`(cris|ax|test)es$`, "${1}is"),
	newRule(`(shoe)s$`, "${1}"),
	newRule(`(o)es$`, "${1}"),
	newRule(`(bus)es$`, "${1}"),
	newRule(`(m|l)ice$`, "${1}ouse"),
	newRule(`(x|ch|ss|sh)es$`, "${1}"),
	newRule(`(m)ovies$`, "${1}ovie"),
	newRule(`(s)eries$`, "${1}eries"),
	newRule(`([^aeiouy]|qu)ies$`, "${1}y"),
	newRule(`([lr])ves$`, "${1}f"),
	newRule(`(tive)s$`, "${1}"),
	newRule(`(hive)s$`, "${1}"),
	newRule(`([^f])ves$`, "${1}fe"),
	newRule(`(t)he(sis|ses)$`, "${1}hesis"),
	newRule(`(analy)(sis|ses)$`, "${1}sis"),
	newRule(`([ti])a$`, "${1}um"),
	newRule(`((a)naly|(b)a|(d)iagno|(p)arenthe|(p)rogno|(s)ynop|(t)he)ses$`, "${1}${2}sis"),
	newRule(`(n)ews$`, "${1}ews"),
	newRule(`s$`, ""),
}

// Pluralize converts a singular word to its plural form
func Pluralize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if _, ok := uncountable[lower]; ok {
		return word
	}
	if plural, ok := irregulars[lower]; ok {
		return plural
	}
	for _, r := range pluralRules {
		if r.pattern.MatchString(word) {
			return r.pattern.ReplaceAllString(word, r.replace)
		}
	}
	return word + "s"
}

// Singularize converts a plural word to its singular form
func Singularize(word string) string {
	if word == "" {
		return word
	}
	lower := strings.ToLower(word)
	if _, ok := uncountable[lower]; ok {
		return word
	}
	if singular, ok := irregularsReverse[lower]; ok {
		return singular
	}
	for _, r := range singularRules {
		if r.pattern.MatchString(word) {
			return r.pattern.ReplaceAllString(word, r.replace)
		}
	}
	return word
}

var (
	underscoreAcronym  = regexp.MustCompile(`([A-Z]+)([A-Z][a-z])`)
	underscoreBoundary = regexp.MustCompile(`([a-z\d])([A-Z])`)
)

// Underscore converts a qualified CamelCase constant to its snake_case path
// form: Api::V1::BaseController -> api/v1/base_controller
func Underscore(camel string) string {
	s := underscoreAcronym.ReplaceAllString(camel, "${1}_${2}")
	s = underscoreBoundary.ReplaceAllString(s, "${1}_${2}")
	s = strings.ReplaceAll(s, "-", "_")
	s = strings.ReplaceAll(s, "::", "/")
	return strings.ToLower(s)
}

// Camelize converts a snake_case path to a qualified CamelCase constant:
// api/v1/users -> Api::V1::Users
func Camelize(snake string) string {
	parts := strings.Split(snake, "/")
	for i, part := range parts {
		words := strings.Split(part, "_")
		for j, word := range words {
			words[j] = capitalize(word)
		}
		parts[i] = strings.Join(words, "")
	}
	return strings.Join(parts, "::")
}

func capitalize(word string) string {
	if word == "" {
		return word
	}
	return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
}
