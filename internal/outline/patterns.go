package outline

import "regexp"

// rule is one row of an ordered pattern table. For level tables the level is
// the heading level the row assigns; for filter tables it is unused.
type rule struct {
	re    *regexp.Regexp
	level int
}

type ruleSet []rule

func rules(level int, exprs ...string) ruleSet {
	out := make(ruleSet, 0, len(exprs))
	for _, e := range exprs {
		out = append(out, rule{re: regexp.MustCompile(e), level: level})
	}
	return out
}

func concat(sets ...ruleSet) ruleSet {
	var out ruleSet
	for _, s := range sets {
		out = append(out, s...)
	}
	return out
}

// match returns the level of the first row matching s.
func (rs ruleSet) match(s string) (int, bool) {
	for _, r := range rs {
		if r.re.MatchString(s) {
			return r.level, true
		}
	}
	return 0, false
}

func (rs ruleSet) any(s string) bool {
	_, ok := rs.match(s)
	return ok
}

// headingSkip filters boilerplate that never forms a heading. Evaluated on
// lower-cased text.
var headingSkip = rules(0,
	`^\.+$`,
	`^\d+\.?\s*$`,
	`^[a-z]\)?\s*$`,
	`^page \d+`,
	`^copyright`,
	`^version \d+`,
	`^\d{1,2}/\d{1,2}/\d{4}$`,
	`^www\.`,
	`^http`,
	`^[\w.+-]+@[\w-]+(\.[\w-]+)+$`,
	`^\d+$`,
	`^[ivx]+$`,
)

// titleSkip filters first-page fragments that cannot be a formal title.
// Evaluated on lower-cased text.
var titleSkip = rules(0,
	`^\d+$`,
	`^page \d+`,
	`^copyright`,
	`^version`,
	`^\d+\.\s`,
	`^chapter \d+`,
	`^section \d+`,
	`^revision history`,
	`^table of contents`,
	`^acknowledgements`,
)
