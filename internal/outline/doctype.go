package outline

import "strings"

// DocType selects the title extraction strategy.
type DocType string

const (
	Standard   DocType = "standard"
	Catalog    DocType = "catalog_listing"
	Invitation DocType = "invitation_flyer"
	Form       DocType = "form_document"
	Formal     DocType = "formal_document"
)

var docTypes = []struct {
	typ      DocType
	patterns ruleSet
}{
	{Catalog, rules(0,
		`pathway`, `course offerings?`, `elective`, `program options?`,
		`what.*say`, `career paths?`, `academic.*options`,
	)},
	{Invitation, rules(0,
		`hope to see you`, `rsvp`, `www\.`, `\.com`, `address:`,
		`party`, `invitation`, `parents or guardians`,
	)},
	{Form, rules(0,
		`application form`, `signature`, `government servant`,
		`permanent or temporary`, `ltc advance`,
	)},
	{Formal, rules(0,
		`overview`, `foundation level`, `revision history`,
		`table of contents`, `acknowledgements`, `references`,
	)},
}

// ClassifyDocument returns the first category with any pattern found in text.
func ClassifyDocument(text string) DocType {
	text = strings.ToLower(text)
	for _, dt := range docTypes {
		if dt.patterns.any(text) {
			return dt.typ
		}
	}
	return Standard
}
