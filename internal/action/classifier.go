// Package action classifies free-text legislative action strings into
// structured categories.
//
// Classification is ordered tagged-pattern matching, not dispatch on
// types: the glossary supplies, per category, an ordered list of prefix
// or substring rules, and the category order in the glossary is the
// match priority. Deadline re-referral wording ("Rule 19(a)", "Rule
// 3-9(b)") is highly specific and is checked before committee-report
// patterns, which are checked before generic tabling/consent patterns.
// A string matching several categories takes the first in priority
// order.
//
// Classified values are derived on demand from the raw text; they are
// never persisted independently of the source action, so a glossary
// update re-classifies everything on the next run.
package action

import (
	"strings"

	"github.com/statehouse/rollcall/internal/glossary"
	"github.com/statehouse/rollcall/internal/model"
)

// Category is an action-text category. The values mirror the category
// names in the rule glossary.
type Category string

const (
	CategoryDeadlineReReferral Category = "deadline_rereferral"
	CategoryReportFavorable    Category = "committee_report_favorable"
	CategoryReportUnfavorable  Category = "committee_report_unfavorable"
	CategoryTabling            Category = "tabling"
	CategoryConsentCalendar    Category = "consent_calendar"
	CategoryFiled              Category = "filed"
	CategoryFirstReading       Category = "first_reading"
	CategoryReferred           Category = "referred_to_committee"
	CategoryFloorPass          Category = "floor_pass"
	CategoryFloorFail          Category = "floor_fail"
	CategoryCrossedChambers    Category = "crossed_chambers"
	CategoryPassedBoth         Category = "passed_both"
	CategorySentToGovernor     Category = "sent_to_governor"
	CategorySigned             Category = "signed"
	CategoryVetoed             Category = "vetoed"

	// CategoryProcedural is the default for text matching no pattern.
	// It is not an error: most action strings are routine procedure.
	CategoryProcedural Category = "procedural"
)

// rollbackCategories return a bill to an earlier procedural position
// without killing it. Re-referral sends the bill back to an assignment or
// rules committee; a tabled bill can be taken off the table by a later
// vote. Both are explicitly NON-terminal.
var rollbackCategories = map[Category]bool{
	CategoryDeadlineReReferral: true,
	CategoryTabling:            true,
}

// terminalCategories can end a bill's lifecycle.
var terminalCategories = map[Category]bool{
	CategorySigned: true,
	CategoryVetoed: true,
}

// Classified pairs an action record with its derived category and flags.
type Classified struct {
	model.ActionRecord
	Category            Category
	IsTerminalCandidate bool
	IsRollback          bool
}

type compiledPattern struct {
	text   string
	prefix bool
}

type compiledCategory struct {
	name     Category
	patterns []compiledPattern
}

// Classifier matches action text against the glossary pattern tables.
// Immutable after New; safe for concurrent use.
type Classifier struct {
	order []compiledCategory
}

// New compiles the glossary's category pattern tables. Pattern text is
// lowercased once here so Classify only normalizes the input string.
func New(g *glossary.Glossary) *Classifier {
	order := make([]compiledCategory, 0, len(g.Categories))
	for _, cat := range g.Categories {
		cc := compiledCategory{name: Category(cat.Name)}
		for _, p := range cat.Patterns {
			cc.patterns = append(cc.patterns, compiledPattern{
				text:   normalize(p.Text),
				prefix: p.Kind == "prefix",
			})
		}
		order = append(order, cc)
	}
	return &Classifier{order: order}
}

// Classify returns the category for one raw action string.
// Matching is case-insensitive over whitespace-normalized text. Text
// matching nothing is CategoryProcedural, never an error.
func (c *Classifier) Classify(raw string) Category {
	text := normalize(raw)
	if text == "" {
		return CategoryProcedural
	}
	for _, cat := range c.order {
		for _, p := range cat.patterns {
			if p.prefix {
				if strings.HasPrefix(text, p.text) {
					return cat.name
				}
			} else if strings.Contains(text, p.text) {
				return cat.name
			}
		}
	}
	return CategoryProcedural
}

// ClassifyRecord classifies an action record and attaches the derived
// rollback/terminal flags.
func (c *Classifier) ClassifyRecord(rec model.ActionRecord) Classified {
	cat := c.Classify(rec.RawText)
	return Classified{
		ActionRecord:        rec,
		Category:            cat,
		IsTerminalCandidate: terminalCategories[cat],
		IsRollback:          rollbackCategories[cat],
	}
}

// ClassifyAll classifies a bill's chronological action list in order.
func (c *Classifier) ClassifyAll(recs []model.ActionRecord) []Classified {
	out := make([]Classified, len(recs))
	for i, rec := range recs {
		out[i] = c.ClassifyRecord(rec)
	}
	return out
}

// normalize lowercases and collapses runs of whitespace to single spaces.
func normalize(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
