// Package glossary loads the static procedural rule glossary: stage
// definitions with rule citations, ordered action-text pattern tables,
// and vote thresholds.
//
// The glossary is loaded once per process and is immutable afterwards,
// making it safe for concurrent readers without locking. It is an
// explicitly constructed value passed by reference to every component -
// there is no hidden package-level table.
package glossary

import (
	_ "embed"
	"fmt"
	"os"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/statehouse/rollcall/internal/model"
)

//go:embed glossary.yaml
var defaultGlossaryYAML []byte

// StageDef holds the rule citations for one lifecycle stage.
type StageDef struct {
	SenateRule string   `yaml:"senate_rule"`
	HouseRule  string   `yaml:"house_rule"`
	NextStages []string `yaml:"next_stages"`
}

// Pattern is one tagged match rule in a category's ordered pattern list.
type Pattern struct {
	Text string `yaml:"text"`
	Kind string `yaml:"kind"` // "prefix" or "contains"
}

// Category is an ordered pattern list for one action category. The order
// of categories in the glossary file is the match priority order.
type Category struct {
	Name     string    `yaml:"name"`
	Patterns []Pattern `yaml:"patterns"`
}

// Glossary is the full rule table. Immutable after Load.
type Glossary struct {
	Version    int                       `yaml:"version"`
	Stages     map[string]StageDef       `yaml:"stages"`
	Categories []Category                `yaml:"categories"`
	Thresholds map[string]map[string]int `yaml:"thresholds"`
}

// Fallback vote thresholds used when the glossary file predates a
// threshold key. Some deployments run against older glossaries, so this
// safety net must stay even though it can mask a missing-data condition.
// TODO: decide with real data whether an absent threshold key should be
// a ConfigurationError instead.
var fallbackThresholds = map[model.Chamber]map[string]int{
	model.ChamberSenate: {"simple_majority": 30, "three_fifths": 36},
	model.ChamberHouse:  {"simple_majority": 60, "three_fifths": 71},
}

// Loader loads a glossary exactly once for the process lifetime.
// A second Load call returns the memoized result and never re-reads
// storage.
type Loader struct {
	path string

	once sync.Once
	g    *Glossary
	err  error
}

// NewLoader creates a loader for the glossary at path. An empty path
// selects the embedded default table.
func NewLoader(path string) *Loader {
	return &Loader{path: path}
}

// Load returns the glossary, reading and validating it on first call.
// Any failure is a *ConfigurationError and is fatal: the same error is
// returned on every subsequent call.
func (l *Loader) Load() (*Glossary, error) {
	l.once.Do(func() {
		l.g, l.err = load(l.path)
	})
	return l.g, l.err
}

func load(path string) (*Glossary, error) {
	raw := defaultGlossaryYAML
	source := "embedded"
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, &ConfigurationError{
				Code:    ErrCodeMissing,
				Path:    path,
				Message: "glossary file not readable",
				Err:     err,
			}
		}
		raw = b
		source = path
	}

	// Schema validation first: a structurally bad file should fail with
	// the CUE diagnostic, not a confusing decode error.
	if err := validateSchema(raw, source); err != nil {
		return nil, err
	}

	var g Glossary
	if err := yaml.Unmarshal(raw, &g); err != nil {
		return nil, &ConfigurationError{
			Code:    ErrCodeMalformed,
			Path:    source,
			Message: "glossary YAML decode failed",
			Err:     err,
		}
	}

	return &g, nil
}

// StageRule returns the rule citation for a stage. With an empty chamber
// the Senate and House citations are concatenated with "; ".
// An unknown stage is a ConfigurationError: every stage the state machine
// references must exist in the glossary.
func (g *Glossary) StageRule(stage string, chamber model.Chamber) (string, error) {
	def, ok := g.Stages[stage]
	if !ok {
		return "", &ConfigurationError{
			Code:    ErrCodeStageUnknown,
			Message: fmt.Sprintf("stage %q not defined in glossary", stage),
		}
	}
	switch chamber {
	case model.ChamberSenate:
		return def.SenateRule, nil
	case model.ChamberHouse:
		return def.HouseRule, nil
	default:
		return def.SenateRule + "; " + def.HouseRule, nil
	}
}

// VotesRequired returns the vote threshold for a kind ("simple_majority",
// "three_fifths", "veto_override") in a chamber. Missing glossary entries
// fall back to the hardcoded chamber defaults.
func (g *Glossary) VotesRequired(kind string, chamber model.Chamber) int {
	if byChamber, ok := g.Thresholds[kind]; ok {
		if n, ok := byChamber[string(chamber)]; ok {
			return n
		}
	}
	if defaults, ok := fallbackThresholds[chamber]; ok {
		if n, ok := defaults[kind]; ok {
			return n
		}
		// Unknown kind: fall back to the chamber's simple majority.
		return defaults["simple_majority"]
	}
	return 0
}

// VerifyStages checks that every stage in required is defined.
// Called by the lifecycle machine at construction; a missing entry is a
// fatal configuration error, not a soft warning.
func (g *Glossary) VerifyStages(required []string) error {
	for _, s := range required {
		if _, ok := g.Stages[s]; !ok {
			return &ConfigurationError{
				Code:    ErrCodeStageUnknown,
				Message: fmt.Sprintf("stage %q required by state machine is missing", s),
			}
		}
	}
	return nil
}

// CategoryPatterns returns the ordered pattern list for a category name,
// or nil if the glossary does not define it.
func (g *Glossary) CategoryPatterns(name string) []Pattern {
	for _, c := range g.Categories {
		if c.Name == name {
			return c.Patterns
		}
	}
	return nil
}
