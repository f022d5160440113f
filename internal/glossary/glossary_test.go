package glossary

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/statehouse/rollcall/internal/model"
)

func TestLoader_EmbeddedDefault(t *testing.T) {
	g, err := NewLoader("").Load()
	require.NoError(t, err)
	require.NotNil(t, g)
	assert.NotEmpty(t, g.Stages)
	assert.NotEmpty(t, g.Categories)
}

func TestLoader_LoadOnce(t *testing.T) {
	l := NewLoader("")
	first, err := l.Load()
	require.NoError(t, err)
	second, err := l.Load()
	require.NoError(t, err)
	assert.Same(t, first, second, "second Load must return the memoized table")
}

func TestLoader_MissingFileIsConfigurationError(t *testing.T) {
	_, err := NewLoader("/nonexistent/glossary.yaml").Load()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestLoader_SchemaRejectsBadKind(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "bad.yaml")
	bad := `
version: 1
stages:
  FILED: { senate_rule: "SR 1", house_rule: "HR 1", next_stages: [] }
categories:
  - name: tabling
    patterns:
      - { text: "tabled", kind: regex }
thresholds: {}
`
	require.NoError(t, os.WriteFile(path, []byte(bad), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestLoader_MalformedYAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "mangled.yaml")
	require.NoError(t, os.WriteFile(path, []byte("stages: [unclosed"), 0o644))

	_, err := NewLoader(path).Load()
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestStageRule_BothChambers(t *testing.T) {
	g := mustLoad(t)

	senate, err := g.StageRule("IN_COMMITTEE", model.ChamberSenate)
	require.NoError(t, err)
	house, err := g.StageRule("IN_COMMITTEE", model.ChamberHouse)
	require.NoError(t, err)
	both, err := g.StageRule("IN_COMMITTEE", "")
	require.NoError(t, err)

	assert.Equal(t, senate+"; "+house, both)
}

func TestStageRule_UnknownStageIsFatal(t *testing.T) {
	g := mustLoad(t)
	_, err := g.StageRule("CONFERENCE_COMMITTEE", model.ChamberSenate)
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestVotesRequired_FromTable(t *testing.T) {
	g := mustLoad(t)
	assert.Equal(t, 30, g.VotesRequired("simple_majority", model.ChamberSenate))
	assert.Equal(t, 71, g.VotesRequired("three_fifths", model.ChamberHouse))
}

func TestVotesRequired_FallbackWhenKeyAbsent(t *testing.T) {
	// A glossary predating newer threshold keys must still answer via
	// the hardcoded chamber defaults.
	g := &Glossary{Thresholds: map[string]map[string]int{}}
	assert.Equal(t, 30, g.VotesRequired("simple_majority", model.ChamberSenate))
	assert.Equal(t, 60, g.VotesRequired("simple_majority", model.ChamberHouse))
	assert.Equal(t, 36, g.VotesRequired("three_fifths", model.ChamberSenate))
	assert.Equal(t, 71, g.VotesRequired("three_fifths", model.ChamberHouse))
}

func TestVerifyStages(t *testing.T) {
	g := mustLoad(t)
	require.NoError(t, g.VerifyStages([]string{"FILED", "GOVERNOR", "SIGNED"}))

	err := g.VerifyStages([]string{"FILED", "NO_SUCH_STAGE"})
	require.Error(t, err)
	assert.True(t, IsConfigurationError(err))
}

func TestCategoryPatterns_PriorityOrderPreserved(t *testing.T) {
	g := mustLoad(t)
	require.NotEmpty(t, g.Categories)
	assert.Equal(t, "deadline_rereferral", g.Categories[0].Name,
		"deadline re-referral patterns must be checked first")
}

func mustLoad(t *testing.T) *Glossary {
	t.Helper()
	g, err := NewLoader("").Load()
	require.NoError(t, err)
	return g
}
