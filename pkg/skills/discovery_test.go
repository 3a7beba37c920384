package skills

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeSkill(t *testing.T, dir, name, description, body string) string {
	t.Helper()
	skillDir := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(skillDir, 0o755))
	content := "---\nname: " + name + "\ndescription: " + description + "\n---\n\n" + body
	require.NoError(t, os.WriteFile(filepath.Join(skillDir, "SKILL.md"), []byte(content), 0o644))
	return skillDir
}

func TestNewDiscovery(t *testing.T) {
	t.Run("with default dirs", func(t *testing.T) {
		discovery, err := NewDiscovery()
		require.NoError(t, err)
		assert.Len(t, discovery.skillDirs, 2)
	})

	t.Run("with custom dirs", func(t *testing.T) {
		customDirs := []string{"/tmp/skills1", "/tmp/skills2"}
		discovery, err := NewDiscovery(WithSkillDirs(customDirs...))
		require.NoError(t, err)
		assert.Equal(t, customDirs, discovery.skillDirs)
	})
}

func TestDiscoverSkills(t *testing.T) {
	tmpDir := t.TempDir()

	committing := writeSkill(t, tmpDir, "safe-pilot-committing",
		"Sequence verification and commit hygiene before committing",
		"# Safe Pilot Committing\n\nAlways emit the recommendation block.\n")
	writeSkill(t, tmpDir, "tdd-sequencing",
		"Drive changes test-first",
		"# TDD Sequencing\n\nRed, green, refactor.\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Len(t, skills, 2)

	skill, exists := skills["safe-pilot-committing"]
	require.True(t, exists)
	assert.Equal(t, "safe-pilot-committing", skill.Name)
	assert.Equal(t, "Sequence verification and commit hygiene before committing", skill.Description)
	assert.Equal(t, committing, skill.Directory)
	assert.Contains(t, skill.Content, "# Safe Pilot Committing")
	assert.NotContains(t, skill.Content, "description:")
}

func TestDiscoverSkillsPrecedence(t *testing.T) {
	localDir := t.TempDir()
	globalDir := t.TempDir()

	writeSkill(t, localDir, "tdd-sequencing", "local copy", "local body\n")
	writeSkill(t, globalDir, "tdd-sequencing", "global copy", "global body\n")

	discovery, err := NewDiscovery(WithSkillDirs(localDir, globalDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Equal(t, "local copy", skills["tdd-sequencing"].Description)
}

func TestDiscoverSkillsSkipsInvalid(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing frontmatter
	noMeta := filepath.Join(tmpDir, "no-meta")
	require.NoError(t, os.MkdirAll(noMeta, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noMeta, "SKILL.md"), []byte("# Just a heading\n"), 0o644))

	// Missing description
	noDesc := filepath.Join(tmpDir, "no-desc")
	require.NoError(t, os.MkdirAll(noDesc, 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(noDesc, "SKILL.md"), []byte("---\nname: no-desc\n---\nbody\n"), 0o644))

	// Plain file at the top level, not a skill directory
	require.NoError(t, os.WriteFile(filepath.Join(tmpDir, "README.md"), []byte("readme"), 0o644))

	writeSkill(t, tmpDir, "valid-skill", "a valid skill", "body\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	require.Len(t, skills, 1)
	assert.Contains(t, skills, "valid-skill")
}

func TestDiscoverSkillsMissingDir(t *testing.T) {
	discovery, err := NewDiscovery(WithSkillDirs(filepath.Join(t.TempDir(), "does-not-exist")))
	require.NoError(t, err)

	skills, err := discovery.DiscoverSkills()
	require.NoError(t, err)
	assert.Empty(t, skills)
}

func TestGetSkill(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "verification", "pre-completion verification", "body\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	skill, err := discovery.GetSkill("verification")
	require.NoError(t, err)
	assert.Equal(t, "verification", skill.Name)

	_, err = discovery.GetSkill("missing")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestListSkillNames(t *testing.T) {
	tmpDir := t.TempDir()
	writeSkill(t, tmpDir, "one", "first", "body\n")
	writeSkill(t, tmpDir, "two", "second", "body\n")

	discovery, err := NewDiscovery(WithSkillDirs(tmpDir))
	require.NoError(t, err)

	names, err := discovery.ListSkillNames()
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{"one", "two"}, names)
}

func TestExtractBodyContent(t *testing.T) {
	t.Run("strips frontmatter", func(t *testing.T) {
		content := "---\nname: x\ndescription: y\n---\n\n# Body\n"
		assert.Equal(t, "# Body\n", extractBodyContent(content))
	})

	t.Run("no frontmatter", func(t *testing.T) {
		content := "# Body only\n"
		assert.Equal(t, content, extractBodyContent(content))
	})

	t.Run("unterminated frontmatter", func(t *testing.T) {
		content := "---\nname: x\n"
		assert.Equal(t, content, extractBodyContent(content))
	})
}
