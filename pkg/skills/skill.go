// Package skills discovers the markdown behavioral guides that drive the
// safe-pilot agent: TDD sequencing, pre-completion verification, and commit
// hygiene. Each skill is a directory containing a SKILL.md file whose YAML
// frontmatter names and describes the guide.
package skills

// Skill represents a discovered skill with its metadata.
type Skill struct {
	Name        string // Unique name from frontmatter
	Description string // Brief description of the behavior the skill instructs
	Directory   string // Full path to the skill directory
	Content     string // Body of SKILL.md without the frontmatter
}

// Metadata represents the YAML frontmatter in SKILL.md files.
type Metadata struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}
