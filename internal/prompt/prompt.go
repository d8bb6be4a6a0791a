// Package prompt loads named prompt templates from a YAML file into a typed,
// caller-owned registry. There is no process-wide cache: callers construct a
// Registry once and pass it where it is needed, which keeps tests hermetic.
package prompt

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Roles the QA pipeline requires in every prompt file.
const (
	RoleExtract = "extract"
	RoleVerify  = "verify"
)

// Prompt is one named prompt role: a system prompt and a user template with
// {question}, {context}, {answer} and {sentinel} placeholders.
type Prompt struct {
	System       string `yaml:"system"`
	UserTemplate string `yaml:"user_template"`
}

// Render substitutes placeholder values into the user template.
func (p Prompt) Render(vars map[string]string) string {
	out := p.UserTemplate
	for name, value := range vars {
		out = strings.ReplaceAll(out, "{"+name+"}", value)
	}
	return out
}

// Registry holds validated prompts keyed by role.
type Registry struct {
	prompts map[string]Prompt
}

// Load reads a prompt YAML file and validates that the required roles are
// present and non-empty. Missing or blank roles fail here, not at query time.
func Load(path string, required ...string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read prompt file: %w", err)
	}
	return Parse(data, required...)
}

// Parse builds a registry from raw YAML.
func Parse(data []byte, required ...string) (*Registry, error) {
	var prompts map[string]Prompt
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return nil, fmt.Errorf("decode prompt yaml: %w", err)
	}

	for _, role := range required {
		p, ok := prompts[role]
		if !ok {
			return nil, fmt.Errorf("missing prompt role %q", role)
		}
		if strings.TrimSpace(p.System) == "" {
			return nil, fmt.Errorf("prompt role %q has empty system prompt", role)
		}
		if strings.TrimSpace(p.UserTemplate) == "" {
			return nil, fmt.Errorf("prompt role %q has empty user template", role)
		}
	}

	return &Registry{prompts: prompts}, nil
}

// Get returns the prompt for a role. The role must have been validated at
// load time; unknown roles are a programming error surfaced as an error here.
func (r *Registry) Get(role string) (Prompt, error) {
	p, ok := r.prompts[role]
	if !ok {
		return Prompt{}, fmt.Errorf("unknown prompt role %q", role)
	}
	return p, nil
}
