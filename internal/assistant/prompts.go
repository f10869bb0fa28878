package assistant

import (
	"bufio"
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// PromptConfig describes a prompt template loaded from a markdown file with
// YAML frontmatter. The body becomes the template when the frontmatter does
// not carry one.
type PromptConfig struct {
	Slug        string `yaml:"slug"`
	Name        string `yaml:"name,omitempty"`
	Description string `yaml:"description,omitempty"`
	Template    string `yaml:"template,omitempty"`
}

// Prompt wraps a parsed prompt template with its source path.
type Prompt struct {
	Config PromptConfig
	Source string
}

// Render substitutes {{variable}} placeholders.
func (p *Prompt) Render(vars map[string]string) string {
	out := p.Config.Template
	for key, value := range vars {
		out = strings.ReplaceAll(out, "{{"+key+"}}", value)
	}
	return out
}

// LoadPrompt parses a prompt definition from markdown bytes.
func LoadPrompt(source string, data []byte) (*Prompt, error) {
	config, body, err := parseFrontmatter(data)
	if err != nil {
		return nil, fmt.Errorf("parse prompt %s: %w", source, err)
	}

	if strings.TrimSpace(config.Template) == "" {
		config.Template = strings.TrimSpace(body)
	}
	if strings.TrimSpace(config.Template) == "" {
		return nil, fmt.Errorf("prompt %s has no template body", source)
	}
	if strings.TrimSpace(config.Slug) == "" {
		config.Slug = strings.TrimSuffix(filepath.Base(source), filepath.Ext(source))
	}

	return &Prompt{Config: config, Source: source}, nil
}

// LoadPromptDir reads all .md prompt files from a directory, keyed by slug.
// A missing directory yields an empty map so built-in templates apply.
func LoadPromptDir(dir string) (map[string]*Prompt, error) {
	prompts := make(map[string]*Prompt)
	if strings.TrimSpace(dir) == "" {
		return prompts, nil
	}

	entries, err := filepath.Glob(filepath.Join(dir, "*.md"))
	if err != nil {
		return nil, fmt.Errorf("scan prompts: %w", err)
	}

	for _, path := range entries {
		data, err := os.ReadFile(path) // #nosec G304 -- prompt path is user-provided
		if err != nil {
			return nil, fmt.Errorf("read prompt %s: %w", path, err)
		}
		prompt, err := LoadPrompt(path, data)
		if err != nil {
			return nil, err
		}
		prompts[prompt.Config.Slug] = prompt
	}
	return prompts, nil
}

func parseFrontmatter(data []byte) (PromptConfig, string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return PromptConfig{}, "", fmt.Errorf("empty prompt")
	}

	lines := bufio.NewScanner(bytes.NewReader(trimmed))
	lines.Split(bufio.ScanLines)

	var (
		frontmatter []string
		body        []string
		inFront     bool
		headerSeen  bool
	)

	for lines.Scan() {
		line := lines.Text()
		switch {
		case !headerSeen && strings.TrimSpace(line) == "---":
			headerSeen = true
			inFront = true
		case headerSeen && inFront && strings.TrimSpace(line) == "---":
			inFront = false
		default:
			if inFront {
				frontmatter = append(frontmatter, line)
			} else {
				body = append(body, line)
			}
		}
	}
	if err := lines.Err(); err != nil {
		return PromptConfig{}, "", err
	}

	var cfg PromptConfig
	if headerSeen {
		if err := yaml.Unmarshal([]byte(strings.Join(frontmatter, "\n")), &cfg); err != nil {
			return PromptConfig{}, "", fmt.Errorf("invalid frontmatter: %w", err)
		}
	}

	return cfg, strings.Join(body, "\n"), nil
}

// Built-in prompt templates used when no prompt directory override exists.
const (
	pricingPromptSlug = "pricing"
	titlePromptSlug   = "title"
)

var builtinPrompts = map[string]string{
	pricingPromptSlug: `You are a resale pricing expert. Suggest a competitive asking price for this item on a resale marketplace.

Item: {{title}}
Category: {{category}}
Condition: {{condition}}
Cost paid: ${{cost}}
Notes: {{notes}}

Respond in exactly this format:
PRICE: $<amount>
REASONING: <one or two sentences>
CONFIDENCE: <low|medium|high>`,
	titlePromptSlug: `You are an e-commerce SEO expert. Rewrite this listing title to maximize search visibility. Keep it under 80 characters, front-load the most searched keywords, and do not invent details.

Current title: {{title}}
Category: {{category}}
Condition: {{condition}}
Notes: {{notes}}

Respond in exactly this format:
TITLE: <optimized title>
KEYWORDS: <comma separated keywords used>
SCORE: <0-100 estimate of search strength>`,
}

// promptFor returns the directory override for slug, or the built-in.
func promptFor(prompts map[string]*Prompt, slug string) *Prompt {
	if p, ok := prompts[slug]; ok {
		return p
	}
	return &Prompt{
		Config: PromptConfig{Slug: slug, Template: builtinPrompts[slug]},
		Source: "builtin",
	}
}
