package assistant

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoadPromptFrontmatter(t *testing.T) {
	data := []byte(`---
slug: pricing
name: Pricing override
description: Custom pricing prompt
---
Estimate a price for {{title}} in {{condition}} condition.`)

	prompt, err := LoadPrompt("pricing.md", data)
	require.NoError(t, err)
	require.Equal(t, "pricing", prompt.Config.Slug)
	require.Equal(t, "Pricing override", prompt.Config.Name)
	require.Equal(t, "Estimate a price for {{title}} in {{condition}} condition.", prompt.Config.Template)
}

func TestLoadPromptSlugFromFilename(t *testing.T) {
	prompt, err := LoadPrompt("/tmp/prompts/title.md", []byte("Optimize: {{title}}"))
	require.NoError(t, err)
	require.Equal(t, "title", prompt.Config.Slug)
}

func TestLoadPromptEmptyBodyFails(t *testing.T) {
	_, err := LoadPrompt("empty.md", []byte("---\nslug: empty\n---\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "no template body")
}

func TestPromptRender(t *testing.T) {
	prompt := &Prompt{Config: PromptConfig{Template: "Item {{title}}, cost ${{cost}}, again {{title}}"}}
	out := prompt.Render(map[string]string{"title": "Charizard", "cost": "50.00"})
	require.Equal(t, "Item Charizard, cost $50.00, again Charizard", out)
}

func TestLoadPromptDir(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "pricing.md"), []byte("Price {{title}}"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0o600))

	prompts, err := LoadPromptDir(dir)
	require.NoError(t, err)
	require.Len(t, prompts, 1)
	require.Contains(t, prompts, "pricing")
}

func TestLoadPromptDirEmptyPath(t *testing.T) {
	prompts, err := LoadPromptDir("")
	require.NoError(t, err)
	require.Empty(t, prompts)
}

func TestPromptForFallsBackToBuiltin(t *testing.T) {
	prompt := promptFor(nil, pricingPromptSlug)
	require.Equal(t, "builtin", prompt.Source)
	require.Contains(t, prompt.Config.Template, "PRICE:")

	override := &Prompt{Config: PromptConfig{Slug: pricingPromptSlug, Template: "custom"}}
	got := promptFor(map[string]*Prompt{pricingPromptSlug: override}, pricingPromptSlug)
	require.Same(t, override, got)
}

func TestSeoScoreBounds(t *testing.T) {
	require.Zero(t, seoScore(""))

	full := seoScore("1999 Pokemon Base Set Charizard Holo Rare WOTC Vintage TCG Card Near Mint Fast")
	require.Greater(t, full, 80.0)
	require.LessOrEqual(t, full, 100.0)

	require.Less(t, seoScore("card"), 20.0)
}
