package prompts

import (
	"fmt"
	"strings"
)

// PageSystem is the system instruction for the one-click page generator.
const PageSystem = `You are an expert web developer. ` +
	`Respond with a single complete HTML document and nothing else: no prose, no markdown fences. ` +
	`Inline all CSS and JavaScript. Do not load external scripts.`

// BuildPagePrompt creates the one-shot HTML page prompt.
func BuildPagePrompt(userPrompt string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Build a polished, mobile-first single-page app for: %s\n\n", userPrompt)
	b.WriteString("Requirements:\n")
	b.WriteString("- One self-contained HTML document with inline <style> and <script>.\n")
	b.WriteString("- Working interactivity in plain JavaScript, no frameworks.\n")
	b.WriteString("- No external network requests.\n")
	return b.String()
}

// ComponentSystem is the system instruction for the component generator.
const ComponentSystem = `You are an expert React Native engineer. ` +
	`Respond with a single TypeScript component file and nothing else: no prose, no markdown fences.`

// BuildComponentPrompt creates the one-shot component prompt.
func BuildComponentPrompt(userPrompt string) string {
	return fmt.Sprintf(
		"Write a complete, self-contained React Native component for: %s\n\n"+
			"Export it as the default export. Include prop types.",
		userPrompt)
}

// SnippetSystem is the system instruction for the snippet generator.
const SnippetSystem = `You are an expert programmer. ` +
	`Respond with code only: no prose, no markdown fences.`

// BuildSnippetPrompt creates the one-shot snippet prompt.
func BuildSnippetPrompt(userPrompt string) string {
	return fmt.Sprintf("Write a code snippet for: %s", userPrompt)
}
