// Package prompts builds the system and user prompts sent to the LLM
// vendors. Every builder instructs strict output shape so downstream parsing
// can stay dumb.
package prompts

import (
	"fmt"
	"strings"
)

// PlanSystem is the system instruction for the planner stage.
const PlanSystem = `You are a senior mobile product architect. ` +
	`Respond with a single JSON object and nothing else: no prose, no markdown fences.`

// BuildPlanPrompt creates the planner-stage prompt from the user's app
// description.
func BuildPlanPrompt(userPrompt string) string {
	var b strings.Builder

	b.WriteString("Create a structured plan for the following mobile app idea.\n\n")
	fmt.Fprintf(&b, "App idea: %s\n\n", userPrompt)
	b.WriteString("Return a JSON object with exactly these keys:\n")
	b.WriteString(`{
  "appName": "short app name",
  "description": "one-paragraph description",
  "screens": ["ScreenName", ...],
  "features": ["feature", ...],
  "navigation": "tabs | stack | drawer",
  "dataModels": { "ModelName": { "field": "type" } },
  "thirdPartyServices": ["service", ...]
}`)
	b.WriteString("\n\nScreen names must be PascalCase without spaces.")

	return b.String()
}

// UISystem is the system instruction for the UI composer stage.
const UISystem = `You are a senior mobile UI designer. ` +
	`Respond with a single JSON object and nothing else: no prose, no markdown fences.`

// BuildUIPrompt creates the UI-composer prompt from the stored plan JSON.
func BuildUIPrompt(planJSON string) string {
	var b strings.Builder

	b.WriteString("Turn the following app plan into a UI design.\n\n")
	b.WriteString("## Plan\n")
	b.WriteString(planJSON)
	b.WriteString("\n\nReturn a JSON object with exactly these keys:\n")
	b.WriteString(`{
  "screens": [
    { "name": "Home", "componentName": "HomeScreen", "layout": { } }
  ],
  "components": [
    { "name": "TaskCard", "type": "card", "propsSchema": { } }
  ],
  "styleGuide": { "colors": { }, "typography": { } }
}`)
	b.WriteString("\n\nEvery screen in the plan must appear once. componentName must be a valid PascalCase identifier.")

	return b.String()
}

// CodeSystem is the system instruction for the code generator stage.
const CodeSystem = `You are a senior React Native engineer. ` +
	`Respond with a single JSON object and nothing else: no prose, no markdown fences.`

// BuildCodePrompt creates the code-generator prompt from the stored plan and
// UI JSON. Both blobs are interpolated verbatim; the vendor sees exactly what
// the earlier stages produced.
func BuildCodePrompt(planJSON, uiJSON string) string {
	var b strings.Builder

	b.WriteString("Generate React Native (TypeScript) source for the app described below.\n\n")
	b.WriteString("## Plan\n")
	b.WriteString(planJSON)
	b.WriteString("\n\n## UI design\n")
	b.WriteString(uiJSON)
	b.WriteString("\n\nReturn a JSON object mapping file paths to complete file contents:\n")
	b.WriteString(`{
  "App.tsx": "...",
  "screens/HomeScreen.tsx": "...",
  "components/TaskCard.tsx": "..."
}`)
	b.WriteString("\n\nUse screens/<componentName>.tsx for screens and components/<name>.tsx for components.")

	return b.String()
}
