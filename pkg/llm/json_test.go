package llm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractJSON_PlainObject(t *testing.T) {
	got, err := ExtractJSON(`{"appName": "Todo", "screens": ["Home"]}`)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appName": "Todo", "screens": ["Home"]}`, got)
}

func TestExtractJSON_MarkdownFence(t *testing.T) {
	response := "Here is your plan:\n```json\n{\"appName\": \"Todo\"}\n```\nLet me know!"
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appName": "Todo"}`, got)
}

func TestExtractJSON_SurroundingProse(t *testing.T) {
	response := `Sure! The plan is {"appName": "Todo", "nested": {"a": 1}} as requested.`
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.JSONEq(t, `{"appName": "Todo", "nested": {"a": 1}}`, got)
}

func TestExtractJSON_BracesInsideStrings(t *testing.T) {
	response := `{"code": "function f() { return \"}\"; }"}`
	got, err := ExtractJSON(response)
	require.NoError(t, err)
	assert.Equal(t, response, got)
}

func TestExtractJSON_Array(t *testing.T) {
	got, err := ExtractJSON(`["a", "b"]`)
	require.NoError(t, err)
	assert.JSONEq(t, `["a", "b"]`, got)
}

func TestExtractJSON_NoJSON(t *testing.T) {
	_, err := ExtractJSON("I'm sorry, I can't help with that.")
	assert.Error(t, err)
}

func TestParseJSONResponse(t *testing.T) {
	type plan struct {
		AppName string   `json:"appName"`
		Screens []string `json:"screens"`
	}

	got, err := ParseJSONResponse[plan]("```json\n{\"appName\": \"Todo\", \"screens\": [\"Home\", \"Detail\"]}\n```")
	require.NoError(t, err)
	assert.Equal(t, "Todo", got.AppName)
	assert.Len(t, got.Screens, 2)
}

func TestParseJSONResponse_WrongShape(t *testing.T) {
	type plan struct {
		Screens []string `json:"screens"`
	}
	_, err := ParseJSONResponse[plan](`{"screens": "not an array"}`)
	assert.Error(t, err)
}
