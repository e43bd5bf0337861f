package models

import (
	"encoding/json"

	"github.com/appforge-ai/appforge-engine/pkg/jsonutil"
)

// Plan is the typed view of the planner's output. Only the fields the
// pipeline itself needs are declared; everything else stays in the raw JSON
// stored on the App row. Scalar fields use jsonutil.String because models
// return numbers and booleans where strings were asked for.
type Plan struct {
	AppName     jsonutil.String `json:"appName"`
	Description jsonutil.String `json:"description"`
	Screens     []string        `json:"screens"`
	Features    []string        `json:"features"`
	Navigation  jsonutil.String `json:"navigation"`
	DataModels  json.RawMessage `json:"dataModels,omitempty"`
	Services    []string        `json:"thirdPartyServices,omitempty"`
}

// UIScreen is one screen entry in the UI composer's output.
type UIScreen struct {
	Name          string          `json:"name"`
	ComponentName string          `json:"componentName"`
	Layout        json.RawMessage `json:"layout,omitempty"`
}

// UIComponent is one component entry in the UI composer's output.
type UIComponent struct {
	Name        string          `json:"name"`
	Type        jsonutil.String `json:"type"`
	PropsSchema json.RawMessage `json:"propsSchema,omitempty"`
}

// UIDesign is the typed view of the UI composer's output.
type UIDesign struct {
	Screens    []UIScreen      `json:"screens"`
	Components []UIComponent   `json:"components"`
	StyleGuide json.RawMessage `json:"styleGuide,omitempty"`
}

// CodeBundle maps generated file paths to file contents.
type CodeBundle map[string]string
