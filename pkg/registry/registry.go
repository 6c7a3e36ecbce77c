// pkg/registry/registry.go
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/xeipuuv/gojsonschema"
)

// Well-known stage ids used by the workflow facade.
const (
	StageLandlordReview  = "landlord-review"
	StageBackgroundCheck = "background-check"
	StageFinalProcessing = "final-processing"
)

func LoadRegistry(path string) (*StageRegistry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return ParseRegistry(data)
}

func ParseRegistry(data []byte) (*StageRegistry, error) {
	schemaLoader := gojsonschema.NewStringLoader(stageSchema)
	documentLoader := gojsonschema.NewBytesLoader(data)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		return nil, fmt.Errorf("validate stage registry: %w", err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("invalid stage registry: %s", strings.Join(msgs, "; "))
	}

	var reg StageRegistry
	if err := json.Unmarshal(data, &reg); err != nil {
		return nil, fmt.Errorf("parse stage registry: %w", err)
	}
	return &reg, nil
}

// Stage returns the definition for the given stage id.
func (r *StageRegistry) Stage(id string) (Stage, bool) {
	for _, s := range r.Stages {
		if s.ID == id {
			return s, true
		}
	}
	return Stage{}, false
}

// Render fills the {{property}} and {{count}} placeholders of a template.
func Render(template, property string, count int) string {
	out := strings.ReplaceAll(template, "{{property}}", property)
	out = strings.ReplaceAll(out, "{{count}}", fmt.Sprintf("%d", count))
	return out
}

// Defaults returns the built-in registry used when no file is configured.
func Defaults() *StageRegistry {
	return &StageRegistry{
		Version: "1",
		Stages: []Stage{
			{
				ID:                  StageLandlordReview,
				DisplayName:         "Landlord review",
				AssigneeRole:        "landlord",
				Priority:            "medium",
				DueDays:             7,
				NameTemplate:        "Review applications for {{property}}",
				DescriptionTemplate: "{{count}} screened application(s) are waiting for your review.",
			},
			{
				ID:                  StageBackgroundCheck,
				DisplayName:         "Background check",
				AssigneeRole:        "agent",
				Priority:            "high",
				DueDays:             7,
				NameTemplate:        "Run background checks for {{property}}",
				DescriptionTemplate: "{{count}} approved application(s) need a background check.",
			},
			{
				ID:                  StageFinalProcessing,
				DisplayName:         "Final processing",
				AssigneeRole:        "landlord",
				Priority:            "high",
				DueDays:             3,
				NameTemplate:        "Final processing for {{property}}",
				DescriptionTemplate: "Complete contract and handover for the chosen tenant.",
			},
		},
	}
}
