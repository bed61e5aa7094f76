package tools

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"voicedesk-agent/internal/activity"
	"voicedesk-agent/internal/intake"
	"voicedesk-agent/internal/nav"
)

// Tool describes the contract for client tool implementations invoked
// by the remote conversational session.
type Tool interface {
	Name() string
	Description() string
	InputSchema() map[string]interface{}
	Execute(ctx context.Context, args map[string]interface{}) (string, error)
}

// ErrNoValidFields is returned when fill_intake_form finds nothing to
// apply across any of its accepted payload shapes.
type ErrNoValidFields struct{}

func (ErrNoValidFields) Error() string {
	return "fill_intake_form was invoked without valid fields"
}

// NavigateScreenTool routes the app to a named screen.
type NavigateScreenTool struct {
	bridge *nav.Bridge
}

func (t *NavigateScreenTool) Name() string { return "navigate_screen" }
func (t *NavigateScreenTool) Description() string {
	return `Navigate the app to a named screen.

Accepts "screen" (preferred) or "route" naming one of: home, services, intake.
Returns a confirmation once the navigation callback has been invoked.`
}
func (t *NavigateScreenTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type": "object",
		"properties": map[string]interface{}{
			"screen": map[string]interface{}{
				"type":        "string",
				"description": "Target screen: home, services, or intake",
			},
			"route": map[string]interface{}{
				"type":        "string",
				"description": "Alias for screen",
			},
		},
	}
}
func (t *NavigateScreenTool) Execute(_ context.Context, args map[string]interface{}) (string, error) {
	target := getStringArg(args, "screen")
	if target == "" {
		target = getStringArg(args, "route")
	}
	if target == "" {
		return "", fmt.Errorf(`navigate_screen requires a "screen" parameter`)
	}
	return t.bridge.Navigate(target)
}

// FillFormTool merges intake field updates from any of the three
// payload shapes the agent produces: a single field/value pair, a
// nested "values" map, or field keys at the top level.
type FillFormTool struct {
	form *intake.Store
	log  *activity.Log
}

func (t *FillFormTool) Name() string { return "fill_intake_form" }
func (t *FillFormTool) Description() string {
	return `Fill one or more intake form fields.

Accepts any of:
- {"field": "email", "value": "a@b.com"}
- {"values": {"name": "Ada", "company": "Analytical Engines"}}
- {"name": "Ada", "phone": "+44 20 7946 0000"}

Only the fields name, email, company, phone, service, budget, notes are
admitted. Fails when no valid field is found in any shape.`
}
func (t *FillFormTool) InputSchema() map[string]interface{} {
	fieldProps := map[string]interface{}{}
	for _, f := range intake.Fields {
		fieldProps[string(f)] = map[string]interface{}{"type": "string"}
	}
	fieldProps["field"] = map[string]interface{}{
		"type":        "string",
		"description": "Single field name, paired with value",
	}
	fieldProps["value"] = map[string]interface{}{
		"type":        "string",
		"description": "Value for the single field",
	}
	fieldProps["values"] = map[string]interface{}{
		"type":        "object",
		"description": "Mapping of field names to values",
	}
	return map[string]interface{}{
		"type":       "object",
		"properties": fieldProps,
	}
}
func (t *FillFormTool) Execute(_ context.Context, args map[string]interface{}) (string, error) {
	updates := map[string]interface{}{}

	capture := func(candidate map[string]interface{}) {
		for key, value := range candidate {
			if intake.IsField(key) && value != nil {
				updates[key] = value
			}
		}
	}

	if field := getStringArg(args, "field"); field != "" && intake.IsField(field) {
		if value, ok := args["value"]; ok && value != nil {
			updates[field] = value
		}
	}
	if nested, ok := args["values"].(map[string]interface{}); ok {
		capture(nested)
	}
	capture(args)

	if len(updates) == 0 {
		return "", ErrNoValidFields{}
	}

	updated := t.form.BulkUpdate(updates)
	names := fieldNames(updated)

	t.log.Append(activity.SourceTool,
		fmt.Sprintf("Updated intake fields via agent: %s.", names))
	return fmt.Sprintf("Updated fields: %s.", names), nil
}

func fieldNames(fields []intake.Field) string {
	parts := make([]string, len(fields))
	for i, f := range fields {
		parts[i] = string(f)
	}
	return strings.Join(parts, ", ")
}

// SubmitFormTool snapshots the current form as a voice-agent submission.
type SubmitFormTool struct {
	form *intake.Store
	log  *activity.Log
}

func (t *SubmitFormTool) Name() string { return "submit_intake_form" }
func (t *SubmitFormTool) Description() string {
	return `Submit the intake form with its current values.

No parameters. Returns a confirmation carrying the submission timestamp.`
}
func (t *SubmitFormTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *SubmitFormTool) Execute(_ context.Context, _ map[string]interface{}) (string, error) {
	record := t.form.Submit(intake.SubmitOptions{Source: "voice-agent"})
	t.log.Append(activity.SourceTool, "Voice agent submitted the intake form.")
	return fmt.Sprintf("Submitted intake form at %s.", record.SubmittedAt), nil
}

// ReadFormTool returns the current form values. Read-only: it appends
// no activity-log entry.
type ReadFormTool struct {
	form *intake.Store
}

func (t *ReadFormTool) Name() string { return "read_intake_form" }
func (t *ReadFormTool) Description() string {
	return `Read the current intake form values as JSON.

No parameters, no side effects.`
}
func (t *ReadFormTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ReadFormTool) Execute(_ context.Context, _ map[string]interface{}) (string, error) {
	payload, err := json.Marshal(t.form.Values())
	if err != nil {
		return "", fmt.Errorf("encoding form values: %w", err)
	}
	return string(payload), nil
}

// ResetFormTool restores the intake form to its defaults.
type ResetFormTool struct {
	form *intake.Store
	log  *activity.Log
}

func (t *ResetFormTool) Name() string { return "reset_intake_form" }
func (t *ResetFormTool) Description() string {
	return `Reset every intake form field to its empty default.

No parameters. The last submitted snapshot stays queryable.`
}
func (t *ResetFormTool) InputSchema() map[string]interface{} {
	return map[string]interface{}{
		"type":       "object",
		"properties": map[string]interface{}{},
	}
}
func (t *ResetFormTool) Execute(_ context.Context, _ map[string]interface{}) (string, error) {
	t.form.Reset()
	t.log.Append(activity.SourceTool, "Voice agent reset the intake form to defaults.")
	return "Reset intake form.", nil
}
