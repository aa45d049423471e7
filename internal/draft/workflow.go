// Package draft holds the in-progress workflow the user is assembling.
//
// A draft is a named, ordered list of activities. Activities are appended in
// the order the user enters them and are never removed or reordered.
package draft

import "fmt"

// DefaultTimeoutSeconds is the timeout assigned to every new activity.
const DefaultTimeoutSeconds = 10

// Activity is one named unit of work within a workflow.
type Activity struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	TimeoutSeconds int    `json:"timeout_seconds"`
}

// Workflow is the serializable form of a draft. It is also the request body
// of a workflow submission.
type Workflow struct {
	Name       string     `json:"name"`
	Activities []Activity `json:"activities"`
}

// ValidationError reports a required field that is missing from a workflow.
type ValidationError struct {
	Field  string
	Reason string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

// Validate performs the presence checks a workflow must pass before it is
// submitted. The name is checked first.
func (w Workflow) Validate() error {
	if w.Name == "" {
		return &ValidationError{Field: "name", Reason: "workflow name is required"}
	}
	if len(w.Activities) == 0 {
		return &ValidationError{Field: "activities", Reason: "add at least one activity"}
	}
	return nil
}

// Submittable reports whether the workflow passes Validate.
func (w Workflow) Submittable() bool {
	return w.Validate() == nil
}
