package draft

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWorkflow_Validate(t *testing.T) {
	tests := []struct {
		name      string
		workflow  Workflow
		wantField string
	}{
		{
			name:      "empty name",
			workflow:  Workflow{Activities: []Activity{{ID: "1", Name: "a", TimeoutSeconds: 10}}},
			wantField: "name",
		},
		{
			name:      "no activities",
			workflow:  Workflow{Name: "payments"},
			wantField: "activities",
		},
		{
			name:      "both missing reports name first",
			workflow:  Workflow{},
			wantField: "name",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.workflow.Validate()
			require.Error(t, err)

			var verr *ValidationError
			require.True(t, errors.As(err, &verr))
			assert.Equal(t, tt.wantField, verr.Field)
			assert.False(t, tt.workflow.Submittable())
		})
	}
}

func TestWorkflow_Validate_OK(t *testing.T) {
	w := Workflow{Name: "payments", Activities: []Activity{{ID: "1", Name: "charge", TimeoutSeconds: 10}}}
	require.NoError(t, w.Validate())
	require.True(t, w.Submittable())
}

func TestValidationError_Message(t *testing.T) {
	err := &ValidationError{Field: "name", Reason: "workflow name is required"}
	require.Equal(t, "name: workflow name is required", err.Error())
}

func TestWorkflow_JSONMarshalingFormat(t *testing.T) {
	w := Workflow{
		Name:       "OrderProcessor",
		Activities: []Activity{{ID: "a1", Name: "chargeCard", TimeoutSeconds: 10}},
	}

	data, err := json.Marshal(w)
	require.NoError(t, err)

	require.JSONEq(t,
		`{"name":"OrderProcessor","activities":[{"id":"a1","name":"chargeCard","timeout_seconds":10}]}`,
		string(data))
}
