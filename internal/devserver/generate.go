package devserver

import (
	"bytes"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"text/template"
	"unicode"

	"github.com/zjrosen/flowdraft/internal/draft"
)

var (
	workflowNameRe = regexp.MustCompile(`(?i)workflow\s+(?:named|called)\s+(?:as\s+)?["']?([A-Za-z_][\w-]*)`)
	activityListRe = regexp.MustCompile(`(?i)activit(?:y|ies)\s+(?:that\s+(?:is|are)\s+|which\s+(?:is|are)\s+)?(?:named|called)\s+(?:as\s+)?(.+?)(?:\s+with\s|$)`)
	timeoutRe      = regexp.MustCompile(`(?i)(\d+)\s*(?:s|sec|secs|second|seconds)\b`)
	listSplitRe    = regexp.MustCompile(`\s*(?:,|\band\b)\s*`)
)

var (
	errNoWorkflowName = errors.New("could not find a workflow name in the prompt")
	errNoActivities   = errors.New("could not find any activity names in the prompt")
)

// parsePrompt extracts a workflow from sentences such as
// "create a workflow named payment with activities named charge and refund
// with retry duration of 10 sec".
func parsePrompt(prompt string) (draft.Workflow, error) {
	m := workflowNameRe.FindStringSubmatch(prompt)
	if m == nil {
		return draft.Workflow{}, errNoWorkflowName
	}
	wf := draft.Workflow{Name: m[1]}

	timeout := draft.DefaultTimeoutSeconds
	if t := timeoutRe.FindStringSubmatch(prompt); t != nil {
		if n, err := strconv.Atoi(t[1]); err == nil && n > 0 {
			timeout = n
		}
	}

	a := activityListRe.FindStringSubmatch(prompt)
	if a == nil {
		return draft.Workflow{}, errNoActivities
	}
	for i, name := range listSplitRe.Split(a[1], -1) {
		name = strings.Trim(name, ` "'.`)
		if name == "" {
			continue
		}
		wf.Activities = append(wf.Activities, draft.Activity{
			ID:             "a" + strconv.Itoa(i+1),
			Name:           name,
			TimeoutSeconds: timeout,
		})
	}
	if len(wf.Activities) == 0 {
		return draft.Workflow{}, errNoActivities
	}
	return wf, nil
}

var generatedTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"snake": snakeCase,
	"class": className,
}).Parse(`
{{- define "workflow.py" -}}
from datetime import timedelta

from temporalio import workflow

from . import activities


@workflow.defn
class {{ class .Name }}Workflow:
    @workflow.run
    async def run(self, payload: dict) -> dict:
{{- range .Activities }}
        await workflow.execute_activity(
            activities.{{ snake .Name }}_activity,
            payload,
            start_to_close_timeout=timedelta(seconds={{ .TimeoutSeconds }}),
        )
{{- end }}
        return {"status": "completed"}
{{ end -}}

{{- define "activities.py" -}}
from temporalio import activity
{{ range .Activities }}

@activity.defn
async def {{ snake .Name }}_activity(payload: dict) -> dict:
    return {"activity": "{{ .Name }}"}
{{ end -}}
{{ end -}}
`))

// generatedFileNames lists the files produced for every workflow, in order.
var generatedFileNames = []string{"workflow.py", "activities.py"}

// renderFiles produces Temporal stubs for wf keyed by file name.
func renderFiles(wf draft.Workflow) (map[string]string, error) {
	files := make(map[string]string, len(generatedFileNames))
	for _, name := range generatedFileNames {
		var buf bytes.Buffer
		if err := generatedTemplates.ExecuteTemplate(&buf, name, wf); err != nil {
			return nil, err
		}
		files[name] = buf.String()
	}
	return files, nil
}

// snakeCase turns "chargeCard" or "send email" into "charge_card" / "send_email".
func snakeCase(s string) string {
	var b strings.Builder
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower {
				b.WriteByte('_')
			}
			b.WriteRune(unicode.ToLower(r))
			prevLower = false
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			prevLower = true
		default:
			if b.Len() > 0 && !strings.HasSuffix(b.String(), "_") {
				b.WriteByte('_')
			}
			prevLower = false
		}
	}
	out := strings.Trim(b.String(), "_")
	if out == "" {
		return "unnamed"
	}
	if unicode.IsDigit(rune(out[0])) {
		out = "_" + out
	}
	return out
}

// className turns "order processor" or "order_processor" into "OrderProcessor".
func className(s string) string {
	var b strings.Builder
	upper := true
	for _, r := range s {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = true
			continue
		}
		if upper {
			b.WriteRune(unicode.ToUpper(r))
			upper = false
		} else {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return "Generated"
	}
	return b.String()
}
