package diagnostics

import (
	"encoding/json"

	"github.com/sunholo/wasmc/internal/ast"
)

// Severity classifies how a Report should affect compilation.
type Severity int

const (
	SeverityWarning Severity = iota
	SeverityError
	SeverityInternal
)

func (s Severity) String() string {
	switch s {
	case SeverityWarning:
		return "warning"
	case SeverityError:
		return "error"
	case SeverityInternal:
		return "internal"
	default:
		return "unknown"
	}
}

// Schema is the stable envelope version stamped on every Report, matching the
// "ailang.error/v1"-style schema field used by the teacher's error reports.
const Schema = "wasmc.diag/v1"

// Report is the canonical structured diagnostic type. Every diagnostic the
// compiler core emits is a *Report; nothing in the core panics or returns a
// bare error string.
type Report struct {
	Schema   string         `json:"schema"`
	Code     string         `json:"code"`
	Phase    string         `json:"phase"`
	Severity string         `json:"severity"`
	Message  string         `json:"message"`
	Range    *ast.Range     `json:"range,omitempty"`
	Data     map[string]any `json:"data,omitempty"`
}

// New builds a Report with the schema and severity string already populated.
func New(code, phase string, sev Severity, message string, rng *ast.Range) *Report {
	return &Report{
		Schema:   Schema,
		Code:     code,
		Phase:    phase,
		Severity: sev.String(),
		Message:  message,
		Range:    rng,
	}
}

// WithData attaches structured data to a Report and returns it for chaining.
func (r *Report) WithData(key string, value any) *Report {
	if r.Data == nil {
		r.Data = map[string]any{}
	}
	r.Data[key] = value
	return r
}

// ToJSON renders the report as (optionally indented) JSON.
func (r *Report) ToJSON(compact bool) (string, error) {
	var data []byte
	var err error
	if compact {
		data, err = json.Marshal(r)
	} else {
		data, err = json.MarshalIndent(r, "", "  ")
	}
	if err != nil {
		return "", err
	}
	return string(data), nil
}

func (r *Report) Error() string {
	return r.Code + ": " + r.Message
}
