// Package verdict defines judge outcomes as reported by the gateway and their presentation emphasis.
package verdict

import (
	"strconv"
	"strings"
)

// Code is a judge result code or a presentation sentinel.
type Code string

const (
	CodeAC  Code = "AC"
	CodeWA  Code = "WA"
	CodeTLE Code = "TLE"
	CodeMLE Code = "MLE"
	CodeOLE Code = "OLE"
	CodeRE  Code = "RE"
	CodeCE  Code = "CE"
	CodeSE  Code = "SE"
)

// Sentinels describe the orchestrator state before or instead of a verdict.
const (
	CodeReady        Code = "READY"
	CodeSubmitting   Code = "SUBMITTING"
	CodeGrading      Code = "GRADING"
	CodeSubmitFailed Code = "SUBMIT_FAILED"
	CodeNoSelection  Code = "NO_SELECTION"
	CodeUnavailable  Code = "RESULT_UNAVAILABLE"
)

// Verdict is the judge's structured outcome for one job. Immutable once produced.
type Verdict struct {
	Result Code   `json:"result"`
	Case   *int   `json:"case,omitempty"`
	Msg    string `json:"msg,omitempty"`
	Got    string `json:"got,omitempty"`
	Exp    string `json:"exp,omitempty"`
}

// Accepted reports whether the verdict is the acceptance code.
func (v Verdict) Accepted() bool {
	return v.Result == CodeAC
}

// CaseIndex returns the failing case index, or 0 when none was reported.
func (v Verdict) CaseIndex() int {
	if v.Case == nil {
		return 0
	}
	return *v.Case
}

// Format renders a verdict as the multi-line result text shown to the user.
func Format(v Verdict) string {
	var b strings.Builder
	b.WriteString("result: ")
	b.WriteString(string(v.Result))
	if v.Case != nil && *v.Case != 0 {
		b.WriteString("\ncase: ")
		b.WriteString(strconv.Itoa(*v.Case))
	}
	if v.Msg != "" {
		b.WriteString("\nmessage: ")
		b.WriteString(v.Msg)
	}
	if v.Got != "" {
		b.WriteString("\ngot:\n")
		b.WriteString(v.Got)
	}
	if v.Exp != "" {
		b.WriteString("\nexpected:\n")
		b.WriteString(v.Exp)
	}
	return b.String()
}
