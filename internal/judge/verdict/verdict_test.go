package verdict

import (
	"encoding/json"
	"strings"
	"testing"

	"dvorak/internal/testutil"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		code Code
		want Emphasis
	}{
		{CodeReady, EmphasisSuccess},
		{CodeAC, EmphasisSuccess},
		{CodeWA, EmphasisWarning},
		{CodeRE, EmphasisError},
		{CodeCE, EmphasisError},
		{CodeSubmitFailed, EmphasisError},
		{CodeUnavailable, EmphasisError},
		{CodeSubmitting, EmphasisProgress},
		{CodeGrading, EmphasisProgress},
		{CodeTLE, EmphasisDefault},
		{Code("??"), EmphasisDefault},
	}
	for _, tt := range tests {
		t.Run(string(tt.code), func(t *testing.T) {
			if got := Classify(tt.code); got != tt.want {
				t.Errorf("Classify(%s) = %s, want %s", tt.code, got, tt.want)
			}
		})
	}
}

func TestFormatWrongAnswerKeepsValuesVerbatim(t *testing.T) {
	var v Verdict
	testutil.MustUnmarshalJSON(t, []byte(`{"result":"WA","case":3,"got":"5","exp":"4"}`), &v)

	out := Format(v)
	testutil.AssertEqual(t, out, "result: WA\ncase: 3\ngot:\n5\nexpected:\n4")
	testutil.AssertFalse(t, v.Accepted(), "WA must not be accepted")
	testutil.AssertEqual(t, v.CaseIndex(), 3)
}

func TestFormatAcceptedIsSingleLine(t *testing.T) {
	v := Verdict{Result: CodeAC}
	testutil.AssertEqual(t, Format(v), "result: AC")
	testutil.AssertTrue(t, v.Accepted(), "AC must be accepted")
}

func TestFormatCompileErrorMessage(t *testing.T) {
	v := Verdict{Result: CodeCE, Msg: "main.cpp:1: error"}
	out := Format(v)
	testutil.AssertTrue(t, strings.Contains(out, "message: main.cpp:1: error"), "message line expected")
}

func TestVerdictOmitsEmptyFields(t *testing.T) {
	data, err := json.Marshal(Verdict{Result: CodeAC})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	testutil.AssertEqual(t, string(data), `{"result":"AC"}`)
}
