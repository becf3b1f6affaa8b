package command

import (
	"strings"
	"testing"
	"time"

	"dvorak/internal/testutil"
)

func TestParseResolvesAliases(t *testing.T) {
	inv, err := Parse(Registry(), "S")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Command.Name, "submit")
	testutil.AssertEqual(t, len(inv.Args), 0)
}

func TestParseQuotedArguments(t *testing.T) {
	inv, err := Parse(Registry(), `load "my solution.py"`)
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, inv.Arg(0), "my solution.py")
	testutil.AssertEqual(t, inv.Arg(3), "")
}

func TestParseRejectsUnknownAndArity(t *testing.T) {
	_, err := Parse(Registry(), "compile now")
	testutil.AssertTrue(t, err != nil && strings.Contains(err.Error(), "unknown command"), "unknown command rejected")

	_, err = Parse(Registry(), "use")
	testutil.AssertTrue(t, err != nil && strings.Contains(err.Error(), "usage: use <problem_id>"), "missing argument rejected")

	_, err = Parse(Registry(), "show extra")
	testutil.AssertTrue(t, err != nil, "unexpected argument rejected")

	_, err = Parse(Registry(), `load "unterminated`)
	testutil.AssertTrue(t, err != nil, "bad quoting rejected")
}

func TestRegistryCoversList(t *testing.T) {
	reg := Registry()
	for _, cmd := range List() {
		got, ok := reg[cmd.Name]
		testutil.AssertTrue(t, ok, "missing "+cmd.Name)
		testutil.AssertEqual(t, got.Name, cmd.Name)
	}
	testutil.AssertEqual(t, reg["quit"].Name, "exit")
}

func TestComplete(t *testing.T) {
	got := Complete("s")
	testutil.AssertEqual(t, strings.Join(got, ","), "set,show,status,submit")
}

func TestParseDuration(t *testing.T) {
	d, err := ParseDuration("1500")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, d, 1500*time.Millisecond)

	d, err = ParseDuration("3s")
	if err != nil {
		t.Fatalf("parse failed: %v", err)
	}
	testutil.AssertEqual(t, d, 3*time.Second)

	_, err = ParseDuration("-1s")
	testutil.AssertTrue(t, err != nil, "negative rejected")
	_, err = ParseDuration("soon")
	testutil.AssertTrue(t, err != nil, "garbage rejected")
}
