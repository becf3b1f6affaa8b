package attempt

import (
	"testing"
	"time"

	"dvorak/internal/judge/timer"
	"dvorak/internal/testutil"
	appErr "dvorak/pkg/errors"
)

func TestParseLanguage(t *testing.T) {
	lang, err := ParseLanguage(" Python ")
	if err != nil {
		t.Fatalf("parse python failed: %v", err)
	}
	testutil.AssertEqual(t, lang, LanguagePython)

	lang, err = ParseLanguage("c++")
	if err != nil {
		t.Fatalf("parse c++ failed: %v", err)
	}
	testutil.AssertEqual(t, lang, LanguageCPP)

	_, err = ParseLanguage("java")
	testutil.AssertTrue(t, appErr.Is(err, appErr.LanguageNotSupported), "java should be rejected")
}

func TestNewUsesTemplateAsBaseline(t *testing.T) {
	a := New(Selection{ProblemID: "P1", Language: LanguageCPP}, nil)
	testutil.AssertEqual(t, a.InitialCode, Template(LanguageCPP))
	testutil.AssertEqual(t, a.Code, a.InitialCode)
	testutil.AssertEqual(t, a.Timer.Phase(), timer.PhaseIdle)
	testutil.AssertFalse(t, a.Dirty(), "fresh attempt is clean")
}

func TestEditStartsTimerOnFirstRealChange(t *testing.T) {
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)
	now := base
	a := New(Selection{ProblemID: "P1", Language: LanguagePython}, func() time.Time { return now })

	testutil.AssertFalse(t, a.Edit(a.InitialCode), "unchanged buffer must not start the timer")
	testutil.AssertEqual(t, a.Timer.Phase(), timer.PhaseIdle)

	now = base.Add(2 * time.Second)
	testutil.AssertTrue(t, a.Edit("print(1)\n"), "first edit starts the timer")
	testutil.AssertEqual(t, a.Timer.StartedAt(), base.Add(2*time.Second))

	now = base.Add(5 * time.Second)
	testutil.AssertFalse(t, a.Edit("print(2)\n"), "later edits do not restart")
	testutil.AssertFalse(t, a.Edit(a.InitialCode), "reverting does not touch the timer")
	testutil.AssertEqual(t, a.Timer.StartedAt(), base.Add(2*time.Second))
	testutil.AssertEqual(t, a.Timer.Phase(), timer.PhaseRunning)
}

func TestEditAfterStopDoesNotResume(t *testing.T) {
	a := New(Selection{ProblemID: "P1", Language: LanguagePython}, nil)
	a.Edit("x = 1\n")
	a.Timer.Stop()
	testutil.AssertFalse(t, a.Edit("x = 2\n"), "stopped timer stays frozen")
	testutil.AssertEqual(t, a.Timer.Phase(), timer.PhaseStopped)
}

func TestLanguagesIsACopy(t *testing.T) {
	langs := Languages()
	testutil.AssertEqual(t, len(langs), 2)
	testutil.AssertEqual(t, langs[0], LanguagePython)
	langs[0] = "cobol"
	testutil.AssertEqual(t, Languages()[0], LanguagePython)
	testutil.AssertTrue(t, LanguageCPP.Valid(), "cpp is supported")
}
