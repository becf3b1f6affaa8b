package state

import (
	"os"
	"path/filepath"
	"testing"

	"dvorak/internal/judge/attempt"
	"dvorak/internal/testutil"
)

func TestLoadMissingReturnsEmpty(t *testing.T) {
	st, err := Load(filepath.Join(t.TempDir(), "none.json"))
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	testutil.AssertFalse(t, st.Selection.HasProblem(), "no selection remembered")
}

func TestSaveAndLoadSelection(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "state.json")
	want := SessionState{
		Selection: attempt.Selection{ProblemID: "sum", Language: attempt.LanguageCPP},
	}
	if err := Save(path, want); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	testutil.AssertEqual(t, got.Selection, want.Selection)
	testutil.AssertFalse(t, got.SavedAt.IsZero(), "saved time recorded")

	if err := Clear(path); err != nil {
		t.Fatalf("clear failed: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatalf("state file should be gone, stat err=%v", err)
	}
	testutil.AssertTrue(t, Clear(path) == nil, "clearing twice is fine")
}

func TestLoadDropsUnknownLanguage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	raw := `{"selection":{"problem_id":"sum","language":"java"}}`
	if err := os.WriteFile(path, []byte(raw), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	st, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	testutil.AssertEqual(t, st.Selection.ProblemID, "sum")
	testutil.AssertEqual(t, st.Selection.Language, attempt.Language(""))
}

func TestLoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	_, err := Load(path)
	testutil.AssertTrue(t, err != nil, "corrupt state should fail")
}

func TestLoadIgnoresRetiredFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.json")
	legacy := `{"selection":{"problem_id":"sum","language":"python"},"base_url":"http://old:9000"}`
	if err := os.WriteFile(path, []byte(legacy), 0o600); err != nil {
		t.Fatalf("write failed: %v", err)
	}
	st, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	testutil.AssertEqual(t, st.Selection.ProblemID, "sum")
	testutil.AssertEqual(t, st.Selection.Language, attempt.LanguagePython)
}
