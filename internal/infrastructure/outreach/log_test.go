package outreach

import (
	"os"
	"path/filepath"
	"testing"
)

func writeLog(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "outreach_log.csv")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write log: %v", err)
	}
	return path
}

func TestAlreadyContactedSubstringMatch(t *testing.T) {
	t.Parallel()

	path := writeLog(t, "date,contact,channel,notes\n"+
		"2026-08-01,reddit.com/u/ML_Founder,email,followed up twice\n"+
		"2026-08-12,octocat,github,starred repo\n")
	filter := NewLogFilter(path, nil)

	// Case-insensitive, matches anywhere in any field.
	if !filter.AlreadyContacted("ml_founder") {
		t.Fatal("expected match on contact column substring")
	}
	if !filter.AlreadyContacted("OCTOCAT") {
		t.Fatal("expected case-insensitive match")
	}
	if filter.AlreadyContacted("someone_else") {
		t.Fatal("unexpected match")
	}
}

func TestAlreadyContactedFailsOpen(t *testing.T) {
	t.Parallel()

	filter := NewLogFilter(filepath.Join(t.TempDir(), "missing.csv"), nil)
	if filter.AlreadyContacted("anyone") {
		t.Fatal("missing log must not suppress leads")
	}

	malformed := writeLog(t, "a,b\n\"unclosed quote, everywhere\n")
	if NewLogFilter(malformed, nil).AlreadyContacted("anyone") {
		t.Fatal("malformed log must not suppress leads")
	}
}

func TestEmptyAuthorNeverMatches(t *testing.T) {
	t.Parallel()

	path := writeLog(t, "contact\nsomebody\n")
	if NewLogFilter(path, nil).AlreadyContacted("") {
		t.Fatal("empty author must never match")
	}
}

func TestHeaderRowIsNotMatched(t *testing.T) {
	t.Parallel()

	path := writeLog(t, "contact,notes\nalice,cold email\n")
	if NewLogFilter(path, nil).AlreadyContacted("notes") {
		t.Fatal("header values must not count as contacts")
	}
}
