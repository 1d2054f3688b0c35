package rpsl

import "testing"

func TestParseTransactionBasic(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		"mntner: DN42-MNT",
		"descr: test",
		"",
		".END",
	}
	b, err := ParseTransaction(lines, ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if b.Mntner != "DN42-MNT" {
		t.Errorf("Mntner = %q, want DN42-MNT", b.Mntner)
	}
	if len(b.Objects) != 1 {
		t.Fatalf("Objects = %d, want 1", len(b.Objects))
	}
	if b.Objects[0].Type() != "mntner" {
		t.Errorf("Objects[0].Type() = %q, want mntner", b.Objects[0].Type())
	}
}

func TestParseTransactionWithDelete(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		".DELETE inetnum 172.20.0.0 - 172.20.0.255",
		".END",
	}
	b, err := ParseTransaction(lines, ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if len(b.Deletes) != 1 {
		t.Fatalf("Deletes = %d, want 1", len(b.Deletes))
	}
	if b.Deletes[0].Type != "inetnum" {
		t.Errorf("Deletes[0].Type = %q, want inetnum", b.Deletes[0].Type)
	}
}

func TestParseTransactionMultipleObjects(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		"mntner: ONE-MNT",
		"...",
		"mntner: TWO-MNT",
		".END",
	}
	b, err := ParseTransaction(lines, ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if len(b.Objects) != 2 {
		t.Fatalf("Objects = %d, want 2", len(b.Objects))
	}
}

func TestParseTransactionMissingBegin(t *testing.T) {
	lines := []string{
		"mntner: DN42-MNT",
		".END",
	}
	if _, err := ParseTransaction(lines, ParseContext{}); err != ErrMissingBegin {
		t.Errorf("err = %v, want ErrMissingBegin", err)
	}
}

func TestParseTransactionUnterminated(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		"mntner: DN42-MNT",
	}
	if _, err := ParseTransaction(lines, ParseContext{}); err != ErrUnterminatedBundle {
		t.Errorf("err = %v, want ErrUnterminatedBundle", err)
	}
}

func TestParseTransactionDropsInvalidObject(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		" dangling continuation with no attribute",
		"...",
		"mntner: GOOD-MNT",
		".END",
	}
	b, err := ParseTransaction(lines, ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}
	if len(b.Objects) != 1 {
		t.Fatalf("Objects = %d, want 1 (invalid object dropped)", len(b.Objects))
	}
	if b.Objects[0].Get("mntner", 0, "") != "GOOD-MNT" {
		t.Errorf("surviving object = %q, want GOOD-MNT", b.Objects[0].Get("mntner", 0, ""))
	}
}

func TestTransactionBundleFormatRoundTrip(t *testing.T) {
	lines := []string{
		".BEGIN DN42-MNT",
		".DELETE mntner OLD-MNT",
		"mntner: DN42-MNT",
		"descr: test",
		".END",
	}
	b, err := ParseTransaction(lines, ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction: %v", err)
	}

	reparsed, err := ParseTransaction(splitLines(b.Format()), ParseContext{})
	if err != nil {
		t.Fatalf("ParseTransaction(Format()): %v", err)
	}
	if reparsed.Mntner != b.Mntner {
		t.Errorf("Mntner = %q, want %q", reparsed.Mntner, b.Mntner)
	}
	if len(reparsed.Deletes) != len(b.Deletes) {
		t.Fatalf("Deletes = %d, want %d", len(reparsed.Deletes), len(b.Deletes))
	}
	if len(reparsed.Objects) != len(b.Objects) {
		t.Fatalf("Objects = %d, want %d", len(reparsed.Objects), len(b.Objects))
	}
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}
