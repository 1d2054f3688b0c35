package rpsl

import (
	"strings"
	"testing"
)

func TestParseSimpleObject(t *testing.T) {
	lines := strings.Split(`mntner:     DN42-MNT
descr:      Owner maintainer
admin-c:    DN42-DN42
mnt-by:     DN42-MNT
source:     DN42`, "\n")

	obj := Parse(lines, "mntner/DN42-MNT", ParseContext{})
	if !obj.Valid() {
		t.Fatal("expected object to parse as valid")
	}
	if obj.Type() != "mntner" {
		t.Errorf("Type() = %q, want mntner", obj.Type())
	}
	if got := obj.Get("mnt-by", 0, ""); got != "DN42-MNT" {
		t.Errorf("Get(mnt-by) = %q, want DN42-MNT", got)
	}
	if !obj.HasKey("descr") {
		t.Error("expected descr key present")
	}
}

func TestParseContinuationLines(t *testing.T) {
	lines := []string{
		"descr: first line",
		" second line",
		"+",
		"\tthird line",
	}
	obj := Parse(lines, "test", ParseContext{})
	if !obj.Valid() {
		t.Fatal("expected valid object")
	}
	val := obj.Get("descr", 0, "")
	want := "first line\nsecond line\n\nthird line"
	if string(val) != want {
		t.Errorf("continuation value = %q, want %q", val, want)
	}
	if !obj.IsMultiline("descr") {
		t.Error("expected descr to be flagged multiline")
	}
}

func TestParseDanglingContinuationInvalid(t *testing.T) {
	lines := []string{" leading continuation with no attribute"}
	obj := Parse(lines, "bad", ParseContext{})
	if obj.Valid() {
		t.Error("expected object with leading continuation to be invalid")
	}
}

func TestParseEmptyObjectInvalid(t *testing.T) {
	obj := Parse(nil, "empty", ParseContext{})
	if obj.Valid() {
		t.Error("expected empty object to be invalid")
	}
}

func TestParseSkipsCommentsAndColonlessLines(t *testing.T) {
	lines := []string{
		"# a comment",
		"mntner: TEST-MNT",
		"this line has no colon",
	}
	obj := Parse(lines, "test", ParseContext{})
	if !obj.Valid() {
		t.Fatal("expected valid object")
	}
	if obj.Count("mntner") != 1 {
		t.Errorf("Count(mntner) = %d, want 1", obj.Count("mntner"))
	}
}

func TestObjectNameUsesConfiguredPrimaryKey(t *testing.T) {
	ctx := ParseContext{PrimaryKeys: map[string]string{"inetnum": "inetnum"}}
	lines := []string{
		"inetnum: 172.20.0.0 - 172.20.0.255",
		"cidr: 172.20.0.0/24",
	}
	obj := Parse(lines, "test", ctx)
	if obj.Name() != "172.20.0.0 - 172.20.0.255" {
		t.Errorf("Name() = %q", obj.Name())
	}
}

func TestObjectPutAppendsAndReplaces(t *testing.T) {
	obj := Parse([]string{"mntner: A-MNT"}, "test", ParseContext{})
	obj.Put("remarks", "hello", 0, true)
	if obj.Count("remarks") != 1 {
		t.Fatalf("expected remarks appended")
	}
	obj.Put("remarks", "goodbye", 0, false)
	if got := obj.Get("remarks", 0, ""); got != "goodbye" {
		t.Errorf("Get(remarks) after replace = %q, want goodbye", got)
	}
}

func TestObjectFormatRoundTrip(t *testing.T) {
	lines := []string{
		"mntner: TEST-MNT",
		"descr: line one",
		" line two",
	}
	obj := Parse(lines, "test", ParseContext{})
	out := obj.Format()
	if !strings.Contains(out, "mntner:") || !strings.Contains(out, "line two") {
		t.Errorf("Format() missing expected content: %q", out)
	}
}

func TestValueAsKeyReplacesSlashesAndSpaces(t *testing.T) {
	v := Value("Some Org / With Space")
	if got := v.AsKey(); got != "SomeOrg_WithSpace" {
		t.Errorf("AsKey() = %q", got)
	}
}

func TestValueAsNetHostRoute(t *testing.T) {
	v := Value("172.20.0.1")
	p, err := v.AsNet()
	if err != nil {
		t.Fatalf("AsNet: %v", err)
	}
	if p.Bits() != 32 {
		t.Errorf("expected /32 host route, got /%d", p.Bits())
	}
}

func TestNewSyntheticIsValidWithStampedSrc(t *testing.T) {
	obj := NewSynthetic(ParseContext{})
	if !obj.Valid() {
		t.Error("expected synthetic object to be valid")
	}
	if !strings.HasPrefix(obj.Src, "dom:") {
		t.Errorf("expected synthetic src to be uuid-stamped, got %q", obj.Src)
	}
}
