package rpsl

import "testing"

func compileTestSchema(t *testing.T, lines []string) *Schema {
	t.Helper()
	obj := Parse(lines, "schema/test", ParseContext{})
	return CompileSchema(obj)
}

func TestCompileSchemaPrimaryKeyImpliesInvariants(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.mntner",
		"ref: dn42.mntner",
		"key: mntner primary schema",
		"key: descr recommend",
	})
	if s.Primary != "mntner" {
		t.Fatalf("Primary = %q, want mntner", s.Primary)
	}
	if !s.attrs["mntner"].has("single") || !s.attrs["mntner"].has("oneline") || !s.attrs["mntner"].has("required") {
		t.Error("primary key must be implicitly single, oneline, and required")
	}
}

func TestCompileSchemaDerivesMultipleAndMultiline(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.mntner",
		"ref: dn42.mntner",
		"key: mntner primary schema",
		"key: remarks",
	})
	if !s.attrs["remarks"].has("multiple") {
		t.Error("absence of single must imply multiple")
	}
	if !s.attrs["remarks"].has("multiline") {
		t.Error("absence of oneline must imply multiline")
	}
}

func TestSchemaCheckRequiredMissing(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.mntner",
		"ref: default.mntner",
		"key: mntner primary schema",
		"key: admin-c required",
	})
	target := Parse([]string{"mntner: TEST-MNT"}, "mntner/TEST-MNT", ParseContext{})
	state := s.Check(target, nil)
	if state.OK() {
		t.Fatal("expected failure for missing required attribute")
	}
}

func TestSchemaCheckUnknownAttribute(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.mntner",
		"ref: default.mntner",
		"key: mntner primary schema",
	})
	target := Parse([]string{"mntner: TEST-MNT", "bogus: value"}, "mntner/TEST-MNT", ParseContext{})
	state := s.Check(target, nil)
	if state.OK() {
		t.Fatal("expected failure for attribute not in schema")
	}
}

func TestSchemaCheckXDashAttributeIsInfoOnly(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.mntner",
		"ref: default.mntner",
		"key: mntner primary schema",
	})
	target := Parse([]string{"mntner: TEST-MNT", "x-custom: value"}, "mntner/TEST-MNT", ParseContext{})
	state := s.Check(target, nil)
	if !state.OK() {
		t.Fatal("x- prefixed attributes must not fail validation")
	}
}

func TestSchemaCheckLookupMissingReference(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.inetnum",
		"ref: default.inetnum",
		"key: inetnum primary schema",
		"key: mnt-by lookup=dn42.mntner",
	})
	target := Parse([]string{"inetnum: 172.20.0.0 - 172.20.0.255", "mnt-by: MISSING-MNT"},
		"inetnum/172.20.0.0-172.20.0.255", ParseContext{})
	lookups := map[IndexKey]struct{}{}
	state := s.Check(target, lookups)
	if state.OK() {
		t.Fatal("expected failure for unresolvable lookup reference")
	}
}

func TestSchemaCheckLookupResolvedReference(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.inetnum",
		"ref: default.inetnum",
		"key: inetnum primary schema",
		"key: mnt-by lookup=dn42.mntner",
	})
	target := Parse([]string{"inetnum: 172.20.0.0 - 172.20.0.255", "mnt-by: GOOD-MNT"},
		"inetnum/172.20.0.0-172.20.0.255", ParseContext{})
	lookups := map[IndexKey]struct{}{{Rel: "dn42.mntner", Name: "GOOD-MNT"}: {}}
	state := s.Check(target, lookups)
	for _, m := range state.Messages() {
		if m.Level == LevelError {
			t.Fatalf("unexpected error: %s", m.Text)
		}
	}
}

func TestSchemaCheckInetnumRangeMismatch(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.inetnum",
		"ref: default.inetnum",
		"key: inetnum primary schema",
		"key: cidr",
	})
	target := Parse([]string{
		"inetnum: 172.20.0.0 - 172.20.0.100",
		"cidr: 172.20.0.0/24",
	}, "inetnum/172.20.0.0-172.20.0.100", ParseContext{})
	state := s.Check(target, nil)
	if state.OK() {
		t.Fatal("expected mismatch between inetnum range and cidr to fail")
	}
}

func TestSchemaCheckInetnumRangeMatch(t *testing.T) {
	s := compileTestSchema(t, []string{
		"schema: dn42.inetnum",
		"ref: default.inetnum",
		"key: inetnum primary schema",
		"key: cidr",
	})
	cidr, err := Value("172.20.0.0/24").AsNet()
	if err != nil {
		t.Fatal(err)
	}
	lo := cidr.Masked().Addr()
	hi := lastAddr(cidr)
	rangeStr := lo.StringExpanded() + "-" + hi.StringExpanded()
	target := Parse([]string{
		"inetnum: " + rangeStr,
		"cidr: 172.20.0.0/24",
	}, "inetnum/"+rangeStr, ParseContext{})
	state := s.Check(target, nil)
	for _, m := range state.Messages() {
		if m.Level == LevelError {
			t.Fatalf("unexpected error: %s", m.Text)
		}
	}
}
