package rpsl

import (
	"os"
	"path/filepath"
	"testing"
)

func writeRegistryFixture(t *testing.T, dir string) *Config {
	t.Helper()
	cfg := BuildConfig(dir, "dn42", "schema", "mntner", "DN42-MNT", "DN42",
		DefaultPrimaryKeys(), DefaultNetworkOwners())

	mustWrite := func(rel, content string) {
		full := filepath.Join(dir, rel)
		if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	mustWrite("mntner/DN42-MNT", "mntner: DN42-MNT\ndescr: test owner\nmnt-by: DN42-MNT\n")
	mustWrite("inetnum/172.20.0.0-172.20.0.255", "inetnum: 172.20.0.0 - 172.20.0.255\ncidr: 172.20.0.0/24\nmnt-by: DN42-MNT\n")
	mustWrite("schema/dn42.mntner", "schema: dn42.mntner\nref: dn42.mntner\nkey: mntner primary schema\nkey: descr recommend\nkey: mnt-by required\n")
	mustWrite("schema/dn42.inetnum", "schema: dn42.inetnum\nref: dn42.inetnum\nkey: inetnum primary schema\nkey: cidr required\nkey: mnt-by required\n")

	if err := os.MkdirAll(filepath.Join(dir, ".rpsl"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(cfg.ConfigFile(), []byte(cfg.Format()), 0o644); err != nil {
		t.Fatal(err)
	}
	return cfg
}

func TestWalkRegistryIncrementalReportsChanges(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRegistryFixture(t, dir)

	objs, changed, err := WalkRegistryIncremental(cfg, nil)
	if err != nil {
		t.Fatalf("WalkRegistryIncremental: %v", err)
	}
	if len(objs) != 4 {
		t.Fatalf("len(objs) = %d, want 4", len(objs))
	}
	if changed != 4 {
		t.Fatalf("changed = %d, want 4 on first pass", changed)
	}

	_, changed2, err := WalkRegistryIncremental(cfg, nil)
	if err != nil {
		t.Fatalf("WalkRegistryIncremental (second pass): %v", err)
	}
	if changed2 != 0 {
		t.Fatalf("changed = %d, want 0 on unchanged second pass", changed2)
	}
}

func TestBuildIndexClassifiesNetworksAndSchemas(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRegistryFixture(t, dir)

	objs, _, err := WalkRegistryIncremental(cfg, nil)
	if err != nil {
		t.Fatalf("WalkRegistryIncremental: %v", err)
	}

	res := BuildIndex(objs, cfg, nil)
	if len(res.Files) != 4 {
		t.Fatalf("len(res.Files) = %d, want 4", len(res.Files))
	}
	if len(res.Nets) != 1 {
		t.Fatalf("len(res.Nets) = %d, want 1 (inetnum is a network-owner type)", len(res.Nets))
	}
	if res.Nets[0].ObjectType != "inetnum" {
		t.Errorf("Nets[0].ObjectType = %q, want inetnum", res.Nets[0].ObjectType)
	}
}

func TestWriteSidecarsAndOpenStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	cfg := writeRegistryFixture(t, dir)

	objs, _, err := WalkRegistryIncremental(cfg, nil)
	if err != nil {
		t.Fatalf("WalkRegistryIncremental: %v", err)
	}
	res := BuildIndex(objs, cfg, nil)
	if err := WriteSidecars(cfg, res, nil); err != nil {
		t.Fatalf("WriteSidecars: %v", err)
	}

	for _, f := range []string{cfg.IndexFile(), cfg.LinksFile(), cfg.NetTreeFile(), cfg.SchemaFile()} {
		if _, err := os.Stat(f); err != nil {
			t.Errorf("expected sidecar %s to exist: %v", f, err)
		}
	}

	store, err := OpenStore(cfg)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	found, err := store.Find("DN42-MNT", "")
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	if len(found) == 0 {
		t.Fatal("expected Find to locate the indexed mntner object")
	}
}
