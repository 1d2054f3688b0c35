package rpsl

import (
	"path/filepath"
)

/*
config.go implements the registry's config object: a small DOM object at
"<root>/.rpsl/config" that names the namespace, the schema and owner
types, the default signing maintainer, and the primary-key/network-owner
relation tables consulted when parsing objects ([Config.ParseContext])
and by [BuildIndex] when collecting network records.
*/

// Config wraps the parsed config object and the registry root it was
// loaded from, deriving every sidecar path the indexer and lookup
// engine consult.
type Config struct {
	Path string
	dom  *Object
}

// Namespace is the object-type namespace, default "dn42".
func (c *Config) Namespace() string { return string(c.dom.Get("namespace", 0, "dn42")) }

// Schema is the object-type name used for schema objects, default "schema".
func (c *Config) Schema() string { return string(c.dom.Get("schema", 0, "schema")) }

// Owners is the object-type name used for maintainer objects, default "mntner".
func (c *Config) Owners() string { return string(c.dom.Get("owner", 0, "mntner")) }

// Source is the registry's source tag, default "DN42".
func (c *Config) Source() string { return string(c.dom.Get("source", 0, "DN42")) }

// DefaultOwner is the config's "default-owner" value; absent one, it is
// the config object's own first mnt-by.
func (c *Config) DefaultOwner() string {
	def := Value("")
	if len(c.dom.mntner) > 0 {
		def = Value(c.dom.mntner[0])
	}
	return string(c.dom.Get("default-owner", 0, def))
}

// NetworkOwners maps a network object type (e.g. "aut-num") to the
// container type that owns its numbering space (e.g. "as-block"),
// parsed from repeated "network-owner: <parent> <child>" lines.
func (c *Config) NetworkOwners() map[string]string {
	out := map[string]string{}
	for _, v := range c.dom.GetAll("network-owner") {
		f := v.Fields()
		if len(f) == 2 {
			out[f[1]] = f[0]
		}
	}
	return out
}

// NetworkParents returns the distinct set of container types referenced
// as a parent by [Config.NetworkOwners].
func (c *Config) NetworkParents() map[string]struct{} {
	out := map[string]struct{}{}
	for _, parent := range c.NetworkOwners() {
		out[parent] = struct{}{}
	}
	return out
}

// PrimaryKeys maps an object type to the attribute key that names its
// primary key, parsed from repeated "primary-key: <type> <key>" lines.
func (c *Config) PrimaryKeys() map[string]string {
	out := map[string]string{}
	for _, v := range c.dom.GetAll("primary-key") {
		f := v.Fields()
		if len(f) == 2 {
			out[f[0]] = f[1]
		}
	}
	return out
}

// SchemaDir is the directory holding schema objects.
func (c *Config) SchemaDir() string { return filepath.Join(c.Path, c.Schema()) }

// OwnerDir is the directory holding maintainer objects.
func (c *Config) OwnerDir() string { return filepath.Join(c.Path, c.Owners()) }

// ConfigFile is the config object's own sidecar path.
func (c *Config) ConfigFile() string { return filepath.Join(c.Path, ".rpsl", "config") }

// IndexFile is the primary index sidecar path.
func (c *Config) IndexFile() string { return filepath.Join(c.Path, ".rpsl", "index") }

// LinksFile is the cross-reference sidecar path.
func (c *Config) LinksFile() string { return filepath.Join(c.Path, ".rpsl", "links") }

// SchemaFile is the compiled-schema-index sidecar path.
func (c *Config) SchemaFile() string { return filepath.Join(c.Path, ".rpsl", "schema") }

// NetTreeFile is the serialized network-tree sidecar path.
func (c *Config) NetTreeFile() string { return filepath.Join(c.Path, ".rpsl", "nettree") }

// ParseContext derives the [ParseContext] every object under this
// registry root should be parsed with.
func (c *Config) ParseContext() ParseContext {
	return ParseContext{Namespace: c.Namespace(), PrimaryKeys: c.PrimaryKeys()}
}

/*
LoadConfig reads "<path>/.rpsl/config" and returns the resulting
[Config]. A bootstrap [ParseContext] (no primary keys, default
namespace) is used to parse the config object itself, since its own
namespace is not known until after parsing.
*/
func LoadConfig(path string) (*Config, error) {
	src := filepath.Join(path, ".rpsl", "config")
	dom, err := ParseFile(src, ParseContext{Namespace: "dn42"})
	if err != nil {
		return nil, err
	}
	return &Config{Path: path, dom: dom}, nil
}

// PrimaryKeyRule is one "primary-key: <type> <key>" declaration, used
// by [BuildConfig].
type PrimaryKeyRule struct{ Type, Key string }

// NetworkOwnerRule is one "network-owner: <parent> <child>" declaration,
// used by [BuildConfig].
type NetworkOwnerRule struct{ Parent, Child string }

/*
BuildConfig constructs a fresh config [Object] from parameters, the way
a registry is initialized from scratch. The returned [Config]'s Path is
path; callers persist it via [Config.Format] and [Config.ConfigFile].
*/
func BuildConfig(path, namespace, schema, owners, defaultOwner, source string, primaryKeys []PrimaryKeyRule, networkOwners []NetworkOwnerRule) *Config {
	dom := NewSynthetic(ParseContext{Namespace: namespace})
	dom.Src = filepath.Join(path, ".rpsl", "config")
	dom.Put("namespace", namespace, 0, true)
	dom.Put("schema", schema, 0, true)
	dom.Put("owner", owners, 0, true)
	dom.Put("default-owner", defaultOwner, 0, true)
	for _, r := range primaryKeys {
		dom.Put("primary-key", r.Type+" "+r.Key, 0, true)
	}
	for _, r := range networkOwners {
		dom.Put("network-owner", r.Parent+" "+r.Child, 0, true)
	}
	dom.Put("mnt-by", defaultOwner, 0, true)
	dom.Put("source", source, 0, true)

	return &Config{Path: path, dom: dom}
}

// Format renders the config object's canonical textual form, suitable
// for writing to [Config.ConfigFile].
func (c *Config) Format() string { return c.dom.Format() }

// DefaultPrimaryKeys returns the dn42 registry's conventional
// primary-key table, used by the CLI's init subcommand as a starting
// point for a freshly built registry.
func DefaultPrimaryKeys() []PrimaryKeyRule {
	return []PrimaryKeyRule{
		{"as-block", "as-block"},
		{"as-set", "as-set"},
		{"aut-num", "aut-num"},
		{"dns", "domain"},
		{"inet6num", "inet6num"},
		{"inetnum", "inetnum"},
		{"inet-rtr", "inet-rtr"},
		{"mntner", "mntner"},
		{"organisation", "organisation"},
		{"person", "person"},
		{"role", "role"},
		{"route", "route"},
		{"route-set", "route-set"},
		{"route6", "route6"},
		{"schema", "ref"},
	}
}

// DefaultNetworkOwners returns the dn42 registry's conventional
// numbering-space containment table.
func DefaultNetworkOwners() []NetworkOwnerRule {
	return []NetworkOwnerRule{
		{"as-block", "aut-num"},
		{"inetnum", "inetnum"},
		{"inet6num", "inet6num"},
	}
}
