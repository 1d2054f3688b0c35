/*
Package rpsl implements a schema-driven parser, validator, indexer and
lookup engine for an RPSL-style Internet number registry: a directory of
plain-text attribute/value objects (maintainers, persons, roles, networks,
routes, autonomous-system blocks, domains, schemas).

# No registry transport

This package reads and writes a plain directory tree and a handful of
pipe-separated sidecar files under a ".rpsl" subdirectory. It does not
speak any registry transport or mirroring protocol (no NRTM, no whois
daemon); those are left to the caller, the same way the RPSL DOM does not
care whether it arrived over SFTP, git, or a local disk.

# Basic usage

	cfg, err := rpsl.LoadConfig(root)
	objs, changed, err := rpsl.WalkRegistryIncremental(cfg, nil)
	res := rpsl.BuildIndex(objs, cfg, nil)
	err = rpsl.WriteSidecars(cfg, res, nil)
	store, err := rpsl.OpenStore(cfg)
	found, err := store.Find("XUU-MNT", "mntner")
	for _, dom := range found {
		fmt.Print(dom.Format())
	}

# Object model

An [Object] is an ordered sequence of [Attribute] values plus a multimap
index, produced by [Parse] from the line-oriented grammar: attribute
lines, continuation lines, blank-continuation lines ("+"), and comments.
[Object.Format] reproduces the canonical textual form of any DOM it did
not mutate, byte for byte.

# Schemas

A [Schema] is itself an [Object] (type "schema") that declares the
attributes permitted on some other object type, via "key" attributes
carrying cardinality, multiplicity, role and lookup-reference
constraints. See [CompileSchema] and [Schema.Check].

# Network tree

[NetTree] holds the containment hierarchy of every allocated network in
the registry, rooted at ::/0, with IPv4 networks re-expressed inside
::ffff:0:0/96. See [BuildNetTree] and [NetTree.Walk].

# Resources

This package follows the data model described by:

  - [RFC 2622]: Routing Policy Specification Language
  - [RFC 2725]: Routing Policy System Security
  - the dn42 registry's own schema and tooling conventions, which this
    package's tests use as concrete fixtures.

[RFC 2622]: https://datatracker.ietf.org/doc/html/rfc2622
[RFC 2725]: https://datatracker.ietf.org/doc/html/rfc2725
*/
package rpsl
