package rpsl

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
)

/*
lookup.go implements the WHOIS-style lookup/overlay engine: loading the
index/links/nettree/schema sidecars produced by [BuildIndex] and
[WriteSidecars], and answering Find/FindNetwork/Links queries against
them, grounded on rspldom.py's RPSL class.
*/

// Store is the read side of the registry: the compiled lookup table,
// cross-reference links, network tree, and schema set loaded from a
// config's sidecars.
type Store struct {
	cfg     *Config
	files   map[IndexKey]string // key -> relative path
	byName  map[string][]IndexKey
	links   map[IndexKey][]LinkRecord
	nettree *NetTree
	schemas map[string]*Schema

	overlay   map[IndexKey]*Object
	overlayOn bool
}

/*
OpenStore loads cfg's sidecars into a read-only [Store]. All four
sidecar files (index, links, nettree, schema) must already exist; run
the indexer first if they do not.
*/
func OpenStore(cfg *Config) (*Store, error) {
	s := &Store{
		cfg:     cfg,
		files:   map[IndexKey]string{},
		byName:  map[string][]IndexKey{},
		links:   map[IndexKey][]LinkRecord{},
		schemas: map[string]*Schema{},
	}

	if err := s.loadIndex(); err != nil {
		return nil, err
	}
	if err := s.loadLinks(); err != nil {
		return nil, err
	}
	if err := s.loadNetTree(); err != nil {
		return nil, err
	}
	if err := s.loadSchemas(); err != nil {
		return nil, err
	}

	return s, nil
}

func (s *Store) loadIndex() error {
	f, err := os.Open(s.cfg.IndexFile())
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		sp := strings.Split(trimS(sc.Text()), "|")
		if len(sp) != 3 {
			continue
		}
		key := IndexKey{Rel: sp[0], Name: sp[1]}
		s.files[key] = sp[2]
		s.byName[sp[1]] = append(s.byName[sp[1]], key)
	}
	return sc.Err()
}

func (s *Store) loadLinks() error {
	f, err := os.Open(s.cfg.LinksFile())
	if err != nil {
		return err
	}
	defer f.Close()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		sp := strings.Split(trimS(sc.Text()), "|")
		if len(sp) != 5 {
			continue
		}
		key := IndexKey{Rel: sp[0], Name: sp[1]}
		s.links[key] = append(s.links[key], LinkRecord{
			Rel: sp[0], Name: sp[1], Attr: sp[2], RefType: sp[3], Value: sp[4],
		})
	}
	return sc.Err()
}

func (s *Store) loadNetTree() error {
	f, err := os.Open(s.cfg.NetTreeFile())
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	tree, err := ParseNetTree(lines)
	if err != nil {
		return err
	}
	s.nettree = tree
	return nil
}

func (s *Store) loadSchemas() error {
	f, err := os.Open(s.cfg.SchemaFile())
	if err != nil {
		return err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return err
	}

	tx, err := ParseTransaction(lines, s.cfg.ParseContext())
	if err != nil {
		return err
	}
	for _, obj := range tx.Objects {
		schema := CompileSchema(obj)
		s.schemas[schema.Ref] = schema
	}
	return nil
}

/*
WithOverlay returns a shallow copy of s with an in-memory overlay
enabled: objects appended via [Store.AppendIndex] are visible to
[Store.Find] without being written to the on-disk sidecars, the
"append_index" mode used by validate-as-you-go tooling.
Overlay writes and a full [Store.ScanFiles] validation pass must not run
concurrently against the same [Store]; the Store takes no lock of its own.
*/
func (s *Store) WithOverlay() *Store {
	cp := *s
	cp.overlay = map[IndexKey]*Object{}
	cp.overlayOn = true
	return &cp
}

// AppendIndex registers obj in the overlay without persisting it,
// making it visible to subsequent Find calls on this [Store] only. It
// returns [ErrOverlayLocked] if s was not obtained from [Store.WithOverlay].
func (s *Store) AppendIndex(obj *Object) error {
	if !s.overlayOn {
		return ErrOverlayLocked
	}
	key, _, _ := obj.Index()
	s.overlay[key] = obj
	s.byName[key.Name] = append(s.byName[key.Name], key)
	return nil
}

/*
Find returns every object matching name, optionally narrowed to a
specific schema-qualified type. When typ is empty, every key indexed
under name is returned, mirroring the WHOIS-style "any type" lookup.
Objects referenced by a returned object's links are also included, as
in the Python original's related-object expansion.
*/
func (s *Store) Find(name, typ string) ([]*Object, error) {
	var keys []IndexKey
	if typ != "" {
		keys = []IndexKey{{Rel: typ, Name: name}}
	} else {
		keys = s.byName[name]
	}

	seen := map[IndexKey]bool{}
	var out []*Object

	for _, k := range keys {
		if seen[k] {
			continue
		}
		seen[k] = true
		obj, err := s.LoadFile(k)
		if err != nil {
			continue
		}
		out = append(out, obj)

		for _, link := range s.links[k] {
			lk := IndexKey{Rel: link.RefType, Name: link.Value}
			if seen[lk] {
				continue
			}
			seen[lk] = true
			if related, err := s.LoadFile(lk); err == nil {
				out = append(out, related)
			}
		}
	}

	return out, nil
}

// LoadFile returns the object appended to the overlay under key, if any;
// otherwise it resolves key to its relative path in the on-disk index
// and parses the object.
func (s *Store) LoadFile(key IndexKey) (*Object, error) {
	if obj, ok := s.overlay[key]; ok {
		return obj, nil
	}
	rel, ok := s.files[key]
	if !ok {
		return nil, ErrSchemaNotFound
	}
	return ParseFile(filepath.Join(s.cfg.Path, rel), s.cfg.ParseContext())
}

// Links returns the cross-references recorded for key.
func (s *Store) Links(key IndexKey) []LinkRecord { return s.links[key] }

// FindNetwork walks the network tree for the network containing cidr,
// returning the deepest matching node and, if one exists, the leaf
// route record within it.
func (s *Store) FindNetwork(cidr string) (*Node, *NetRecord, error) {
	p, err := AsNet6(cidr)
	if err != nil {
		return nil, nil, err
	}
	chain := s.nettree.Walk(p)
	if len(chain) == 0 {
		return nil, nil, nil
	}
	deepest := chain[len(chain)-1]
	if rec, ok := deepest.MatchRoute(p); ok {
		return deepest, &rec, nil
	}
	return deepest, nil, nil
}

/*
ScanFiles validates every object in files against its compiled schema,
accumulating a combined [State] across all of them. Objects whose
schema is not found record a warning rather than aborting the scan.
*/
func (s *Store) ScanFiles(files []*Object) *State {
	state := NewState()
	lookups := make(map[IndexKey]struct{}, len(s.files))
	for k := range s.files {
		lookups[k] = struct{}{}
	}
	for k := range s.overlay {
		lookups[k] = struct{}{}
	}

	for _, obj := range files {
		schema, ok := s.schemas[obj.Rel()]
		if !ok {
			state.Warning(Attribute{}, obj.Src, "schema not found for "+obj.Rel())
			continue
		}
		state.Extend(schema.Check(obj, lookups))
	}
	return state
}
