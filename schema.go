package rpsl

import (
	"strings"
)

/*
schema.go implements the schema engine: compiling a schema object into
per-attribute constraint sets, and validating a target object against
its compiled schema.
*/

// Level is the severity of a single validation message.
type Level int

const (
	LevelInfo Level = iota
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelInfo:
		return "info"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "unknown"
	}
}

// Message pairs a severity with the attribute it was raised against and
// free text explaining the finding.
type Message struct {
	Level Level
	Attr  Attribute
	Src   string
	Text  string
}

func (m Message) String() string { return m.Attr.Loc(m.Src) + " " + m.Text }

/*
State accumulates validation [Message]s and an overall pass/fail
verdict. A single [LevelError] message anywhere sets the verdict to
fail; the type is otherwise a pure value -- validation never aborts, it
only accumulates.
*/
type State struct {
	ok   bool
	msgs []Message
}

// NewState returns a passing, empty [State].
func NewState() *State { return &State{ok: true} }

// OK reports the current pass/fail verdict.
func (s *State) OK() bool { return s.ok }

// Messages returns every accumulated message, in the order recorded.
func (s *State) Messages() []Message { return s.msgs }

func (s *State) String() string {
	if s.ok {
		return "PASS"
	}
	return "FAIL"
}

func (s *State) add(level Level, a Attribute, src, text string) {
	s.msgs = append(s.msgs, Message{Level: level, Attr: a, Src: src, Text: text})
	if level == LevelError {
		s.ok = false
	}
}

func (s *State) Info(a Attribute, src, text string)    { s.add(LevelInfo, a, src, text) }
func (s *State) Warning(a Attribute, src, text string) { s.add(LevelWarning, a, src, text) }
func (s *State) Error(a Attribute, src, text string)   { s.add(LevelError, a, src, text) }

// Extend merges other into s, taking on other's fail verdict if it
// failed and keeping every message from both.
func (s *State) Extend(other *State) {
	s.msgs = append(s.msgs, other.msgs...)
	if !other.ok {
		s.ok = false
	}
}

// constraint is the parsed flag set and lookup refs for one schema key.
type constraint struct {
	flags map[string]bool
	links []string
}

func (c constraint) has(flag string) bool { return c.flags[flag] }

/*
Schema is a compiled schema object: the constraint tuple for every
declared "key" attribute, plus the primary key and reference type it
was compiled from.
*/
type Schema struct {
	Object *Object

	Ref     string // fully qualified type this schema describes, e.g. "dn42.person"
	Name    string // display name from the "schema" attribute
	Primary string // primary key attribute, "" if none declared
	Type    string // attribute key flagged "schema" (the type discriminator), if any

	attrs map[string]constraint
}

/*
CompileSchema parses a schema object's "key" attributes into a [Schema].
Each key value is whitespace-tokenized up to a literal ">"; tokens name
cardinality (required/optional/recommend/deprecate), multiplicity
(single/multiple), role flags (primary/schema), and an optional
"lookup=ref1,ref2" reference declaration. A primary key becomes
implicitly single+oneline+required; absence of oneline implies
multiline; absence of single implies multiple.
*/
func CompileSchema(obj *Object) *Schema {
	s := &Schema{Object: obj, attrs: map[string]constraint{}}

	for _, a := range obj.Attributes() {
		switch a.Key {
		case "ref":
			s.Ref = string(a.Value)
		case "schema":
			s.Name = string(a.Value)
		case "key":
			toks := a.Value.Fields()
			if len(toks) == 0 {
				continue
			}
			key := toks[0]
			c := constraint{flags: map[string]bool{}}
			for _, t := range toks[1:] {
				if t == ">" {
					break
				}
				if strings.HasPrefix(t, "lookup=") {
					c.links = strings.Split(strings.TrimPrefix(t, "lookup="), ",")
				}
				c.flags[t] = true
			}
			s.attrs[key] = c
		}
	}

	for key, c := range s.attrs {
		if c.has("schema") {
			s.Type = key
		}
		if c.has("primary") {
			s.Primary = key
			c.flags["oneline"] = true
			delete(c.flags, "multiline")
			c.flags["single"] = true
			delete(c.flags, "multiple")
			c.flags["required"] = true
			delete(c.flags, "optional")
			delete(c.flags, "recommend")
			delete(c.flags, "deprecate")
		}
		if !c.has("oneline") {
			c.flags["multiline"] = true
		}
		if !c.has("single") {
			c.flags["multiple"] = true
		}
		s.attrs[key] = c
	}

	return s
}

// Links returns the declared lookup reference types for key, or nil.
func (s *Schema) Links(key string) []string { return s.attrs[key].links }

// HasAttr reports whether key is declared by the schema.
func (s *Schema) HasAttr(key string) bool { _, ok := s.attrs[key]; return ok }

/*
Check validates target against s, returning a [State]. lookups, if
non-nil, is consulted to resolve "lookup=" declarations; a nil lookups
set skips reference checking entirely (structural-only validation).
*/
func (s *Schema) Check(target *Object, lookups map[IndexKey]struct{}) *State {
	state := NewState()
	if !target.Valid() {
		state.Error(Attribute{}, target.Src, "file does not parse")
	}

	s.checkStructure(state, target)
	s.checkValues(state, target, lookups)
	s.checkInetnum(state, target)

	return state
}

func (s *Schema) checkStructure(state *State, f *Object) {
	for key, c := range s.attrs {
		row := Attribute{Key: key}
		present := f.HasKey(key)

		if c.has("required") && !present {
			state.Error(row, f.Src, "not found and is required")
		} else if c.has("recommend") && !present {
			state.Info(row, f.Src, "not found and is recommended")
		}

		if c.has("schema") && f.Rel() != s.Ref {
			state.Error(row, f.Src, "not found and is required as the first line")
		}

		if c.has("single") && present && f.Count(key) > 1 {
			state.Warning(row, f.Src, "first defined here and has repeated keys")
			for i := 1; i < f.Count(key); i++ {
				state.Error(row, f.Src, "repeated can only appear once")
			}
		}

		if c.has("oneline") && present {
			for i := 0; i < f.Count(key); i++ {
				if len(f.Get(key, i, "").Lines()) > 1 {
					state.Error(row, f.Src, "can not have multiple lines")
				}
			}
		}
	}
}

func (s *Schema) checkValues(state *State, f *Object, lookups map[IndexKey]struct{}) {
	for _, a := range f.Attributes() {
		if a.Key == s.Primary {
			if !strings.HasSuffix(f.Src, a.Value.AsKey()) {
				state.Error(a, f.Src, sprintf("primary [%s] does not match filename [%s].", a.Value, f.Src))
			}
		}

		if strings.HasPrefix(a.Key, "x-") {
			state.Info(a, f.Src, "is user defined")
			continue
		}

		c, ok := s.attrs[a.Key]
		if !ok {
			state.Error(a, f.Src, "not in schema")
			continue
		}

		if c.has("deprecate") {
			state.Info(a, f.Src, "was found and is deprecated")
		}

		if lookups != nil && len(c.links) > 0 {
			s.checkLookup(state, a, f.Src, c.links, lookups)
		}
	}
}

func (s *Schema) checkLookup(state *State, a Attribute, src string, refs []string, lookups map[IndexKey]struct{}) {
	vfields := a.Value.Fields()
	if len(vfields) == 0 {
		return
	}
	val := vfields[0]

	for _, ref := range refs {
		if _, ok := lookups[IndexKey{Rel: ref, Name: val}]; ok {
			return
		}
	}
	state.Error(a, src, sprintf("references object %s in %v but does not exist.", val, refs))
}

/*
checkInetnum implements a type-specific sanity check: for
inetnum/inet6num objects, the attribute whose key equals the type must
equal "<network_address> - <broadcast_address>" of the CIDR stored in
"cidr".
*/
func (s *Schema) checkInetnum(state *State, f *Object) {
	typ := f.Type()
	if typ != "inetnum" && typ != "inet6num" {
		return
	}

	cidrVal, ok := f.GetOK("cidr", 0)
	if !ok {
		return
	}
	cidr, err := cidrVal.AsNet()
	if err != nil {
		return
	}

	lo := cidr.Masked().Addr()
	hi := lastAddr(cidr)
	cidrRange := lo.StringExpanded() + "-" + hi.StringExpanded()

	fileRange := string(f.Get(typ, 0, ""))
	fileRange = stripWhitespace(fileRange)

	if cidrRange != fileRange {
		state.Error(Attribute{}, f.Src, sprintf("inetnum range [%s] does not match: [%s]", fileRange, cidrRange))
	}
}

func stripWhitespace(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r == ' ' || r == '\t' || r == '\n' || r == '\r' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}
