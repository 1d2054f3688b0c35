package rpsl

import (
	"bufio"
	"net/netip"
	"os"
	"strings"

	"github.com/google/uuid"
)

/*
dom.go implements the object DOM: the line-oriented attribute/value
format, with continuation lines, blank-continuation lines, and a
multimap index.
*/

// ParseContext threads the two pieces of process-wide state the
// original tool kept as mutable class attributes -- the registry
// namespace and the per-type primary-key map -- into every [Object]
// construction as an explicit, immutable value.
type ParseContext struct {
	Namespace   string
	PrimaryKeys map[string]string // object type -> its primary attribute key
}

// Attribute is an ordered (key, value) pair, the physical line it began
// on (1-indexed, 0 if synthesized by [Object.Put]).
type Attribute struct {
	Key   string
	Value Value
	Line  int
}

// Loc formats a human-readable location for diagnostic messages.
func (a Attribute) Loc(src string) string {
	s := sprintf("%s Line %d ", src, a.Line)
	if a.Key != "" {
		s += sprintf("Key [%s]:", a.Key)
	}
	return s
}

// Value is a DOM attribute value: a UTF-8 string that may span multiple
// physical lines via the continuation rule.
type Value string

func (v Value) String() string { return string(v) }

// Lines splits the value into its constituent physical lines.
func (v Value) Lines() []string { return strings.Split(string(v), "\n") }

// Fields splits the value on whitespace.
func (v Value) Fields() []string { return fields(string(v)) }

// AsKey renders the value as a canonical filename component: "/" becomes
// "_" and spaces are stripped.
func (v Value) AsKey() string { return asFilename(string(v)) }

// AsNet parses the value as an IP network in its native address family.
// A value without a "/" is treated as a host route.
func (v Value) AsNet() (netip.Prefix, error) {
	s := trimS(string(v))
	if !strings.Contains(s, "/") {
		addr, err := netip.ParseAddr(s)
		if err != nil {
			return netip.Prefix{}, ErrInvalidNetwork
		}
		return netip.PrefixFrom(addr, addrBits(addr)), nil
	}
	p, err := netip.ParsePrefix(s)
	if err != nil {
		return netip.Prefix{}, ErrInvalidNetwork
	}
	return p, nil
}

// AsNet6 parses the value into its canonical IPv6 form; see [AsNet6].
func (v Value) AsNet6() (netip.Prefix, error) { return AsNet6(string(v)) }

/*
Object is a parsed registry object: an ordered sequence of [Attribute]
values plus a multimap key index, a set of keys carrying multi-line
values, and a cached mnt-by list.

The zero value is not useful; construct with [Parse] or [ParseFile].
*/
type Object struct {
	Src string

	attrs  []Attribute
	keys   map[string][]int
	multi  map[string]bool
	mntner []string
	ctx    ParseContext
	valid  bool
}

// Valid reports whether the object parsed to at least one attribute
// line without a dangling continuation.
func (o *Object) Valid() bool { return o != nil && o.valid }

// Attributes returns the object's attributes in file order.
func (o *Object) Attributes() []Attribute { return o.attrs }

// HasKey reports whether key occurs at least once.
func (o *Object) HasKey(key string) bool { _, ok := o.keys[key]; return ok }

// Count returns the number of occurrences of key.
func (o *Object) Count(key string) int { return len(o.keys[key]) }

// Keys returns every distinct attribute key present, unordered.
func (o *Object) Keys() []string {
	out := make([]string, 0, len(o.keys))
	for k := range o.keys {
		out = append(out, k)
	}
	return out
}

// IsMultiline reports whether key has at least one occurrence whose
// value spans more than one physical line.
func (o *Object) IsMultiline(key string) bool { return o.multi[key] }

/*
Get returns the value at the index-th occurrence of key, or def if
fewer than index+1 occurrences exist. index may be negative to count
from the end, matching the Python source's slicing semantics.
*/
func (o *Object) Get(key string, index int, def Value) Value {
	idxs, ok := o.keys[key]
	if !ok {
		return def
	}
	if index < 0 {
		index += len(idxs)
	}
	if index < 0 || index >= len(idxs) {
		return def
	}
	return o.attrs[idxs[index]].Value
}

// GetOK is [Object.Get] with an explicit found flag instead of a
// caller-supplied default.
func (o *Object) GetOK(key string, index int) (Value, bool) {
	idxs, ok := o.keys[key]
	if !ok {
		return "", false
	}
	if index < 0 {
		index += len(idxs)
	}
	if index < 0 || index >= len(idxs) {
		return "", false
	}
	return o.attrs[idxs[index]].Value, true
}

// GetAll returns every value for key, in file order.
func (o *Object) GetAll(key string) []Value {
	idxs := o.keys[key]
	out := make([]Value, len(idxs))
	for i, ix := range idxs {
		out[i] = o.attrs[ix].Value
	}
	return out
}

/*
Put replaces the index-th occurrence of key with value, or appends a new
attribute when append is true or no such occurrence exists.
*/
func (o *Object) Put(key, value string, index int, appendNew bool) {
	idxs := o.keys[key]
	if appendNew || index < 0 || index >= len(idxs) {
		pos := len(o.attrs)
		o.attrs = append(o.attrs, Attribute{Key: key, Value: Value(value)})
		o.keys[key] = append(o.keys[key], pos)
		if key == "mnt-by" {
			o.mntner = append(o.mntner, value)
		}
		return
	}
	pos := idxs[index]
	o.attrs[pos] = Attribute{Key: key, Value: Value(value), Line: o.attrs[pos].Line}
	if key == "mnt-by" {
		for i := range o.mntner {
			if i == index {
				o.mntner[i] = value
			}
		}
	}
}

// Type is the key of the first attribute.
func (o *Object) Type() string {
	if len(o.attrs) == 0 {
		return ""
	}
	return o.attrs[0].Key
}

/*
Name returns the value of the type's primary key as declared by the
parse context, or the first attribute's value if the type declares no
primary key.
*/
func (o *Object) Name() string {
	if pk, ok := o.ctx.PrimaryKeys[o.Type()]; ok {
		if v, ok2 := o.GetOK(pk, 0); ok2 {
			return string(v)
		}
	}
	if len(o.attrs) == 0 {
		return ""
	}
	return string(o.attrs[0].Value)
}

// Mntner returns the ordered list of mnt-by values.
func (o *Object) Mntner() []string { return append([]string(nil), o.mntner...) }

// Namespace returns the object's parse-context namespace.
func (o *Object) Namespace() string {
	if o.ctx.Namespace == "" {
		return "default"
	}
	return o.ctx.Namespace
}

// Rel is the fully qualified "<namespace>.<type>" identifier.
func (o *Object) Rel() string { return o.Namespace() + "." + o.Type() }

// IndexKey identifies an object by its fully qualified type and name,
// the join key used by the index/links sidecars and the lookup engine.
type IndexKey struct{ Rel, Name string }

// Index returns the object's lookup key, its source path, and a
// comma-joined rendering of its maintainers.
func (o *Object) Index() (IndexKey, string, string) {
	return IndexKey{Rel: o.Rel(), Name: o.Name()}, o.Src, join(o.mntner, ",")
}

/*
Format reproduces the canonical textual form of the object: key, colon,
padding to column max(19, longest_key+2), first value line; subsequent
value lines padded to the value column, blank continuations emitted as
a lone "+".
*/
func (o *Object) Format() string {
	length := 19
	for _, a := range o.attrs {
		if len(a.Key)+2 > length {
			length = len(a.Key) + 2
		}
	}

	var b strings.Builder
	for _, a := range o.attrs {
		lines := a.Value.Lines()
		b.WriteString(a.Key)
		b.WriteByte(':')
		b.WriteString(strings.Repeat(" ", length-len(a.Key)))
		b.WriteString(lines[0])
		b.WriteByte('\n')
		for _, m := range lines[1:] {
			if m == "" {
				b.WriteString("+\n")
				continue
			}
			b.WriteString(strings.Repeat(" ", length+1))
			b.WriteString(m)
			b.WriteByte('\n')
		}
	}
	return b.String()
}

/*
Parse consumes an ordered sequence of lines and returns an [Object]. The
object is marked valid unless the first structural line is a dangling
continuation or no attribute line is found at all. Lines with no colon and no continuation marker, and
lines whose key does not match the attribute-key grammar (see
[isIdentifier]), are silently dropped.
*/
func Parse(lines []string, src string, ctx ParseContext) *Object {
	o := &Object{
		Src:   src,
		ctx:   ctx,
		keys:  map[string][]int{},
		multi: map[string]bool{},
		valid: true,
	}

	haveLastMulti := false
	for lineno, raw := range lines {
		line := strings.TrimRight(raw, "\r\n")
		if len(line) == 0 {
			continue
		}

		switch line[0] {
		case ' ', '\t':
			if len(o.attrs) == 0 {
				o.valid = false
				return o
			}
			idx := len(o.attrs) - 1
			o.attrs[idx].Value += "\n" + Value(trimS(line))
			if !haveLastMulti {
				o.multi[o.attrs[idx].Key] = true
				haveLastMulti = true
			}
			continue
		case '+':
			if len(o.attrs) == 0 {
				o.valid = false
				return o
			}
			idx := len(o.attrs) - 1
			o.attrs[idx].Value += "\n"
			if !haveLastMulti {
				o.multi[o.attrs[idx].Key] = true
				haveLastMulti = true
			}
			continue
		case '#':
			continue
		}

		colon := strings.IndexByte(line, ':')
		if colon < 0 {
			continue
		}
		key := trimS(line[:colon])
		val := trimS(line[colon+1:])
		if !isIdentifier(key) {
			continue
		}

		o.attrs = append(o.attrs, Attribute{Key: key, Value: Value(val), Line: lineno + 1})
		o.keys[key] = append(o.keys[key], len(o.attrs)-1)
		if key == "mnt-by" {
			o.mntner = append(o.mntner, val)
		}
		haveLastMulti = false
	}

	if len(o.attrs) == 0 {
		o.valid = false
	}
	return o
}

// ParseFile reads src and parses it into an [Object].
func ParseFile(path string, ctx ParseContext) (*Object, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var lines []string
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 64*1024), 1024*1024)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		return nil, err
	}

	return Parse(lines, path, ctx), nil
}

/*
NewSynthetic returns an empty, valid [Object] stamped with a synthetic
"dom:<uuid>" source path, for objects built programmatically rather than
read from a file -- e.g. by [BuildConfig].
*/
func NewSynthetic(ctx ParseContext) *Object {
	return &Object{
		Src:   "dom:" + uuid.NewString(),
		ctx:   ctx,
		keys:  map[string][]int{},
		multi: map[string]bool{},
		valid: true,
	}
}
