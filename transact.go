package rpsl

import (
	"strings"
)

/*
transact.go implements the transaction bundle format: a single text
stream bundling one or more objects plus delete directives under a
".BEGIN <mntner>" / ".END" envelope, the wire format a maintainer's
update submission takes.
*/

// Deletion is one ".DELETE <type> <name>" directive in a bundle.
type Deletion struct {
	Type string
	Name string
}

/*
TransactionBundle is a parsed transaction: the submitting maintainer,
the ordered objects it contains, and any deletions it requests.
*/
type TransactionBundle struct {
	Mntner  string
	Objects []*Object
	Deletes []Deletion
}

/*
ParseTransaction parses lines into a [TransactionBundle]. Lines before
".BEGIN <mntner>" are skipped, and a bundle without one is rejected
with [ErrMissingBegin]; everything after it up to the matching
".END" is either buffered into an object (flushed on the next "."
directive) or interpreted as a ".DELETE <type> <name>" directive.
Objects that fail to parse (see [Object.Valid]) are dropped silently,
matching the originating tool's behavior.
*/
func ParseTransaction(lines []string, ctx ParseContext) (*TransactionBundle, error) {
	b := &TransactionBundle{}

	var buffer []string
	var i int
	ended := false

	flush := func() {
		if len(buffer) == 0 {
			return
		}
		obj := Parse(buffer, "bundle:"+b.Mntner, ctx)
		buffer = nil
		if obj.Valid() {
			b.Objects = append(b.Objects, obj)
		}
	}

	for i < len(lines) {
		line := lines[i]
		i++

		if b.Mntner == "" {
			if !strings.HasPrefix(line, ".BEGIN") {
				continue
			}
			fields := fields(line)
			if len(fields) < 2 {
				continue
			}
			b.Mntner = fields[1]
			continue
		}

		if strings.HasPrefix(line, ".") {
			flush()

			if strings.HasPrefix(line, ".END") {
				ended = true
				break
			}

			if strings.HasPrefix(line, ".DELETE") {
				sp := fields(line)
				if len(sp) > 2 {
					b.Deletes = append(b.Deletes, Deletion{Type: sp[1], Name: sp[2]})
				}
			}
			continue
		}

		buffer = append(buffer, line)
	}

	if b.Mntner == "" {
		return nil, ErrMissingBegin
	}
	flush()
	if !ended {
		return nil, ErrUnterminatedBundle
	}

	return b, nil
}

/*
Format renders the bundle back to its wire form: ".BEGIN <mntner>",
every deletion, every object preceded by a "..." separator line, and
".END".
*/
func (b *TransactionBundle) Format() string {
	var sb strings.Builder
	sb.WriteString(".BEGIN ")
	sb.WriteString(b.Mntner)
	sb.WriteByte('\n')

	for _, d := range b.Deletes {
		sb.WriteString(".DELETE ")
		sb.WriteString(d.Type)
		sb.WriteByte(' ')
		sb.WriteString(d.Name)
		sb.WriteByte('\n')
	}

	for _, o := range b.Objects {
		sb.WriteString("...\n")
		sb.WriteString(o.Format())
	}

	sb.WriteString(".END\n")
	return sb.String()
}
