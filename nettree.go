package rpsl

import (
	"net/netip"
	"sort"
	"strconv"
	"strings"
)

/*
nettree.go implements the prefix-ordered containment hierarchy over the
unified IPv6 address space. Nodes reference each other by integer
index into a flat arena rather than by pointer -- natural for both the
in-memory tree and its CSV sidecar form.
*/

// NetRecord is one allocation block or route announcement.
type NetRecord struct {
	Network    netip.Prefix
	Policy     string
	Status     string
	IsLeaf     bool
	ObjectType string
	ObjectName string
}

// Node is one network-tree node: its own record (nil for the synthetic
// root), its parent's index, its level, and its children.
type Node struct {
	Index    int
	Parent   int
	Level    int
	Net      *NetRecord // nil only for the root
	Children []int
	Routes   []NetRecord
}

// NetTree is the arena of [Node]s, keyed by index, with index 0 always
// the synthetic root ::/0 at level -1.
type NetTree struct {
	nodes     []*Node
	byNetwork map[netip.Prefix]int
}

const rootLevel = -1

/*
BuildNetTree builds a [NetTree] from nets (allocation blocks) and routes
(leaf announcements): starting at the
synthetic root, each record descends into the first child whose prefix
supernets it; when none does, it becomes a new child at the current
node's level+1. Routes are inserted after all non-leaf records and
attach to the deepest containing node's Routes list rather than
becoming tree nodes themselves.
*/
func BuildNetTree(nets, routes []NetRecord) *NetTree {
	t := &NetTree{byNetwork: map[netip.Prefix]int{}}
	root := &Node{Index: 0, Parent: -1, Level: rootLevel}
	t.nodes = append(t.nodes, root)

	sorted := append([]NetRecord(nil), nets...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return compareNetOrder(sorted[i].Network, sorted[j].Network) < 0
	})

	for i := range sorted {
		rec := sorted[i]
		cur := root
		for {
			child, ok := t.descend(cur, rec.Network)
			if !ok {
				break
			}
			cur = child
		}
		idx := len(t.nodes)
		n := &Node{Index: idx, Parent: cur.Index, Level: cur.Level + 1, Net: &rec}
		t.nodes = append(t.nodes, n)
		t.byNetwork[rec.Network] = idx
		cur.Children = append(cur.Children, idx)
	}

	sortedRoutes := append([]NetRecord(nil), routes...)
	sort.SliceStable(sortedRoutes, func(i, j int) bool {
		return compareNetOrder(sortedRoutes[i].Network, sortedRoutes[j].Network) < 0
	})

	for i := range sortedRoutes {
		rec := sortedRoutes[i]
		rec.IsLeaf = true
		cur := root
		for {
			child, ok := t.descend(cur, rec.Network)
			if !ok {
				break
			}
			cur = child
		}
		cur.Routes = append(cur.Routes, rec)
	}

	return t
}

// descend returns the first child of n whose network supernets needle.
func (t *NetTree) descend(n *Node, needle netip.Prefix) (*Node, bool) {
	for _, ci := range n.Children {
		child := t.nodes[ci]
		if child.Net != nil && child.Net.Network.Overlaps(needle) && child.Net.Network.Bits() <= needle.Bits() {
			return child, true
		}
	}
	return nil, false
}

// Root returns the synthetic ::/0 root node.
func (t *NetTree) Root() *Node { return t.nodes[0] }

// Node returns the node at idx.
func (t *NetTree) Node(idx int) *Node { return t.nodes[idx] }

// Len returns the number of non-root nodes in the tree.
func (t *NetTree) Len() int { return len(t.nodes) - 1 }

/*
Walk returns the chain of nodes from the root to the deepest node whose
network supernets needle. The caller treats the final element as the
principal match and may consult its Routes for a leaf.
*/
func (t *NetTree) Walk(needle netip.Prefix) []*Node {
	chain := []*Node{t.Root()}
	cur := t.Root()
	for {
		child, ok := t.descend(cur, needle)
		if !ok {
			return chain
		}
		chain = append(chain, child)
		cur = child
	}
}

// MatchRoute searches n's Routes for one whose network supernets ip.
func (n *Node) MatchRoute(ip netip.Prefix) (NetRecord, bool) {
	for _, r := range n.Routes {
		if r.Network.Overlaps(ip) && r.Network.Bits() <= ip.Bits() {
			return r, true
		}
	}
	return NetRecord{}, false
}

/*
Lines renders the tree's CSV sidecar form: ordered by ascending level
then ascending index, one line per node as
"<index>|<parent>|<level>|<address>|<prefix>|<policy>|<status>|<type>|<name>",
with leaf route lines using index 0000 and level = parent level + 1.
*/
func (t *NetTree) Lines() []string {
	ordered := append([]*Node(nil), t.nodes[1:]...)
	sort.SliceStable(ordered, func(i, j int) bool {
		if ordered[i].Level != ordered[j].Level {
			return ordered[i].Level < ordered[j].Level
		}
		return ordered[i].Index < ordered[j].Index
	})

	var out []string
	for _, n := range ordered {
		out = append(out, netLine(n.Index, n.Parent, n.Level, *n.Net))
		for _, r := range n.Routes {
			out = append(out, netLine(0, n.Index, n.Level+1, r))
		}
	}
	return out
}

func netLine(index, parent, level int, rec NetRecord) string {
	addr := rec.Network.Masked().Addr()
	fields := []string{
		pad4(index), pad4(parent), pad4(level),
		addr.StringExpanded(),
		strconv.Itoa(rec.Network.Bits()),
		rec.Policy,
		rec.Status,
		rec.ObjectType,
		rec.ObjectName,
	}
	return strings.Join(fields, "|")
}

func pad4(n int) string {
	s := strconv.Itoa(n)
	if len(s) >= 4 {
		return s
	}
	return strings.Repeat("0", 4-len(s)) + s
}

/*
ParseNetTree reconstructs a [NetTree] from lines previously produced by
[NetTree.Lines]. Leaf lines (object_type route/route6) are appended to
their parent's Routes; non-leaf lines register themselves as a child of
their parent by network, matching the serialization's containment
information exactly so a round trip through Lines is byte for byte
identical.
*/
func ParseNetTree(lines []string) (*NetTree, error) {
	t := &NetTree{byNetwork: map[netip.Prefix]int{}}
	root := &Node{Index: 0, Parent: -1, Level: rootLevel}
	t.nodes = append(t.nodes, root)

	byIndex := map[int]*Node{0: root}

	for _, line := range lines {
		line = trimS(line)
		if line == "" {
			continue
		}
		f := strings.Split(line, "|")
		if len(f) != 9 {
			continue
		}

		index, _ := strconv.Atoi(f[0])
		parent, _ := strconv.Atoi(f[1])
		level, _ := strconv.Atoi(f[2])
		addr, err := netip.ParseAddr(f[3])
		if err != nil {
			continue
		}
		bits, _ := strconv.Atoi(f[4])
		net := netip.PrefixFrom(addr, bits)

		rec := NetRecord{
			Network:    net,
			Policy:     f[5],
			Status:     f[6],
			ObjectType: f[7],
			ObjectName: f[8],
		}

		isLeaf := rec.ObjectType == "route" || rec.ObjectType == "route6"
		if isLeaf {
			rec.IsLeaf = true
			if p, ok := byIndex[parent]; ok {
				p.Routes = append(p.Routes, rec)
			}
			continue
		}

		n := &Node{Index: index, Parent: parent, Level: level, Net: &rec}
		if len(t.nodes) <= index {
			grown := make([]*Node, index+1)
			copy(grown, t.nodes)
			t.nodes = grown
		}
		t.nodes[index] = n
		byIndex[index] = n
		t.byNetwork[net] = index

		if p, ok := byIndex[parent]; ok && parent != index {
			p.Children = append(p.Children, index)
		}
	}

	return t, nil
}
