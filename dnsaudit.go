package rpsl

import (
	"context"
	"fmt"
	"net"
	"net/netip"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

/*
dnsaudit.go implements the DNS zone auditor client interface: given a
maintainer's domain/inetnum/inet6num objects, resolve each declared
nserver and report whether the live zone's NS records agree with what
the registry claims. Zones are probed by a bounded set of concurrent
auditors draining one job channel; each auditor writes only the
summary of the zone it is probing, so no lock is taken.

This package does not attempt full DNSSEC chain validation (that needs
a resolver library the rest of the dependency stack has no other home
for); it reports what a live NS query can tell it and leaves signature
verification to the registry's own CI.
*/

// AuditOutcome classifies one (domain, nserver) probe.
type AuditOutcome int

const (
	OutcomeSuccess AuditOutcome = iota
	OutcomeDNSSECFail
	OutcomeWrongNS
	OutcomeWrongSOA
	OutcomeNXDomain
	OutcomeRefused
	OutcomeServfail
	OutcomeTimeout
)

func (o AuditOutcome) String() string {
	switch o {
	case OutcomeSuccess:
		return "success"
	case OutcomeDNSSECFail:
		return "dnssec_fail"
	case OutcomeWrongNS:
		return "wrong_ns"
	case OutcomeWrongSOA:
		return "wrong_soa"
	case OutcomeNXDomain:
		return "nxdomain"
	case OutcomeRefused:
		return "refused"
	case OutcomeServfail:
		return "servfail"
	case OutcomeTimeout:
		return "timeout"
	default:
		return "unknown"
	}
}

// Zone is one domain (or reverse-DNS zone synthesized from an
// inetnum/inet6num) to audit, with its declared authoritative servers.
type Zone struct {
	Name     string
	Nservers []string
}

/*
ReverseZone derives the reverse-DNS zone name for a network: IPv4 /24
networks yield a three-label "c.b.a.in-addr.arpa" zone, /16
two labels, /8 one label; any v4 prefix finer than /24 is folded up
into its enclosing /24's zone. IPv6 networks yield the reversed common
nybble prefix of the network's low and high boundary, suffixed with
"ip6.arpa". v4 prefixes coarser than /24 that aren't exactly /16 or /8
have no representable zone under this rule and return an error, the
same case the original tooling could only warn and skip (TODO in
validate-my-dns.py: "implement creation of multiple zones for every
/24 within").
*/
func ReverseZone(p netip.Prefix) (string, error) {
	addr := p.Addr()
	if addr.Is4() || addr.Is4In6() {
		return reverseZoneV4(p)
	}
	return reverseZoneV6(p), nil
}

func reverseZoneV4(p netip.Prefix) (string, error) {
	switch bits := p.Bits(); {
	case bits == 8:
		return octetZone(p, 1), nil
	case bits == 16:
		return octetZone(p, 2), nil
	case bits == 24:
		return octetZone(p, 3), nil
	case bits > 24:
		parent := netip.PrefixFrom(unmapped(p.Addr()), 24).Masked()
		return octetZone(parent, 3), nil
	default:
		return "", fmt.Errorf("rpsl: no reverse zone for a /%d ipv4 network; only /8, /16, /24 and finer are derivable", bits)
	}
}

func unmapped(a netip.Addr) netip.Addr {
	if a.Is4In6() {
		return a.Unmap()
	}
	return a
}

// octetZone renders the first n octets of p's network address in
// reverse order, as an "in-addr.arpa" zone name.
func octetZone(p netip.Prefix, n int) string {
	v4 := unmapped(p.Masked().Addr()).As4()
	labels := make([]string, 0, n+2)
	for i := n - 1; i >= 0; i-- {
		labels = append(labels, strconv.Itoa(int(v4[i])))
	}
	labels = append(labels, "in-addr", "arpa")
	return strings.Join(labels, ".")
}

// reverseZoneV6 implements the ip6.arpa half of the derivation rule.
func reverseZoneV6(p netip.Prefix) string {
	loHex := strings.ReplaceAll(explodedAddr(p.Masked().Addr()), ":", "")
	hiHex := strings.ReplaceAll(explodedAddr(lastAddr(p)), ":", "")

	n := len(loHex)
	if len(hiHex) < n {
		n = len(hiHex)
	}

	var labels []string
	for i := 0; i < n; i++ {
		if loHex[i] != hiHex[i] {
			break
		}
		labels = append(labels, string(loHex[i]))
	}

	rev := make([]string, 0, len(labels)+2)
	for i := len(labels) - 1; i >= 0; i-- {
		rev = append(rev, labels[i])
	}
	rev = append(rev, "ip6", "arpa")
	return strings.Join(rev, ".")
}

/*
ZonesForObject derives the [Zone] an object contributes to a
maintainer's audit run: a "domain" object's own name is the zone; an
"inetnum"/"inet6num" object's "cidr" attribute is mapped
through [ReverseZone]. Nservers are read from "nserver" attributes,
taking only the hostname field -- the optional glue address, present
as nserver's second whitespace field, is not needed to issue an NS
query against the parent zone.
*/
func ZonesForObject(obj *Object) (Zone, error) {
	var name string
	switch obj.Type() {
	case "domain":
		name = obj.Name()
	case "inetnum", "inet6num":
		cidr, ok := obj.GetOK("cidr", 0)
		if !ok {
			return Zone{}, fmt.Errorf("rpsl: %s has no cidr attribute", obj.Src)
		}
		net, err := cidr.AsNet()
		if err != nil {
			return Zone{}, err
		}
		zone, err := ReverseZone(net)
		if err != nil {
			return Zone{}, err
		}
		name = zone
	default:
		return Zone{}, fmt.Errorf("rpsl: %s is not a domain/inetnum/inet6num object", obj.Src)
	}

	var nservers []string
	for _, v := range obj.GetAll("nserver") {
		f := v.Fields()
		if len(f) > 0 {
			nservers = append(nservers, f[0])
		}
	}
	return Zone{Name: name, Nservers: nservers}, nil
}

// ZoneSummary tallies every probe outcome observed for one [Zone].
type ZoneSummary struct {
	Zone    string
	Counts  map[AuditOutcome]int
	Details []string
}

func newZoneSummary(name string) *ZoneSummary {
	return &ZoneSummary{Zone: name, Counts: map[AuditOutcome]int{}}
}

func (z *ZoneSummary) record(o AuditOutcome, detail string) {
	z.Counts[o]++
	if detail != "" {
		z.Details = append(z.Details, detail)
	}
}

// Auditor runs the DNS zone audit with a bounded worker pool.
type Auditor struct {
	// Workers bounds the number of zones probed concurrently.
	// Zero selects the default of 16.
	Workers int
	// Timeout bounds each individual DNS lookup. Zero selects 3 seconds.
	Timeout time.Duration
	// Resolver performs the actual NS lookups; defaults to net.DefaultResolver.
	Resolver *net.Resolver
}

func (a *Auditor) workers() int {
	if a.Workers > 0 {
		return a.Workers
	}
	return 16
}

func (a *Auditor) timeout() time.Duration {
	if a.Timeout > 0 {
		return a.Timeout
	}
	return 3 * time.Second
}

func (a *Auditor) resolver() *net.Resolver {
	if a.Resolver != nil {
		return a.Resolver
	}
	return net.DefaultResolver
}

/*
Audit runs the audit over zones with a worker pool bounded by
[Auditor.Workers], one [ZoneSummary] per zone, in the same order as
zones. Each zone's nservers are resolved and cross-checked against the
live NS set; a zone that resolves and whose nserver set matches what
the registry declares reports [OutcomeSuccess].
*/
func (a *Auditor) Audit(ctx context.Context, zones []Zone) []*ZoneSummary {
	results := make([]*ZoneSummary, len(zones))
	jobs := make(chan int)
	var wg sync.WaitGroup

	for w := 0; w < a.workers(); w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				results[i] = a.auditZone(ctx, zones[i])
			}
		}()
	}

	for i := range zones {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}

func (a *Auditor) auditZone(ctx context.Context, z Zone) *ZoneSummary {
	summary := newZoneSummary(z.Name)
	if len(z.Nservers) == 0 {
		return summary
	}

	cctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	live, err := a.resolver().LookupNS(cctx, z.Name)
	switch {
	case err == nil:
		// fall through to comparison below
	case isTimeout(err):
		summary.record(OutcomeTimeout, err.Error())
		return summary
	case isNXDomain(err):
		summary.record(OutcomeNXDomain, err.Error())
		return summary
	case isRefused(err):
		summary.record(OutcomeRefused, err.Error())
		return summary
	default:
		summary.record(OutcomeServfail, err.Error())
		return summary
	}

	want := make(map[string]struct{}, len(z.Nservers))
	for _, ns := range z.Nservers {
		want[fqdn(ns)] = struct{}{}
	}
	got := make(map[string]struct{}, len(live))
	for _, ns := range live {
		got[fqdn(ns.Host)] = struct{}{}
	}

	mismatch := false
	for ns := range want {
		if _, ok := got[ns]; !ok {
			summary.record(OutcomeWrongNS, "registry nserver "+ns+" absent from live NS set")
			mismatch = true
		}
	}
	for ns := range got {
		if _, ok := want[ns]; !ok {
			summary.record(OutcomeWrongNS, "live nserver "+ns+" not declared in registry")
			mismatch = true
		}
	}

	if !mismatch {
		summary.record(OutcomeSuccess, "")
	}
	return summary
}

func fqdn(s string) string {
	s = strings.ToLower(trimS(s))
	if !strings.HasSuffix(s, ".") {
		s += "."
	}
	return s
}

func isTimeout(err error) bool {
	var ne net.Error
	return asNetErr(err, &ne) && ne.Timeout()
}

func asNetErr(err error, target *net.Error) bool {
	if ne, ok := err.(net.Error); ok {
		*target = ne
		return true
	}
	return false
}

func isNXDomain(err error) bool {
	if dnsErr, ok := err.(*net.DNSError); ok {
		return dnsErr.IsNotFound
	}
	return false
}

func isRefused(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "refused")
}

/*
FormatSummaryTable renders summaries as the fixed-width plaintext table
the registry's CI posts as a scan report, columns ordered
success/dnssec_fail/wrong_ns/wrong_soa/nxdomain/refused/servfail/timeout.
*/
func FormatSummaryTable(summaries []*ZoneSummary) string {
	order := []AuditOutcome{
		OutcomeSuccess, OutcomeDNSSECFail, OutcomeWrongNS, OutcomeWrongSOA,
		OutcomeNXDomain, OutcomeRefused, OutcomeServfail, OutcomeTimeout,
	}
	headers := []string{"success", "dnssec_fail", "wrong_ns", "wrong_soa", "nxdomain", "refused", "servfail", "timeout"}

	width := len("domain")
	sorted := append([]*ZoneSummary(nil), summaries...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Zone < sorted[j].Zone })
	for _, s := range sorted {
		if len(s.Zone) > width {
			width = len(s.Zone)
		}
	}

	var b strings.Builder
	b.WriteString(padRight("domain", width))
	for _, h := range headers {
		b.WriteString(" | ")
		b.WriteString(h)
	}
	b.WriteByte('\n')

	for _, s := range sorted {
		b.WriteString(padRight(s.Zone, width))
		for _, o := range order {
			b.WriteString(" | ")
			b.WriteString(padRight(itoa(s.Counts[o]), len(headers[o])))
		}
		b.WriteByte('\n')
	}
	return b.String()
}

func padRight(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return s + strings.Repeat(" ", n-len(s))
}
