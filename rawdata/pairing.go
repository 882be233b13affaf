package rawdata

import (
	"slices"

	"github.com/jalad-shrimali/cml-linker/siteid"
)

// Hop is a resolved channel: the two sites at its ends and the two
// directional link ids synthesized for it.
type Hop struct {
	Number   string
	Sites    [2]string
	Uplink   string
	Downlink string
}

// Paired is the outcome of pairing: both tables carrying link ids, the
// resolved hops and the hops whose rows were removed.
type Paired struct {
	Rx      []Sample
	Tx      []Sample
	Hops    []Hop
	Dropped []string
}

type hopSite struct{ hop, site string }

// Pair assigns directional link ids to telemetry rows.
//
// A hop is pairable when the sorted set of sites reporting receive power
// equals the set reporting transmit power and has exactly two members
// s0 < s1. Then
//
//	downlink = tx[0]-rx[1]   on rx rows at s1 and tx rows at s0
//	uplink   = tx[1]-rx[0]   on rx rows at s0 and tx rows at s1
//
// Every row of any other hop is removed from both tables. Hops are visited
// in order of first appearance in tx, then rx-only hops, which never pair.
// The inputs are not modified.
func Pair(rx, tx []Sample) Paired {
	rxSites, txSites := sitesByHop(rx), sitesByHop(tx)

	var order []string
	seen := map[string]bool{}
	for _, s := range slices.Concat(tx, rx) {
		if !seen[s.Hop] {
			seen[s.Hop] = true
			order = append(order, s.Hop)
		}
	}

	var p Paired
	rxLink, txLink := map[hopSite]string{}, map[hopSite]string{}
	for _, h := range order {
		r, t := rxSites[h], txSites[h]
		if len(t) != 2 || !slices.Equal(r, t) {
			p.Dropped = append(p.Dropped, h)
			continue
		}
		down := siteid.Link(t[0], r[1])
		up := siteid.Link(t[1], r[0])

		rxLink[hopSite{h, r[0]}] = up
		rxLink[hopSite{h, r[1]}] = down
		txLink[hopSite{h, t[1]}] = up
		txLink[hopSite{h, t[0]}] = down

		p.Hops = append(p.Hops, Hop{Number: h, Sites: [2]string{t[0], t[1]}, Uplink: up, Downlink: down})
	}

	p.Rx = assign(rx, rxLink)
	p.Tx = assign(tx, txLink)
	return p
}

func sitesByHop(samples []Sample) map[string][]string {
	m := map[string][]string{}
	for _, s := range samples {
		m[s.Hop] = append(m[s.Hop], s.Site)
	}
	for h, sites := range m {
		slices.Sort(sites)
		m[h] = slices.Compact(sites)
	}
	return m
}

func assign(samples []Sample, links map[hopSite]string) []Sample {
	out := make([]Sample, 0, len(samples))
	for _, s := range samples {
		link, ok := links[hopSite{s.Hop, s.Site}]
		if !ok {
			continue
		}
		s.LinkID = link
		out = append(out, s)
	}
	return out
}

// LinkIDs returns the distinct link ids of samples in order of first
// appearance.
func LinkIDs(samples []Sample) []string {
	var out []string
	seen := map[string]bool{}
	for _, s := range samples {
		if s.LinkID == "" || seen[s.LinkID] {
			continue
		}
		seen[s.LinkID] = true
		out = append(out, s.LinkID)
	}
	return out
}
