// Package coupling exchanges coupled face values between domains that run in
// the same process, one goroutine per domain.
package coupling

import (
	"context"
	"fmt"
	"sort"

	"github.com/notargets/goweno/utils"
	"github.com/notargets/goweno/weno"
)

type batch struct {
	fieldID string
	values  []weno.CoupledValue
}

// Hub connects a fixed number of domains through a shared mailbox.
type Hub struct {
	mb        *utils.MailBox[batch]
	endpoints []*Endpoint
}

func NewHub(numDomains int) *Hub {
	h := &Hub{
		mb:        utils.NewMailBox[batch](numDomains, 4*numDomains),
		endpoints: make([]*Endpoint, numDomains),
	}
	for d := range h.endpoints {
		h.endpoints[d] = &Endpoint{hub: h, domain: d, pending: make(map[int][]batch)}
	}
	return h
}

func (h *Hub) NumDomains() int { return len(h.endpoints) }

// Domain returns the coupler of one domain. An endpoint must only be used by
// one goroutine at a time.
func (h *Hub) Domain(d int) *Endpoint { return h.endpoints[d] }

// Endpoint implements weno.Coupler for one domain.
type Endpoint struct {
	hub     *Hub
	domain  int
	pending map[int][]batch // batches that arrived ahead of the current exchange
}

var _ weno.Coupler = (*Endpoint)(nil)

// Exchange posts one batch to every peer domain referenced in out and blocks
// until each of them has posted its batch for the same field. Coupling is
// assumed symmetric: a domain that receives from a peer also sends to it.
func (ep *Endpoint) Exchange(ctx context.Context, fieldID string, out []weno.CoupledValue) (in []weno.CoupledValue, err error) {
	byPeer := make(map[int][]weno.CoupledValue)
	for _, cv := range out {
		if cv.PeerDomain == ep.domain {
			return nil, fmt.Errorf("domain %d: face %d coupled to its own domain", ep.domain, cv.Face)
		}
		cv.Domain = ep.domain
		byPeer[cv.PeerDomain] = append(byPeer[cv.PeerDomain], cv)
	}
	peers := make([]int, 0, len(byPeer))
	for p := range byPeer {
		peers = append(peers, p)
	}
	sort.Ints(peers)
	for _, p := range peers {
		if err = ep.hub.mb.PostMessage(ctx, ep.domain, p, batch{fieldID: fieldID, values: byPeer[p]}); err != nil {
			return nil, fmt.Errorf("domain %d posting to %d: %w", ep.domain, p, err)
		}
	}
	waiting := make(map[int]bool, len(peers))
	for _, p := range peers {
		waiting[p] = true
	}
	take := func(from int, b batch) error {
		if b.fieldID != fieldID {
			return fmt.Errorf("domain %d: domain %d sent field %q while exchanging %q",
				ep.domain, from, b.fieldID, fieldID)
		}
		in = append(in, b.values...)
		delete(waiting, from)
		return nil
	}
	for _, p := range peers {
		if q := ep.pending[p]; len(q) > 0 {
			ep.pending[p] = q[1:]
			if err = take(p, q[0]); err != nil {
				return nil, err
			}
		}
	}
	for len(waiting) > 0 {
		l, err := ep.hub.mb.ReceiveMessage(ctx, ep.domain)
		if err != nil {
			return nil, fmt.Errorf("domain %d waiting for %d peers: %w", ep.domain, len(waiting), err)
		}
		if !waiting[l.From] {
			ep.pending[l.From] = append(ep.pending[l.From], l.Msg)
			continue
		}
		if err = take(l.From, l.Msg); err != nil {
			return nil, err
		}
	}
	return in, nil
}
