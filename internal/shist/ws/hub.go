// Package ws implements the list-change notification hub: a process-local
// pub/sub map from list id to subscribed connections. Delivery is
// best-effort at-most-once; a send that fails marks the peer dead and is
// never retried.
package ws

import (
	"encoding/json"
	"io"
	"sync"
)

// Peer is a write handle for one connected client. Writes are serialized so
// broadcasts and error frames never interleave on the wire.
type Peer struct {
	mu     sync.Mutex
	enc    *json.Encoder
	failed bool
}

func NewPeer(w io.Writer) *Peer {
	return &Peer{enc: json.NewEncoder(w)}
}

// send writes one event. After the first failure the peer is considered dead
// and every later send is silently skipped.
func (p *Peer) send(ev Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.failed {
		return io.ErrClosedPipe
	}
	if err := p.enc.Encode(ev); err != nil {
		p.failed = true
		return err
	}
	return nil
}

// Hub tracks which peers are subscribed to which lists.
type Hub struct {
	mu    sync.Mutex
	lists map[string]map[*Peer]struct{}
	peers map[*Peer]map[string]struct{}
}

func NewHub() *Hub {
	return &Hub{
		lists: make(map[string]map[*Peer]struct{}),
		peers: make(map[*Peer]map[string]struct{}),
	}
}

// Subscribe adds the peer to a list's subscriber set. Subscribing twice is a
// no-op.
func (h *Hub) Subscribe(listID string, p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.lists[listID] == nil {
		h.lists[listID] = make(map[*Peer]struct{})
	}
	h.lists[listID][p] = struct{}{}

	if h.peers[p] == nil {
		h.peers[p] = make(map[string]struct{})
	}
	h.peers[p][listID] = struct{}{}
}

// Unsubscribe removes the peer from one list.
func (h *Hub) Unsubscribe(listID string, p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.removeLocked(listID, p)
}

// Drop removes the peer from every list. Called on disconnect.
func (h *Hub) Drop(p *Peer) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for listID := range h.peers[p] {
		h.removeLocked(listID, p)
	}
}

func (h *Hub) removeLocked(listID string, p *Peer) {
	if subs := h.lists[listID]; subs != nil {
		delete(subs, p)
		if len(subs) == 0 {
			delete(h.lists, listID)
		}
	}
	if lists := h.peers[p]; lists != nil {
		delete(lists, listID)
		if len(lists) == 0 {
			delete(h.peers, p)
		}
	}
}

// Subscribers reports how many peers are subscribed to a list.
func (h *Hub) Subscribers(listID string) int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.lists[listID])
}

// Broadcast delivers an event to every subscriber of its list. The
// subscriber set is snapshotted under the lock; sends happen outside it so a
// slow client cannot stall subscription changes.
func (h *Hub) Broadcast(ev Event) {
	h.mu.Lock()
	targets := make([]*Peer, 0, len(h.lists[ev.ListID]))
	for p := range h.lists[ev.ListID] {
		targets = append(targets, p)
	}
	h.mu.Unlock()

	for _, p := range targets {
		_ = p.send(ev) // best effort
	}
}
