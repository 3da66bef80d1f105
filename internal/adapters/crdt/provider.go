// Package crdt is the client of the external replication provider. It
// consumes the provider's shared-text and awareness primitives over a
// websocket per session; merge order is the provider's business and is
// applied here exactly as delivered.
package crdt

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/core"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Provider hands out one replicated document per session id. Documents
// are shared: every binding for the same session sees the same replica.
type Provider struct {
	endpoint string

	mu   sync.Mutex
	docs map[domain.SessionName]*document
}

func NewProvider(endpoint string) *Provider {
	return &Provider{
		endpoint: endpoint,
		docs:     make(map[domain.SessionName]*document),
	}
}

func (p *Provider) Text(name domain.SessionName) core.SharedText {
	return p.doc(name)
}

func (p *Provider) Awareness(name domain.SessionName) core.AwarenessChannel {
	return awarenessView{d: p.doc(name)}
}

// awarenessView exposes the document's awareness side under the channel
// contract (the document itself is the SharedText).
type awarenessView struct {
	d *document
}

func (a awarenessView) Publish(st core.AwarenessState) error {
	return a.d.Publish(st)
}

func (a awarenessView) OnUpdate(fn func(string, *core.AwarenessState)) core.Unsubscribe {
	return a.d.OnUpdateAwareness(fn)
}

func (p *Provider) doc(name domain.SessionName) *document {
	p.mu.Lock()
	defer p.mu.Unlock()
	if d, ok := p.docs[name]; ok {
		return d
	}
	d := newDocument(name)
	if p.endpoint != "" {
		if err := d.dial(p.endpoint); err != nil {
			log.Error().
				Str("module", "adapters.crdt").
				Str("session", string(name)).
				Err(err).
				Msg("replication dial failed, document runs detached")
		}
	}
	p.docs[name] = d
	return d
}

// Close tears down every document connection.
func (p *Provider) Close() {
	p.mu.Lock()
	docs := make([]*document, 0, len(p.docs))
	for _, d := range p.docs {
		docs = append(docs, d)
	}
	p.mu.Unlock()
	for _, d := range docs {
		d.close()
	}
}
