package app

import (
	"sync"

	"github.com/rs/zerolog/log"

	"github.com/huddle-dev/huddle/internal/app/docsync"
	"github.com/huddle-dev/huddle/internal/domain"
)

// Registry tracks live session handles and the per-session shared
// resources: the document bridge and the join lock that serializes
// concurrent join attempts for one session id.
type Registry struct {
	mu      sync.RWMutex
	handles map[string]*Handle // by handle id
	bridges map[domain.SessionName]*docsync.Bridge
	joining map[domain.SessionName]*sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		handles: make(map[string]*Handle),
		bridges: make(map[domain.SessionName]*docsync.Bridge),
		joining: make(map[domain.SessionName]*sync.Mutex),
	}
}

// JoinLock returns the serialization lock for a session id, creating it
// on first use.
func (r *Registry) JoinLock(name domain.SessionName) *sync.Mutex {
	r.mu.Lock()
	defer r.mu.Unlock()
	mu, ok := r.joining[name]
	if !ok {
		mu = &sync.Mutex{}
		r.joining[name] = mu
	}
	return mu
}

func (r *Registry) Bind(h *Handle) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.handles[h.ID] = h
	log.Info().
		Str("module", "app.registry").
		Str("handle", h.ID).
		Str("session", string(h.Session.Name)).
		Msg("bound handle")
}

func (r *Registry) Get(id string) (*Handle, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.handles[id]
	return h, ok
}

func (r *Registry) Unbind(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handles, id)
	log.Info().Str("module", "app.registry").Str("handle", id).Msg("unbound handle")
}

// BridgeFor returns the session's document bridge, building it on first
// use. The replica and awareness channel are scoped to the session id
// and shared by every handle that attaches.
func (r *Registry) BridgeFor(name domain.SessionName, build func() *docsync.Bridge) *docsync.Bridge {
	r.mu.RLock()
	b, ok := r.bridges[name]
	r.mu.RUnlock()
	if ok {
		return b
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if b, ok = r.bridges[name]; ok {
		return b
	}
	b = build()
	r.bridges[name] = b
	return b
}

// SessionInfo is a read-only view for APIs.
type SessionInfo struct {
	Name        domain.SessionName `json:"name"`
	MemberCount int                `json:"member_count"`
}

func (r *Registry) Sessions() []SessionInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()
	counts := make(map[domain.SessionName]int)
	for _, h := range r.handles {
		counts[h.Session.Name]++
	}
	out := make([]SessionInfo, 0, len(counts))
	for name, n := range counts {
		out = append(out, SessionInfo{Name: name, MemberCount: n})
	}
	return out
}
