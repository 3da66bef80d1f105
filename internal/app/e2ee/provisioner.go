// Package e2ee derives and holds the shared media-encryption key for a
// session.
package e2ee

import (
	"bytes"
	"crypto/sha256"
	"errors"
	"fmt"
	"net/url"
	"sync"

	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/pbkdf2"
)

const (
	keyLen     = 32
	iterations = 100_000
	salt       = "huddle-e2ee"
)

var ErrEmptyPassphrase = errors.New("empty passphrase")

// Context holds the derived key material plus the enabled capability
// flag. It is owned by the Provisioner and referenced, never copied, by
// the connection manager. The room may only be marked encrypted after key
// installation succeeded.
type Context struct {
	mu      sync.RWMutex
	key     []byte
	enabled bool
}

func (c *Context) Key() []byte {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.key
}

func (c *Context) Enabled() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.enabled
}

// MarkEnabled is called by the connection manager once the room accepted
// the key and enabled encryption.
func (c *Context) MarkEnabled() {
	c.mu.Lock()
	c.enabled = true
	c.mu.Unlock()
}

// Provisioner installs passphrase-derived key material into its Context.
// Install is idempotent and concurrent installs are serialized: a second
// caller waits on the first's outcome and observes the same result. That
// prevents a room connecting under a half-installed key.
type Provisioner struct {
	ctx Context

	mu        sync.Mutex
	installed bool
	material  []byte
	err       error
}

func NewProvisioner() *Provisioner { return &Provisioner{} }

// Context returns the encryption context the provisioner owns.
func (p *Provisioner) Context() *Context { return &p.ctx }

// Install decodes the passphrase material and derives the session key.
// Calling it twice with the same material is safe and returns the first
// outcome without re-deriving.
func (p *Provisioner) Install(passphrase string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	material := []byte(passphrase)
	if p.installed && bytes.Equal(material, p.material) {
		return p.err
	}

	p.material = material
	p.installed = true
	p.err = p.install(passphrase)
	return p.err
}

func (p *Provisioner) install(passphrase string) error {
	if passphrase == "" {
		return ErrEmptyPassphrase
	}
	// Passphrases arrive URL-encoded (they travel in a URL fragment).
	decoded, err := url.QueryUnescape(passphrase)
	if err != nil {
		return fmt.Errorf("decode passphrase: %w", err)
	}
	key := pbkdf2.Key([]byte(decoded), []byte(salt), iterations, keyLen, sha256.New)

	p.ctx.mu.Lock()
	p.ctx.key = key
	p.ctx.mu.Unlock()

	log.Info().Str("module", "app.e2ee").Msg("session key installed")
	return nil
}
