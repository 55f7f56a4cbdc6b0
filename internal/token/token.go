// Package token issues the opaque anti-automation value carried in the
// formSecret field.
package token

import (
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/oklog/ulid/v2"
)

// ULID issues lowercase ULIDs. They are unique in practice and sort by issue
// time; nothing about them is secret.
type ULID struct{}

// Next ignores prev; ULIDs are never tracked.
func (ULID) Next(string) string {
	return strings.ToLower(ulid.Make().String())
}

// Registry remembers the tokens it issued so a server can refuse posts
// carrying a token it never handed out, or one that has expired.
type Registry struct {
	issued *lru.LRU[string, time.Time]
	source ULID
	now    func() time.Time
}

// NewRegistry keeps at most capacity live tokens, each for ttl.
func NewRegistry(capacity int, ttl time.Duration) *Registry {
	if capacity <= 0 {
		capacity = 4096
	}
	return &Registry{
		issued: lru.NewLRU[string, time.Time](capacity, nil, ttl),
		source: ULID{},
		now:    time.Now,
	}
}

// Next retires prev and issues a fresh token.
func (r *Registry) Next(prev string) string {
	if prev != "" {
		r.issued.Remove(prev)
	}
	tok := r.source.Next("")
	r.issued.Add(tok, r.now())
	return tok
}

// Valid reports whether tok was issued by this registry and is still live.
func (r *Registry) Valid(tok string) bool {
	if tok == "" {
		return false
	}
	_, ok := r.issued.Get(tok)
	return ok
}

// Claim takes tok out of the registry and reports whether it was live. Of
// several concurrent claims on one token exactly one succeeds.
func (r *Registry) Claim(tok string) bool {
	if tok == "" {
		return false
	}
	if _, ok := r.issued.Peek(tok); !ok {
		// expired entries linger until the next purge
		r.issued.Remove(tok)
		return false
	}
	return r.issued.Remove(tok)
}

// Release returns a claimed token that was not used up, so the form carrying
// it can be posted again. Its lifetime restarts.
func (r *Registry) Release(tok string) {
	if tok != "" {
		r.issued.Add(tok, r.now())
	}
}

// Len is the number of live tokens.
func (r *Registry) Len() int { return r.issued.Len() }
