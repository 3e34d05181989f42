package sdk

import (
	"errors"
	"sync"
)

// AuthorizationOracle answers role questions the core cannot decide on its own.
type AuthorizationOracle interface {
	IsAuthorizedCreator(addr Address) bool
	IsAdmin(addr Address) bool
}

var (
	ErrRequestPending  = errors.New("creator request already pending")
	ErrRequestNotFound = errors.New("creator request not found")
	ErrNotAdmin        = errors.New("caller is not an admin")
)

// CreatorRequest is a pending ask to become a campaign creator.
type CreatorRequest struct {
	Address     Address
	Description string
	RequestedAt int64
}

// CreatorRegistry is the approval workflow in front of campaign creation: anyone can
// queue a request, admins approve or reject it. It doubles as the AuthorizationOracle.
type CreatorRegistry struct {
	mu       sync.Mutex
	admins   map[Address]struct{}
	creators map[Address]struct{}
	pending  []CreatorRequest
}

func NewCreatorRegistry(admins ...Address) *CreatorRegistry {
	r := &CreatorRegistry{
		admins:   map[Address]struct{}{},
		creators: map[Address]struct{}{},
	}
	for _, a := range admins {
		r.admins[a] = struct{}{}
	}
	return r
}

func (r *CreatorRegistry) IsAdmin(addr Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.admins[addr]
	return ok
}

// IsAuthorizedCreator is true for approved creators. Admins are creators too.
func (r *CreatorRegistry) IsAuthorizedCreator(addr Address) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[addr]; ok {
		return true
	}
	_, ok := r.creators[addr]
	return ok
}

// Request queues addr for creator approval. Existing creators are a no-op.
func (r *CreatorRegistry) Request(addr Address, description string, now int64) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.creators[addr]; ok {
		return nil
	}
	for _, p := range r.pending {
		if p.Address == addr {
			return ErrRequestPending
		}
	}
	r.pending = append(r.pending, CreatorRequest{Address: addr, Description: description, RequestedAt: now})
	return nil
}

// Pending returns a copy of the queue in request order.
func (r *CreatorRegistry) Pending() []CreatorRequest {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]CreatorRequest, len(r.pending))
	copy(out, r.pending)
	return out
}

// Approve moves a pending request into the creator set.
func (r *CreatorRegistry) Approve(admin, addr Address) error {
	return r.resolve(admin, addr, true)
}

// Reject drops a pending request.
func (r *CreatorRegistry) Reject(admin, addr Address) error {
	return r.resolve(admin, addr, false)
}

// Grant makes addr a creator directly, skipping the queue (used when seeding).
func (r *CreatorRegistry) Grant(addr Address) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.creators[addr] = struct{}{}
}

func (r *CreatorRegistry) resolve(admin, addr Address, approve bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.admins[admin]; !ok {
		return ErrNotAdmin
	}
	for i, p := range r.pending {
		if p.Address != addr {
			continue
		}
		r.pending = append(r.pending[:i], r.pending[i+1:]...)
		if approve {
			r.creators[addr] = struct{}{}
		}
		return nil
	}
	return ErrRequestNotFound
}
