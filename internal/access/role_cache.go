package access

import (
	"context"
	"sync"
	"time"

	"cvos/coach-app/internal/domain"
	"cvos/coach-app/internal/repository"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

type cacheEntry struct {
	role    domain.Role
	expires time.Time
}

// RoleCache remembers each user's role for a short TTL so that gating does
// not hit the profile store on every request.
type RoleCache struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[primitive.ObjectID]cacheEntry
	now     func() time.Time
}

func NewRoleCache(ttl time.Duration) *RoleCache {
	return &RoleCache{
		ttl:     ttl,
		entries: map[primitive.ObjectID]cacheEntry{},
		now:     time.Now,
	}
}

func (c *RoleCache) Get(userID primitive.ObjectID) (domain.Role, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[userID]
	if !ok {
		return domain.RoleNone, false
	}
	if !c.now().Before(e.expires) {
		delete(c.entries, userID)
		return domain.RoleNone, false
	}
	return e.role, true
}

// Set stores a role. Empty roles are never cached: the user is mid-onboarding
// and the next lookup must see the role as soon as it is chosen.
func (c *RoleCache) Set(userID primitive.ObjectID, role domain.Role) {
	if role == domain.RoleNone || c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[userID] = cacheEntry{role: role, expires: c.now().Add(c.ttl)}
}

func (c *RoleCache) Invalidate(userID primitive.ObjectID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, userID)
}

// RoleResolver looks up the current role of a user, through the cache.
type RoleResolver struct {
	cache    *RoleCache
	profiles repository.ProfileRepository
}

func NewRoleResolver(cache *RoleCache, profiles repository.ProfileRepository) *RoleResolver {
	return &RoleResolver{cache: cache, profiles: profiles}
}

func (r *RoleResolver) Role(ctx context.Context, userID primitive.ObjectID) (domain.Role, error) {
	if role, ok := r.cache.Get(userID); ok {
		return role, nil
	}
	profile, err := r.profiles.GetByID(ctx, userID)
	if err != nil {
		return domain.RoleNone, err
	}
	r.cache.Set(userID, profile.Role)
	return profile.Role, nil
}

// Invalidate drops the cached role, e.g. after an admin changes it.
func (r *RoleResolver) Invalidate(userID primitive.ObjectID) {
	r.cache.Invalidate(userID)
}
