package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
)

const (
	RoleAdmin     = "admin"
	RoleModerator = "moderator"
)

// ErrNotAllowed means the email is not on the allow-list.
var ErrNotAllowed = errors.New("not on allow-list")

// AdminLookup is the slice of the admin repository the resolver needs.
type AdminLookup interface {
	RoleByEmail(ctx context.Context, email string) (string, error)
}

// Resolver maps an authenticated email to its role against the admins
// collection, with a short-lived Redis cache in front so hot admin sessions
// don't hit Mongo on every request. The Redis client may be nil; lookups then
// always go to the repository.
type Resolver struct {
	admins AdminLookup
	rdb    *redis.Client
	ttl    time.Duration
}

func NewResolver(admins AdminLookup, rdb *redis.Client, ttl time.Duration) *Resolver {
	return &Resolver{admins: admins, rdb: rdb, ttl: ttl}
}

func (r *Resolver) Resolve(ctx context.Context, email string) (string, error) {
	key := "role:" + email
	if r.rdb != nil {
		if role, err := r.rdb.Get(ctx, key).Result(); err == nil {
			if role == "" {
				return "", ErrNotAllowed
			}
			return role, nil
		}
	}

	role, err := r.admins.RoleByEmail(ctx, email)
	if errors.Is(err, mongo.ErrNoDocuments) {
		// Negative entries are cached too, or a removed admin keeps
		// hammering the database until their session expires.
		if r.rdb != nil {
			_ = r.rdb.Set(ctx, key, "", r.ttl).Err()
		}
		return "", ErrNotAllowed
	}
	if err != nil {
		return "", err
	}
	if r.rdb != nil {
		_ = r.rdb.Set(ctx, key, role, r.ttl).Err()
	}
	return role, nil
}
