package store

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	id "organmatch/pkg/domain"
)

// Redis key prefix for candidate sets, one set per organ/blood pair.
const candidateKeyPrefix = "organmatch:candidates:"

// RedisCandidates is a Redis-backed candidate index for deployments where
// multiple instances must share the waiting pool. Ordering across instances
// follows Redis set semantics rather than insertion order; the engine's
// first-seen tie-break is therefore stable per search, not per deployment.
type RedisCandidates struct {
	client *redis.Client
}

func NewRedisCandidates(client *redis.Client) *RedisCandidates {
	return &RedisCandidates{client: client}
}

func candidateSetKey(organ id.OrganType, blood id.BloodType) string {
	return candidateKeyPrefix + organ.String() + ":" + blood.String()
}

func (c *RedisCandidates) Add(ctx context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error {
	if err := c.client.SAdd(ctx, candidateSetKey(organ, blood), owner.String()).Err(); err != nil {
		return fmt.Errorf("add candidate: %w", err)
	}
	return nil
}

func (c *RedisCandidates) Remove(ctx context.Context, organ id.OrganType, blood id.BloodType, owner id.Identity) error {
	if err := c.client.SRem(ctx, candidateSetKey(organ, blood), owner.String()).Err(); err != nil {
		return fmt.Errorf("remove candidate: %w", err)
	}
	return nil
}

func (c *RedisCandidates) List(ctx context.Context, organ id.OrganType, blood id.BloodType) ([]id.Identity, error) {
	members, err := c.client.SMembers(ctx, candidateSetKey(organ, blood)).Result()
	if err != nil {
		return nil, fmt.Errorf("list candidates: %w", err)
	}
	owners := make([]id.Identity, 0, len(members))
	for _, member := range members {
		owner, err := id.ParseIdentity(member)
		if err != nil {
			// Skip foreign keys rather than failing the whole listing.
			continue
		}
		owners = append(owners, owner)
	}
	return owners, nil
}
