// Package lookup serves vehicle catalog lookups: VIN decoding and part
// category listings, with a cache in front of the metered upstream.
package lookup

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"time"

	"log/slog"

	"github.com/cukaracha/hrspwr-sub000/internal/infra/cache"
	"github.com/cukaracha/hrspwr-sub000/pkg/logger"
)

const vinLength = 17

// ErrInvalidVIN indicates the supplied VIN is not a well-formed vehicle
// identification number.
var ErrInvalidVIN = errors.New("invalid vin")

// CatalogClient is the upstream vehicle catalog.
type CatalogClient interface {
	DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error)
	CategoryTree(ctx context.Context, vehicleID int) (json.RawMessage, error)
}

type Service struct {
	catalog  CatalogClient
	cache    cache.ResultCache
	cacheTTL time.Duration
}

// NewService builds the lookup service. cache may be nil, in which case every
// call goes upstream.
func NewService(catalog CatalogClient, resultCache cache.ResultCache, cacheTTL time.Duration) *Service {
	return &Service{
		catalog:  catalog,
		cache:    resultCache,
		cacheTTL: cacheTTL,
	}
}

// DecodeVIN validates the VIN and returns the catalog's decoder document,
// served from cache when a previous call already decoded the same VIN.
func (s *Service) DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error) {
	vin, err := NormalizeVIN(vin)
	if err != nil {
		return nil, err
	}

	key := "vin:" + vin
	if payload, ok := s.cached(ctx, key); ok {
		return payload, nil
	}

	payload, err := s.catalog.DecodeVIN(ctx, vin)
	if err != nil {
		return nil, err
	}

	s.store(ctx, key, payload)
	return payload, nil
}

// Categories returns the leaf part categories for a vehicle, grouped under
// their root category. Only leaves are listed; intermediate levels exist in
// the upstream tree purely for navigation.
func (s *Service) Categories(ctx context.Context, vehicleID int) ([]CategoryGroup, error) {
	if vehicleID <= 0 {
		return nil, fmt.Errorf("invalid vehicle id %d", vehicleID)
	}

	key := "categories:" + strconv.Itoa(vehicleID)
	payload, ok := s.cached(ctx, key)
	if !ok {
		var err error
		payload, err = s.catalog.CategoryTree(ctx, vehicleID)
		if err != nil {
			return nil, err
		}
		s.store(ctx, key, payload)
	}

	return FlattenCategories(payload)
}

// cached reads the result cache; any cache failure degrades to an upstream
// fetch, never to a request failure.
func (s *Service) cached(ctx context.Context, key string) (json.RawMessage, bool) {
	if s.cache == nil {
		return nil, false
	}

	payload, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			logger.WarnContext(ctx, "lookup cache read failed",
				slog.String("key", key),
				slog.String("error", err.Error()),
			)
		}
		return nil, false
	}
	return payload, true
}

func (s *Service) store(ctx context.Context, key string, payload json.RawMessage) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, payload, s.cacheTTL); err != nil {
		logger.WarnContext(ctx, "lookup cache write failed",
			slog.String("key", key),
			slog.String("error", err.Error()),
		)
	}
}

// NormalizeVIN upper-cases and validates a VIN: 17 characters from the VIN
// alphabet, which excludes I, O and Q.
func NormalizeVIN(vin string) (string, error) {
	if len(vin) != vinLength {
		return "", fmt.Errorf("%w: got %d characters, want %d", ErrInvalidVIN, len(vin), vinLength)
	}

	normalized := make([]byte, vinLength)
	for i := 0; i < vinLength; i++ {
		c := vin[i]
		if c >= 'a' && c <= 'z' {
			c -= 'a' - 'A'
		}
		switch {
		case c >= '0' && c <= '9':
		case c >= 'A' && c <= 'Z':
			if c == 'I' || c == 'O' || c == 'Q' {
				return "", fmt.Errorf("%w: letter %q is not used in VINs", ErrInvalidVIN, c)
			}
		default:
			return "", fmt.Errorf("%w: character %q at position %d", ErrInvalidVIN, c, i)
		}
		normalized[i] = c
	}

	return string(normalized), nil
}

// FlattenCategories walks the upstream hierarchy and collects leaf nodes
// grouped by root category. Groups and leaves are ordered by id so the same
// tree always flattens to the same listing.
func FlattenCategories(payload json.RawMessage) ([]CategoryGroup, error) {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(payload, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode category tree: %w", err)
	}

	// Some catalog routes wrap the tree in a single "categories" layer.
	if inner, ok := raw["categories"]; ok && len(raw) == 1 {
		return FlattenCategories(inner)
	}

	tree := make(map[string]CategoryNode, len(raw))
	for id, body := range raw {
		var node CategoryNode
		if err := json.Unmarshal(body, &node); err != nil {
			return nil, fmt.Errorf("failed to decode category node %q: %w", id, err)
		}
		tree[id] = node
	}

	groups := make([]CategoryGroup, 0, len(tree))
	for rootID, root := range tree {
		group := CategoryGroup{
			ID:     rootID,
			Name:   root.Text,
			Leaves: collectLeaves(rootID, root),
		}
		sort.Slice(group.Leaves, func(i, j int) bool {
			return group.Leaves[i].ID < group.Leaves[j].ID
		})
		groups = append(groups, group)
	}
	sort.Slice(groups, func(i, j int) bool {
		return groups[i].ID < groups[j].ID
	})

	return groups, nil
}

func collectLeaves(id string, node CategoryNode) []LeafCategory {
	if len(node.Children) == 0 {
		return []LeafCategory{{ID: id, Name: node.Text}}
	}

	var leaves []LeafCategory
	for childID, child := range node.Children {
		leaves = append(leaves, collectLeaves(childID, child)...)
	}
	return leaves
}
