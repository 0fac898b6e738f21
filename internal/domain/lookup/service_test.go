package lookup_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/cukaracha/hrspwr-sub000/internal/domain/lookup"
	"github.com/cukaracha/hrspwr-sub000/internal/infra/cache"
)

type mockCatalog struct {
	decodeFunc     func(ctx context.Context, vin string) (json.RawMessage, error)
	treeFunc       func(ctx context.Context, vehicleID int) (json.RawMessage, error)
	decodeCalls    int
	treeCallsCount int
}

func (m *mockCatalog) DecodeVIN(ctx context.Context, vin string) (json.RawMessage, error) {
	m.decodeCalls++
	if m.decodeFunc != nil {
		return m.decodeFunc(ctx, vin)
	}
	return json.RawMessage(`{"make":"HONDA"}`), nil
}

func (m *mockCatalog) CategoryTree(ctx context.Context, vehicleID int) (json.RawMessage, error) {
	m.treeCallsCount++
	if m.treeFunc != nil {
		return m.treeFunc(ctx, vehicleID)
	}
	return json.RawMessage(`{}`), nil
}

type mockCache struct {
	entries map[string][]byte
	getErr  error
	setErr  error
}

func newMockCache() *mockCache {
	return &mockCache{entries: map[string][]byte{}}
}

func (m *mockCache) Get(_ context.Context, key string) ([]byte, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	payload, ok := m.entries[key]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return payload, nil
}

func (m *mockCache) Set(_ context.Context, key string, payload []byte, _ time.Duration) error {
	if m.setErr != nil {
		return m.setErr
	}
	m.entries[key] = payload
	return nil
}

const testVIN = "1HGCM82633A004352"

func TestNormalizeVIN(t *testing.T) {
	tests := []struct {
		name    string
		vin     string
		want    string
		wantErr bool
	}{
		{name: "valid", vin: testVIN, want: testVIN},
		{name: "lowercase is normalized", vin: "1hgcm82633a004352", want: testVIN},
		{name: "too short", vin: "1HGCM82633A00435", wantErr: true},
		{name: "too long", vin: testVIN + "0", wantErr: true},
		{name: "letter I not in vin alphabet", vin: "IHGCM82633A004352", wantErr: true},
		{name: "letter O not in vin alphabet", vin: "OHGCM82633A004352", wantErr: true},
		{name: "letter Q not in vin alphabet", vin: "QHGCM82633A004352", wantErr: true},
		{name: "punctuation", vin: "1HGCM82633A00435!", wantErr: true},
		{name: "empty", vin: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := lookup.NormalizeVIN(tt.vin)
			if tt.wantErr {
				if !errors.Is(err, lookup.ErrInvalidVIN) {
					t.Fatalf("expected ErrInvalidVIN, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestDecodeVIN_InvalidVINSkipsUpstream(t *testing.T) {
	catalog := &mockCatalog{}
	svc := lookup.NewService(catalog, nil, time.Minute)

	if _, err := svc.DecodeVIN(context.Background(), "nope"); !errors.Is(err, lookup.ErrInvalidVIN) {
		t.Fatalf("expected ErrInvalidVIN, got %v", err)
	}
	if catalog.decodeCalls != 0 {
		t.Error("invalid VIN must not reach the upstream")
	}
}

func TestDecodeVIN_CachesResult(t *testing.T) {
	catalog := &mockCatalog{}
	resultCache := newMockCache()
	svc := lookup.NewService(catalog, resultCache, time.Minute)

	first, err := svc.DecodeVIN(context.Background(), testVIN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, err := svc.DecodeVIN(context.Background(), testVIN)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if string(first) != string(second) {
		t.Error("cached result differs from the upstream result")
	}
	if catalog.decodeCalls != 1 {
		t.Errorf("expected 1 upstream call, got %d", catalog.decodeCalls)
	}
}

func TestDecodeVIN_CacheFailureFallsThrough(t *testing.T) {
	catalog := &mockCatalog{}
	resultCache := newMockCache()
	resultCache.getErr = errors.New("redis is down")
	resultCache.setErr = errors.New("redis is down")
	svc := lookup.NewService(catalog, resultCache, time.Minute)

	doc, err := svc.DecodeVIN(context.Background(), testVIN)
	if err != nil {
		t.Fatalf("a broken cache must not fail the lookup: %v", err)
	}
	if string(doc) != `{"make":"HONDA"}` {
		t.Errorf("unexpected document: %s", doc)
	}
}

func TestDecodeVIN_UpstreamError(t *testing.T) {
	catalog := &mockCatalog{
		decodeFunc: func(context.Context, string) (json.RawMessage, error) {
			return nil, errors.New("upstream 502")
		},
	}
	svc := lookup.NewService(catalog, nil, time.Minute)

	if _, err := svc.DecodeVIN(context.Background(), testVIN); err == nil {
		t.Fatal("expected upstream error to propagate")
	}
}

const categoryTreeFixture = `{
	"100001": {
		"text": "Braking System",
		"children": {
			"100007": {"text": "Brake Discs"},
			"100005": {
				"text": "Brake Pads",
				"children": {
					"100009": {"text": "Front Pads"},
					"100008": {"text": "Rear Pads"}
				}
			}
		}
	},
	"100002": {"text": "Filters"}
}`

func TestCategories_FlattensToLeaves(t *testing.T) {
	catalog := &mockCatalog{
		treeFunc: func(context.Context, int) (json.RawMessage, error) {
			return json.RawMessage(categoryTreeFixture), nil
		},
	}
	svc := lookup.NewService(catalog, nil, time.Minute)

	groups, err := svc.Categories(context.Background(), 19942)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(groups) != 2 {
		t.Fatalf("expected 2 groups, got %d", len(groups))
	}

	braking := groups[0]
	if braking.Name != "Braking System" {
		t.Errorf("group name = %q", braking.Name)
	}
	wantLeaves := []lookup.LeafCategory{
		{ID: "100007", Name: "Brake Discs"},
		{ID: "100008", Name: "Rear Pads"},
		{ID: "100009", Name: "Front Pads"},
	}
	if len(braking.Leaves) != len(wantLeaves) {
		t.Fatalf("expected %d leaves, got %v", len(wantLeaves), braking.Leaves)
	}
	for i, want := range wantLeaves {
		if braking.Leaves[i] != want {
			t.Errorf("leaf %d = %+v, want %+v", i, braking.Leaves[i], want)
		}
	}

	// "Brake Pads" has children, so it must not be listed itself.
	for _, leaf := range braking.Leaves {
		if leaf.ID == "100005" {
			t.Error("intermediate category leaked into the leaf list")
		}
	}

	filters := groups[1]
	if len(filters.Leaves) != 1 || filters.Leaves[0].ID != "100002" {
		t.Errorf("a childless root is its own leaf, got %v", filters.Leaves)
	}
}

func TestCategories_UnwrapsCategoriesLayer(t *testing.T) {
	wrapped := `{"categories": ` + categoryTreeFixture + `}`
	catalog := &mockCatalog{
		treeFunc: func(context.Context, int) (json.RawMessage, error) {
			return json.RawMessage(wrapped), nil
		},
	}
	svc := lookup.NewService(catalog, nil, time.Minute)

	groups, err := svc.Categories(context.Background(), 19942)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(groups) != 2 {
		t.Errorf("expected the wrapper layer to be unwrapped, got %d groups", len(groups))
	}
}

func TestCategories_CachesRawTree(t *testing.T) {
	catalog := &mockCatalog{
		treeFunc: func(context.Context, int) (json.RawMessage, error) {
			return json.RawMessage(categoryTreeFixture), nil
		},
	}
	resultCache := newMockCache()
	svc := lookup.NewService(catalog, resultCache, time.Minute)

	if _, err := svc.Categories(context.Background(), 19942); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := svc.Categories(context.Background(), 19942); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if catalog.treeCallsCount != 1 {
		t.Errorf("expected 1 upstream call, got %d", catalog.treeCallsCount)
	}
}

func TestCategories_InvalidVehicleID(t *testing.T) {
	svc := lookup.NewService(&mockCatalog{}, nil, time.Minute)

	if _, err := svc.Categories(context.Background(), 0); err == nil {
		t.Fatal("expected error for vehicle id 0")
	}
}
