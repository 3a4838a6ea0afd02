// Package remote defines the external collaborator interfaces consumed by
// the sync engine. Remote HTTP transport, OAuth/PKCE authorization, and
// token storage are explicitly out of scope (spec §1) — the core only
// depends on these narrow interfaces.
package remote

import (
	"context"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// Page is one page of a list/search call, per §6.1.
type Page struct {
	Objects []core.CatalogObject
	Cursor  *string
	Errors  []RemoteError
}

// RemoteError is a transport-layer error accompanying a partial page
// result (e.g. a handful of objects in a page failed to render upstream
// while the rest succeeded).
type RemoteError struct {
	ObjectID string
	Message  string
}

// Token is an opaque access credential returned by AuthProvider.
type Token struct {
	AccessToken string
	ExpiresAt   *string
}

// RemoteCatalog is the remote commerce catalog API surface consumed by the
// Sync Engine, per spec §6.1.
type RemoteCatalog interface {
	// List pages through the entire catalog for the given kinds.
	List(ctx context.Context, kinds []core.Kind, cursor *string, limit int) (Page, error)

	// Search returns objects changed since beginTime (RFC 3339), used by
	// incremental sync.
	Search(ctx context.Context, beginTime *string, cursor *string) (Page, error)

	// Retrieve fetches a single object by id, optionally including
	// related objects (e.g. an item's variations).
	Retrieve(ctx context.Context, id string, includeRelated bool) (core.CatalogObject, error)

	// Upsert sends a client-authored mutation with an idempotency key to
	// guarantee at-most-once effect on retry.
	Upsert(ctx context.Context, object core.CatalogObject, idempotencyKey string) (core.CatalogObject, error)

	// Delete removes an object by id.
	Delete(ctx context.Context, id string) error
}

// AuthProvider manages authentication state for RemoteCatalog calls.
type AuthProvider interface {
	IsAuthenticated(ctx context.Context) bool

	// EnsureValidToken attempts a single refresh if the current token is
	// stale, returning nil if no valid token could be obtained.
	EnsureValidToken(ctx context.Context) (*Token, error)

	SignOut(ctx context.Context)
}

// InventoryChange is one requested inventory adjustment.
type InventoryChange struct {
	VariationID string
	LocationID  string
	State       core.InventoryState
	Quantity    string
}

// InventoryChangeResult is the outcome of applying one InventoryChange.
type InventoryChangeResult struct {
	VariationID string
	LocationID  string
	State       core.InventoryState
	Quantity    string
}

// InventoryRemote is optional: a collaborator for batch inventory
// adjustments and webhook-driven count updates.
type InventoryRemote interface {
	BatchChange(ctx context.Context, changes []InventoryChange, idempotencyKey string) ([]InventoryChangeResult, []RemoteError, error)
}
