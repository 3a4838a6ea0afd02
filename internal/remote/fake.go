package remote

import (
	"context"
	"sync"

	"github.com/nimbuscommerce/catalogsync/internal/core"
)

// FakeRemoteCatalog is an in-memory RemoteCatalog test double. Pages are
// queued explicitly via EnqueueListPage/EnqueueSearchPage (mirroring the
// literal-input scenarios in spec §8), and EnqueueListErr lets tests
// inject a fixed number of transient failures before recovering — used to
// drive scenario 5 ("rate-limited burst"). Only List can be given injected
// errors; there is no method that queues errors for Search.
type FakeRemoteCatalog struct {
	mu sync.Mutex

	listPages   []Page
	listCalls   int
	listErrs    []error // returned in order before falling through to listPages

	searchPages []Page
	searchCalls int
	searchErrs  []error

	objects map[string]core.CatalogObject
}

// NewFakeRemoteCatalog returns an empty fake; use the Enqueue* methods to
// script responses before invoking the sync engine against it.
func NewFakeRemoteCatalog() *FakeRemoteCatalog {
	return &FakeRemoteCatalog{objects: make(map[string]core.CatalogObject)}
}

func (f *FakeRemoteCatalog) EnqueueListPage(p Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listPages = append(f.listPages, p)
}

func (f *FakeRemoteCatalog) EnqueueSearchPage(p Page) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.searchPages = append(f.searchPages, p)
}

// EnqueueListErr queues err to be returned by one call to List. Queued
// errors are returned in order, one per call, before the queued pages
// are served.
func (f *FakeRemoteCatalog) EnqueueListErr(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.listErrs = append(f.listErrs, err)
}

func (f *FakeRemoteCatalog) List(ctx context.Context, kinds []core.Kind, cursor *string, limit int) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.listErrs) > 0 {
		err := f.listErrs[0]
		f.listErrs = f.listErrs[1:]
		return Page{}, err
	}

	if f.listCalls >= len(f.listPages) {
		return Page{Cursor: nil}, nil
	}
	p := f.listPages[f.listCalls]
	f.listCalls++
	return p, nil
}

func (f *FakeRemoteCatalog) Search(ctx context.Context, beginTime *string, cursor *string) (Page, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(f.searchErrs) > 0 {
		err := f.searchErrs[0]
		f.searchErrs = f.searchErrs[1:]
		return Page{}, err
	}

	if f.searchCalls >= len(f.searchPages) {
		return Page{Cursor: nil}, nil
	}
	p := f.searchPages[f.searchCalls]
	f.searchCalls++
	return p, nil
}

func (f *FakeRemoteCatalog) Retrieve(ctx context.Context, id string, includeRelated bool) (core.CatalogObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	obj, ok := f.objects[id]
	if !ok {
		return core.CatalogObject{}, &NotFoundError{ID: id}
	}
	return obj, nil
}

func (f *FakeRemoteCatalog) Upsert(ctx context.Context, object core.CatalogObject, idempotencyKey string) (core.CatalogObject, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.objects[object.ID] = object
	return object, nil
}

func (f *FakeRemoteCatalog) Delete(ctx context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.objects, id)
	return nil
}

// NotFoundError is returned by Retrieve for an unknown id.
type NotFoundError struct{ ID string }

func (e *NotFoundError) Error() string { return "object not found: " + e.ID }

// FakeAuthProvider is a trivial always-authenticated (or always-denied)
// AuthProvider test double.
type FakeAuthProvider struct {
	Authenticated bool
}

func (f *FakeAuthProvider) IsAuthenticated(ctx context.Context) bool { return f.Authenticated }

func (f *FakeAuthProvider) EnsureValidToken(ctx context.Context) (*Token, error) {
	if !f.Authenticated {
		return nil, nil
	}
	return &Token{AccessToken: "fake-token"}, nil
}

func (f *FakeAuthProvider) SignOut(ctx context.Context) { f.Authenticated = false }
