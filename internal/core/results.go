package core

// UpsertOutcome is returned by Store.Upsert and consumed by the Reconciler
// to build its per-batch counters.
type UpsertOutcome string

const (
	Inserted UpsertOutcome = "INSERTED"
	Updated  UpsertOutcome = "UPDATED"
	Skipped  UpsertOutcome = "SKIPPED"
)

// DeleteOutcome distinguishes a real delete from a delete of a row that
// was never present, per §4.3 step 2.
type DeleteOutcome string

const (
	Deleted    DeleteOutcome = "DELETED"
	NotDeleted DeleteOutcome = "NOT_DELETED"
)

// MatchKind identifies which field of a row satisfied a search query.
type MatchKind string

const (
	MatchName     MatchKind = "name"
	MatchSKU      MatchKind = "sku"
	MatchBarcode  MatchKind = "barcode"
	MatchCategory MatchKind = "category"
)

// MatchRow is one hit returned by Store.Search.
type MatchRow struct {
	ItemID      string
	VariationID *string
	MatchType   MatchKind
	MatchContext string
}

// BatchCounters aggregates the outcome of reconciling one batch of
// CatalogObjects, per §4.3's returned counters.
type BatchCounters struct {
	Processed int
	Inserted  int
	Updated   int
	Deleted   int
	Skipped   int
	Errors    []BatchError
}

// BatchError records a single non-fatal per-object failure.
type BatchError struct {
	ID      string
	Kind    Kind
	Message string
}

// Add folds other into c, used by the Sync Engine to aggregate counters
// returned by each per-page/per-batch transaction.
func (c *BatchCounters) Add(other BatchCounters) {
	c.Processed += other.Processed
	c.Inserted += other.Inserted
	c.Updated += other.Updated
	c.Deleted += other.Deleted
	c.Skipped += other.Skipped
	c.Errors = append(c.Errors, other.Errors...)
}
