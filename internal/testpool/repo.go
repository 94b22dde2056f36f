package testpool

import "context"

// SetField names one of the per-student identity sets on a test document.
type SetField string

const (
	SetStudentsRan             SetField = "studentsRan"
	SetStudentsRanSuccessfully SetField = "studentsRanSuccessfully"
	SetStudentsLiked           SetField = "studentsLiked"
	SetStudentsDisliked        SetField = "studentsDisliked"
)

// CounterField names one of the aggregate run counters.
type CounterField string

const (
	CounterTimesRan                   CounterField = "timesRan"
	CounterTimesRanSuccessfully       CounterField = "timesRanSuccessfully"
	CounterNumStudentsRan             CounterField = "numStudentsRan"
	CounterNumStudentsRanSuccessfully CounterField = "numStudentsRanSuccessfully"
)

// Store wraps the document collection with atomic single-document primitives.
// It owns no business logic. Increment is atomic on its own; AddToSet and
// RemoveFromSet run check+mutate inside one transaction and report whether
// membership actually changed, so callers never need a read-modify-write of
// their own.
type Store interface {
	EnsurePool(ctx context.Context, pool string) error
	ListPools(ctx context.Context, includeHidden bool) ([]Pool, error)

	ListPool(ctx context.Context, pool string) ([]TestCase, error)
	FindByName(ctx context.Context, pool, name string) (TestCase, error)
	FindByID(ctx context.Context, pool, id string) (TestCase, error)

	// InsertBatch inserts each case independently; the returned slice is
	// index-aligned with tcs and holds nil for rows that landed.
	InsertBatch(ctx context.Context, pool string, tcs []TestCase) []error

	// Update replaces the mutable fields of an existing case in place,
	// preserving identity, counters and social sets.
	Update(ctx context.Context, pool string, tc TestCase) error

	Delete(ctx context.Context, pool, id string) error

	CountByAuthor(ctx context.Context, pool, author string) (int, error)

	Increment(ctx context.Context, pool, id string, field CounterField, delta int64) error
	AddToSet(ctx context.Context, pool, id string, field SetField, member string) (added bool, err error)
	RemoveFromSet(ctx context.Context, pool, id string, field SetField, member string) error
}

// Options carries the distribution knobs recognized per request.
type Options struct {
	NumPublicTestsForAccess int
	MaxTestsPerStudent      int
	MaxNumReturnedTests     int
	WeightReturnedTests     bool
}

// Service is what the HTTP layer consumes; *Engine implements it. Defaults
// exposes the configured Options so callers build per-request overrides on
// top of them instead of carrying a second copy of the configuration.
type Service interface {
	Defaults() Options
	SubmitTests(ctx context.Context, pool string, author Principal, opts Options, batch []SubmitCase) (SubmitResult, error)
	VisibleTests(ctx context.Context, pool string, viewer Principal, opts Options) ([]TestCase, error)
	SubmitResults(ctx context.Context, pool string, author Principal, results []RunResult) ([]ResultFailure, error)
	React(ctx context.Context, pool, id string, viewer Principal, like bool) error
	DeleteByID(ctx context.Context, pool, id string, requester Principal) error
	DeleteByName(ctx context.Context, pool, name string, requester Principal) error
	Pools(ctx context.Context, viewer Principal) ([]Pool, error)
}
