package testpool

import (
	"context"
	"fmt"
)

// fakeStore is a map-backed Store used across the engine tests. It keeps
// insertion order per pool and can inject per-name insert failures.
type fakeStore struct {
	pools     map[string]bool // name -> hidden
	poolOrder []string
	tests     map[string][]*TestCase // pool -> cases in insertion order

	insertErr map[string]error // test name -> error to inject
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pools:     map[string]bool{},
		tests:     map[string][]*TestCase{},
		insertErr: map[string]error{},
	}
}

func (s *fakeStore) EnsurePool(ctx context.Context, pool string) error {
	if _, ok := s.pools[pool]; !ok {
		s.pools[pool] = false
		s.poolOrder = append(s.poolOrder, pool)
	}
	return nil
}

func (s *fakeStore) ListPools(ctx context.Context, includeHidden bool) ([]Pool, error) {
	var out []Pool
	for _, name := range s.poolOrder {
		if s.pools[name] && !includeHidden {
			continue
		}
		out = append(out, Pool{Name: name, Hidden: s.pools[name]})
	}
	return out, nil
}

func (s *fakeStore) ListPool(ctx context.Context, pool string) ([]TestCase, error) {
	var out []TestCase
	for _, tc := range s.tests[pool] {
		out = append(out, *tc)
	}
	return out, nil
}

func (s *fakeStore) FindByName(ctx context.Context, pool, name string) (TestCase, error) {
	for _, tc := range s.tests[pool] {
		if tc.Name == name {
			return *tc, nil
		}
	}
	return TestCase{}, NotFoundError{Msg: "test not found: " + name}
}

func (s *fakeStore) FindByID(ctx context.Context, pool, id string) (TestCase, error) {
	for _, tc := range s.tests[pool] {
		if tc.ID == id {
			return *tc, nil
		}
	}
	return TestCase{}, NotFoundError{Msg: "test not found: " + id}
}

func (s *fakeStore) InsertBatch(ctx context.Context, pool string, tcs []TestCase) []error {
	errs := make([]error, len(tcs))
	for i, tc := range tcs {
		if err := s.insertErr[tc.Name]; err != nil {
			errs[i] = err
			continue
		}
		if _, err := s.FindByName(ctx, pool, tc.Name); err == nil {
			errs[i] = ConflictError{Reason: ReasonNameOwned}
			continue
		}
		cp := tc
		s.tests[pool] = append(s.tests[pool], &cp)
	}
	return errs
}

func (s *fakeStore) Update(ctx context.Context, pool string, tc TestCase) error {
	for _, cur := range s.tests[pool] {
		if cur.ID == tc.ID {
			cur.Description = tc.Description
			cur.Definition = tc.Definition
			cur.Visibility = tc.Visibility
			cur.IsDefault = tc.IsDefault
			cur.IsPublic = tc.IsPublic
			s.updates++
			return nil
		}
	}
	return NotFoundError{Msg: "test not found: " + tc.ID}
}

func (s *fakeStore) Delete(ctx context.Context, pool, id string) error {
	for i, cur := range s.tests[pool] {
		if cur.ID == id {
			s.tests[pool] = append(s.tests[pool][:i], s.tests[pool][i+1:]...)
			return nil
		}
	}
	return NotFoundError{Msg: "test not found: " + id}
}

func (s *fakeStore) CountByAuthor(ctx context.Context, pool, author string) (int, error) {
	n := 0
	for _, tc := range s.tests[pool] {
		if tc.Author == author {
			n++
		}
	}
	return n, nil
}

func (s *fakeStore) Increment(ctx context.Context, pool, id string, field CounterField, delta int64) error {
	tc, err := s.get(pool, id)
	if err != nil {
		return err
	}
	switch field {
	case CounterTimesRan:
		tc.TimesRan += delta
	case CounterTimesRanSuccessfully:
		tc.TimesRanSuccessfully += delta
	case CounterNumStudentsRan:
		tc.NumStudentsRan += delta
	case CounterNumStudentsRanSuccessfully:
		tc.NumStudentsRanSuccessfully += delta
	default:
		return fmt.Errorf("unknown counter %q", field)
	}
	return nil
}

func (s *fakeStore) AddToSet(ctx context.Context, pool, id string, field SetField, member string) (bool, error) {
	tc, err := s.get(pool, id)
	if err != nil {
		return false, err
	}
	set := s.setRef(tc, field)
	if contains(*set, member) {
		return false, nil
	}
	*set = append(*set, member)
	return true, nil
}

func (s *fakeStore) RemoveFromSet(ctx context.Context, pool, id string, field SetField, member string) error {
	tc, err := s.get(pool, id)
	if err != nil {
		return err
	}
	set := s.setRef(tc, field)
	kept := (*set)[:0]
	for _, m := range *set {
		if m != member {
			kept = append(kept, m)
		}
	}
	*set = kept
	return nil
}

func (s *fakeStore) get(pool, id string) (*TestCase, error) {
	for _, tc := range s.tests[pool] {
		if tc.ID == id {
			return tc, nil
		}
	}
	return nil, NotFoundError{Msg: "test not found: " + id}
}

func (s *fakeStore) setRef(tc *TestCase, field SetField) *[]string {
	switch field {
	case SetStudentsRan:
		return &tc.StudentsRan
	case SetStudentsRanSuccessfully:
		return &tc.StudentsRanSuccessfully
	case SetStudentsLiked:
		return &tc.StudentsLiked
	case SetStudentsDisliked:
		return &tc.StudentsDisliked
	}
	return new([]string)
}
