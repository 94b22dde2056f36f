package testpool

import (
	"context"
	"testing"
)

func seedOne(st *fakeStore, pool, name, author string) TestCase {
	tc := TestCase{
		ID: "id-" + name, Name: name, Author: author, IsPublic: true,
		StudentsRan: []string{}, StudentsRanSuccessfully: []string{},
		StudentsLiked: []string{}, StudentsDisliked: []string{},
	}
	seed(st, pool, tc)
	return tc
}

func TestRunResultsExactlyOncePerStudent(t *testing.T) {
	st := newFakeStore()
	seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		failures, err := e.SubmitResults(ctx, "hw1", student("bob"), []RunResult{{Name: "t1", Passed: true}})
		if err != nil || len(failures) != 0 {
			t.Fatalf("unexpected failure: %v %v", failures, err)
		}
	}

	tc, _ := st.FindByName(ctx, "hw1", "t1")
	if tc.TimesRan != 2 || tc.TimesRanSuccessfully != 2 {
		t.Fatalf("global counters: ran=%d ok=%d, want 2/2", tc.TimesRan, tc.TimesRanSuccessfully)
	}
	if tc.NumStudentsRan != 1 || tc.NumStudentsRanSuccessfully != 1 {
		t.Fatalf("distinct counters: ran=%d ok=%d, want 1/1", tc.NumStudentsRan, tc.NumStudentsRanSuccessfully)
	}
	if len(tc.StudentsRan) != 1 || tc.StudentsRan[0] != "bob" {
		t.Fatalf("studentsRan = %v", tc.StudentsRan)
	}
}

func TestRunResultsFailThenPass(t *testing.T) {
	st := newFakeStore()
	seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	if _, err := e.SubmitResults(ctx, "hw1", student("bob"), []RunResult{{Name: "t1", Passed: false}}); err != nil {
		t.Fatal(err)
	}
	if _, err := e.SubmitResults(ctx, "hw1", student("bob"), []RunResult{{Name: "t1", Passed: true}}); err != nil {
		t.Fatal(err)
	}

	tc, _ := st.FindByName(ctx, "hw1", "t1")
	if tc.TimesRan != 2 || tc.TimesRanSuccessfully != 1 {
		t.Fatalf("global counters: ran=%d ok=%d, want 2/1", tc.TimesRan, tc.TimesRanSuccessfully)
	}
	if tc.NumStudentsRan != 1 || tc.NumStudentsRanSuccessfully != 1 {
		t.Fatalf("distinct counters: ran=%d ok=%d, want 1/1", tc.NumStudentsRan, tc.NumStudentsRanSuccessfully)
	}
}

func TestRunResultsUnknownTestDoesNotAbortBatch(t *testing.T) {
	st := newFakeStore()
	seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)

	failures, err := e.SubmitResults(context.Background(), "hw1", student("bob"), []RunResult{
		{Name: "nope", Passed: true},
		{Name: "t1", Passed: true},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(failures) != 1 || failures[0].Name != "nope" || failures[0].Reason != ReasonUnknownTest {
		t.Fatalf("failures = %v", failures)
	}
	tc, _ := st.FindByName(context.Background(), "hw1", "t1")
	if tc.TimesRan != 1 {
		t.Fatalf("known item was not applied")
	}
}

func TestRunResultsAnonymousRejected(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st)
	if _, err := e.SubmitResults(context.Background(), "hw1", Principal{}, nil); err == nil {
		t.Fatalf("expected AuthorizationError")
	}
}

func TestReactionExclusivity(t *testing.T) {
	st := newFakeStore()
	tc := seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	if err := e.React(ctx, "hw1", tc.ID, student("bob"), true); err != nil {
		t.Fatalf("like: %v", err)
	}
	if err := e.React(ctx, "hw1", tc.ID, student("bob"), false); err != nil {
		t.Fatalf("dislike after like: %v", err)
	}

	got, _ := st.FindByID(ctx, "hw1", tc.ID)
	if len(got.StudentsLiked) != 0 || len(got.StudentsDisliked) != 1 {
		t.Fatalf("liked=%v disliked=%v", got.StudentsLiked, got.StudentsDisliked)
	}
}

func TestRepeatReactionIsObservableRejection(t *testing.T) {
	st := newFakeStore()
	tc := seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	if err := e.React(ctx, "hw1", tc.ID, student("bob"), true); err != nil {
		t.Fatalf("like: %v", err)
	}
	err := e.React(ctx, "hw1", tc.ID, student("bob"), true)
	ce, ok := err.(ConflictError)
	if !ok || ce.Reason != ReasonAlreadyLiked {
		t.Fatalf("expected already-liked conflict, got %v", err)
	}

	if err := e.React(ctx, "hw1", tc.ID, student("bob"), false); err != nil {
		t.Fatalf("dislike: %v", err)
	}
	err = e.React(ctx, "hw1", tc.ID, student("bob"), false)
	ce, ok = err.(ConflictError)
	if !ok || ce.Reason != ReasonAlreadyDisliked {
		t.Fatalf("expected already-disliked conflict, got %v", err)
	}
}

func TestReactRequiresIdentity(t *testing.T) {
	st := newFakeStore()
	tc := seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)

	err := e.React(context.Background(), "hw1", tc.ID, Principal{Role: "anonymous"}, true)
	if _, ok := err.(AuthorizationError); !ok {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
}

func TestReactUnknownTest(t *testing.T) {
	st := newFakeStore()
	e := newTestEngine(st)
	err := e.React(context.Background(), "hw1", "missing", student("bob"), true)
	if _, ok := err.(NotFoundError); !ok {
		t.Fatalf("expected NotFoundError, got %v", err)
	}
}

func TestDeleteOwnershipChecked(t *testing.T) {
	st := newFakeStore()
	tc := seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	err := e.DeleteByID(ctx, "hw1", tc.ID, student("bob"))
	if _, ok := err.(AuthorizationError); !ok {
		t.Fatalf("expected AuthorizationError, got %v", err)
	}
	if err := e.DeleteByID(ctx, "hw1", tc.ID, student("alice")); err != nil {
		t.Fatalf("author delete: %v", err)
	}
	if _, err := st.FindByID(ctx, "hw1", tc.ID); err == nil {
		t.Fatalf("case not deleted")
	}
}

func TestAdminDeletesAnyByName(t *testing.T) {
	st := newFakeStore()
	seedOne(st, "hw1", "t1", "alice")
	e := newTestEngine(st)
	ctx := context.Background()

	if err := e.DeleteByName(ctx, "hw1", "t1", admin("grader")); err != nil {
		t.Fatalf("admin delete: %v", err)
	}
	if err := e.DeleteByName(ctx, "hw1", "t1", admin("grader")); err == nil {
		t.Fatalf("deleting a missing case must be a not-found failure")
	}
}
