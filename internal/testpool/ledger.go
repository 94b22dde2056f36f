package testpool

import "context"

// React applies a like or dislike toggle. A repeat of the same reaction is an
// observable rejection, not a silent success; the opposite reaction is always
// cleared first so a student is never in both sets at once.
func (e *Engine) React(ctx context.Context, pool, id string, viewer Principal, like bool) error {
	if viewer.IsAnonymous() {
		return AuthorizationError{Msg: "credential required to react"}
	}
	tc, err := e.store.FindByID(ctx, pool, id)
	if err != nil {
		return err
	}

	target, opposite := SetStudentsLiked, SetStudentsDisliked
	reason := ReasonAlreadyLiked
	if !like {
		target, opposite = SetStudentsDisliked, SetStudentsLiked
		reason = ReasonAlreadyDisliked
	}

	if contains(setFor(tc, target), viewer.ID) {
		return ConflictError{Reason: reason}
	}
	// Removal from the opposite set is safe even when absent.
	if err := e.store.RemoveFromSet(ctx, pool, id, opposite, viewer.ID); err != nil {
		return err
	}
	added, err := e.store.AddToSet(ctx, pool, id, target, viewer.ID)
	if err != nil {
		return err
	}
	if !added {
		// A concurrent identical toggle landed first.
		return ConflictError{Reason: reason}
	}
	return nil
}

// SubmitResults records a batch of autograder outcomes. Global counters move
// on every submission; distinct-student counters move at most once per
// student per test, gated by the set membership the store reports.
func (e *Engine) SubmitResults(ctx context.Context, pool string, author Principal, results []RunResult) ([]ResultFailure, error) {
	if author.IsAnonymous() {
		return nil, AuthorizationError{Msg: "author identity required"}
	}
	var failures []ResultFailure
	for _, r := range results {
		if err := e.recordResult(ctx, pool, author.ID, r); err != nil {
			reason := ReasonStoreFailure
			if _, ok := err.(NotFoundError); ok {
				reason = ReasonUnknownTest
			}
			failures = append(failures, ResultFailure{Name: r.Name, Reason: reason})
		}
	}
	return failures, nil
}

func (e *Engine) recordResult(ctx context.Context, pool, student string, r RunResult) error {
	tc, err := e.store.FindByName(ctx, pool, r.Name)
	if err != nil {
		return err
	}

	if err := e.store.Increment(ctx, pool, tc.ID, CounterTimesRan, 1); err != nil {
		return err
	}
	if r.Passed {
		if err := e.store.Increment(ctx, pool, tc.ID, CounterTimesRanSuccessfully, 1); err != nil {
			return err
		}
	}

	added, err := e.store.AddToSet(ctx, pool, tc.ID, SetStudentsRan, student)
	if err != nil {
		return err
	}
	if added {
		if err := e.store.Increment(ctx, pool, tc.ID, CounterNumStudentsRan, 1); err != nil {
			return err
		}
	}
	if r.Passed {
		added, err := e.store.AddToSet(ctx, pool, tc.ID, SetStudentsRanSuccessfully, student)
		if err != nil {
			return err
		}
		if added {
			if err := e.store.Increment(ctx, pool, tc.ID, CounterNumStudentsRanSuccessfully, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// DeleteByID removes one case. Students may only delete their own.
func (e *Engine) DeleteByID(ctx context.Context, pool, id string, requester Principal) error {
	tc, err := e.store.FindByID(ctx, pool, id)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() && tc.Author != requester.ID {
		return AuthorizationError{Msg: "not the author of " + tc.Name}
	}
	return e.store.Delete(ctx, pool, tc.ID)
}

// DeleteByName is the instructor-scoped variant.
func (e *Engine) DeleteByName(ctx context.Context, pool, name string, requester Principal) error {
	tc, err := e.store.FindByName(ctx, pool, name)
	if err != nil {
		return err
	}
	if !requester.IsAdmin() && tc.Author != requester.ID {
		return AuthorizationError{Msg: "not the author of " + tc.Name}
	}
	return e.store.Delete(ctx, pool, tc.ID)
}

func setFor(tc TestCase, field SetField) []string {
	switch field {
	case SetStudentsRan:
		return tc.StudentsRan
	case SetStudentsRanSuccessfully:
		return tc.StudentsRanSuccessfully
	case SetStudentsLiked:
		return tc.StudentsLiked
	case SetStudentsDisliked:
		return tc.StudentsDisliked
	}
	return nil
}
