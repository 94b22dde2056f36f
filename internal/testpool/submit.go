package testpool

import (
	"bytes"
	"context"

	"github.com/google/uuid"
)

// SubmitTests validates and applies a batch of candidate cases in submission
// order. New names under quota are stamped fresh and inserted as a batch;
// re-submissions by the owning author update in place (or skip when
// unchanged); names claimed by another author are rejected. One failing item
// never aborts the rest of the batch.
func (e *Engine) SubmitTests(ctx context.Context, pool string, author Principal, opts Options, batch []SubmitCase) (SubmitResult, error) {
	if author.IsAnonymous() {
		return SubmitResult{}, AuthorizationError{Msg: "author identity required"}
	}
	if err := e.store.EnsurePool(ctx, pool); err != nil {
		return SubmitResult{}, err
	}

	var res SubmitResult

	// Quota is computed once for the whole batch and decremented as new
	// cases are accepted, so it cannot be exceeded even within one request.
	remaining := 0
	if !author.IsAdmin() {
		count, err := e.store.CountByAuthor(ctx, pool, author.ID)
		if err != nil {
			return SubmitResult{}, err
		}
		remaining = opts.MaxTestsPerStudent - count
	}

	var inserts []TestCase
	for _, cand := range batch {
		if cand.Name == "" {
			res.Rejected = append(res.Rejected, RejectedCase{Name: cand.Name, Reason: ReasonNameRequired})
			continue
		}
		existing, err := e.store.FindByName(ctx, pool, cand.Name)
		switch err.(type) {
		case nil:
			if existing.Author != author.ID {
				// Authorship of a name is permanent and exclusive.
				res.Rejected = append(res.Rejected, RejectedCase{Name: cand.Name, Reason: ReasonNameOwned})
				continue
			}
			updated := e.applyCandidate(existing, cand, author)
			if sameContent(existing, updated) {
				res.Accepted++ // identical resubmission is a no-op
				continue
			}
			if err := e.store.Update(ctx, pool, updated); err != nil {
				res.Rejected = append(res.Rejected, RejectedCase{Name: cand.Name, Reason: ReasonStoreFailure})
				continue
			}
			res.Accepted++
		case NotFoundError:
			if !author.IsAdmin() && remaining <= 0 {
				res.Rejected = append(res.Rejected, RejectedCase{Name: cand.Name, Reason: ReasonQuotaExceeded})
				continue
			}
			inserts = append(inserts, e.stampFresh(pool, cand, author))
			remaining--
		default:
			res.Rejected = append(res.Rejected, RejectedCase{Name: cand.Name, Reason: ReasonStoreFailure})
		}
	}

	for i, err := range e.store.InsertBatch(ctx, pool, inserts) {
		if err == nil {
			res.Accepted++
			continue
		}
		reason := ReasonStoreFailure
		if _, ok := err.(ConflictError); ok {
			// Lost a uniqueness race to a concurrent submission.
			reason = ReasonNameOwned
		}
		res.Rejected = append(res.Rejected, RejectedCase{Name: inserts[i].Name, Reason: reason})
	}

	visible, err := e.VisibleTests(ctx, pool, author, opts)
	if err != nil {
		return res, err
	}
	res.VisibleTests = visible
	return res, nil
}

// stampFresh builds a brand-new record: zero counters, empty sets, creation
// timestamp. Counters are reset only here, never on update.
func (e *Engine) stampFresh(pool string, cand SubmitCase, author Principal) TestCase {
	tc := TestCase{
		ID:          uuid.NewString(),
		Pool:        pool,
		Name:        cand.Name,
		Author:      author.ID,
		Description: cand.Description,
		Definition:  cand.Definition,
		Visibility:  cand.Visibility,
		IsDefault:   author.ID == e.defaultAuthor,
		IsPublic:    true,
		CreatedAt:   e.now().Unix(),
		StudentsRan: []string{}, StudentsRanSuccessfully: []string{},
		StudentsLiked: []string{}, StudentsDisliked: []string{},
	}
	if tc.Visibility == "" {
		tc.Visibility = VisibilityLimited
	}
	if cand.IsPublic != nil {
		tc.IsPublic = *cand.IsPublic
	}
	// Only instructor-level submitters may mark cases as default.
	if cand.IsDefault && author.IsAdmin() {
		tc.IsDefault = true
	}
	return tc
}

func (e *Engine) applyCandidate(existing TestCase, cand SubmitCase, author Principal) TestCase {
	out := existing
	out.Description = cand.Description
	out.Definition = cand.Definition
	if cand.Visibility != "" {
		out.Visibility = cand.Visibility
	}
	if cand.IsPublic != nil {
		out.IsPublic = *cand.IsPublic
	}
	if author.IsAdmin() {
		out.IsDefault = cand.IsDefault || author.ID == e.defaultAuthor
	}
	return out
}

func sameContent(a, b TestCase) bool {
	return a.Description == b.Description &&
		a.Visibility == b.Visibility &&
		a.IsDefault == b.IsDefault &&
		a.IsPublic == b.IsPublic &&
		bytes.Equal(normalizeRaw(a.Definition), normalizeRaw(b.Definition))
}

func normalizeRaw(raw []byte) []byte {
	if len(raw) == 0 {
		return []byte("{}")
	}
	return bytes.TrimSpace(raw)
}
