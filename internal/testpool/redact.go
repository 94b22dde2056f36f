package testpool

// StudentView is the allow-list projection served to non-admin viewers. It is
// a separate struct on purpose: the definition payload, the per-student
// identity sets and the raw visibility flags have no field here, so a newly
// added sensitive field stays excluded unless someone adds it explicitly.
type StudentView struct {
	ID          string `json:"_id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Author      string `json:"author"`

	TimesRan                   int64 `json:"timesRan"`
	TimesRanSuccessfully       int64 `json:"timesRanSuccessfully"`
	NumStudentsRan             int64 `json:"numStudentsRan"`
	NumStudentsRanSuccessfully int64 `json:"numStudentsRanSuccessfully"`
	CreatedAt                  int64 `json:"createdAt"`

	NumLiked     int  `json:"numLiked"`
	NumDisliked  int  `json:"numDisliked"`
	UserLiked    bool `json:"userLiked"`
	UserDisliked bool `json:"userDisliked"`
	SelfWritten  bool `json:"selfWritten"`
}

// AdminView is the full document plus the derived convenience fields.
type AdminView struct {
	TestCase
	NumLiked     int  `json:"numLiked"`
	NumDisliked  int  `json:"numDisliked"`
	UserLiked    bool `json:"userLiked"`
	UserDisliked bool `json:"userDisliked"`
	SelfWritten  bool `json:"selfWritten"`
}

// View projects one case for one viewer. The viewer's own reaction booleans
// are computed by membership test before the sets are dropped.
func View(tc TestCase, viewer Principal) any {
	liked := contains(tc.StudentsLiked, viewer.ID) && !viewer.IsAnonymous()
	disliked := contains(tc.StudentsDisliked, viewer.ID) && !viewer.IsAnonymous()
	self := tc.Author == viewer.ID && !viewer.IsAnonymous()

	if viewer.IsAdmin() {
		return AdminView{
			TestCase:     tc,
			NumLiked:     tc.NumLiked(),
			NumDisliked:  tc.NumDisliked(),
			UserLiked:    liked,
			UserDisliked: disliked,
			SelfWritten:  self,
		}
	}
	return StudentView{
		ID:          tc.ID,
		Name:        tc.Name,
		Description: tc.Description,
		Author:      tc.Author,

		TimesRan:                   tc.TimesRan,
		TimesRanSuccessfully:       tc.TimesRanSuccessfully,
		NumStudentsRan:             tc.NumStudentsRan,
		NumStudentsRanSuccessfully: tc.NumStudentsRanSuccessfully,
		CreatedAt:                  tc.CreatedAt,

		NumLiked:     tc.NumLiked(),
		NumDisliked:  tc.NumDisliked(),
		UserLiked:    liked,
		UserDisliked: disliked,
		SelfWritten:  self,
	}
}

// ViewAll projects a whole visible set, preserving order.
func ViewAll(tcs []TestCase, viewer Principal) []any {
	out := make([]any, len(tcs))
	for i, tc := range tcs {
		out[i] = View(tc, viewer)
	}
	return out
}
