package testpool

import "encoding/json"

type Visibility string

const (
	VisibilityFull    Visibility = "full"
	VisibilityLimited Visibility = "limited"
	VisibilityNone    Visibility = "none"
)

// TestCase is the stored document, one per test name within a pool. The
// definition payload is opaque: the engine never looks inside it.
type TestCase struct {
	ID          string          `json:"_id"`
	Pool        string          `json:"-"`
	Name        string          `json:"name"`
	Author      string          `json:"author"`
	Description string          `json:"description"`
	Definition  json.RawMessage `json:"test"`
	Visibility  Visibility      `json:"visibility"`
	IsDefault   bool            `json:"isDefault"`
	IsPublic    bool            `json:"public"`
	CreatedAt   int64           `json:"createdAt"`

	TimesRan                   int64 `json:"timesRan"`
	TimesRanSuccessfully       int64 `json:"timesRanSuccessfully"`
	NumStudentsRan             int64 `json:"numStudentsRan"`
	NumStudentsRanSuccessfully int64 `json:"numStudentsRanSuccessfully"`

	StudentsRan             []string `json:"studentsRan"`
	StudentsRanSuccessfully []string `json:"studentsRanSuccessfully"`
	StudentsLiked           []string `json:"studentsLiked"`
	StudentsDisliked        []string `json:"studentsDisliked"`
}

// NumLiked and NumDisliked are derived, never stored independently.
func (t TestCase) NumLiked() int    { return len(t.StudentsLiked) }
func (t TestCase) NumDisliked() int { return len(t.StudentsDisliked) }

// SubmitCase is one candidate in an inbound submission batch. IsPublic is a
// pointer so "absent" can default to true.
type SubmitCase struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Definition  json.RawMessage `json:"test"`
	Visibility  Visibility      `json:"visibility"`
	IsDefault   bool            `json:"isDefault"`
	IsPublic    *bool           `json:"public"`
}

// RunResult is one autograder outcome for a named test.
type RunResult struct {
	Name   string `json:"name"`
	Passed bool   `json:"passed"`
}

type RejectedCase struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type ResultFailure struct {
	Name   string `json:"name"`
	Reason string `json:"reason"`
}

type SubmitResult struct {
	Accepted     int
	Rejected     []RejectedCase
	VisibleTests []TestCase
}

type Pool struct {
	Name   string
	Hidden bool
}

// Principal is a resolved requester identity. An empty ID means anonymous.
type Principal struct {
	ID   string
	Role string // "student" | "admin" | "anonymous"
}

func (p Principal) IsAdmin() bool     { return p.Role == "admin" }
func (p Principal) IsAnonymous() bool { return p.ID == "" }

func contains(set []string, member string) bool {
	for _, s := range set {
		if s == member {
			return true
		}
	}
	return false
}
