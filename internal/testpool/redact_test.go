package testpool

import (
	"encoding/json"
	"testing"
)

func redactFixture() TestCase {
	return TestCase{
		ID:          "id-1",
		Name:        "t1",
		Author:      "alice",
		Description: "checks the happy path",
		Definition:  json.RawMessage(`{"command":"GET /"}`),
		Visibility:  VisibilityLimited,
		IsPublic:    true,
		CreatedAt:   1700000000,

		TimesRan:             4,
		TimesRanSuccessfully: 3,
		NumStudentsRan:       2,

		StudentsRan:             []string{"bob", "carol"},
		StudentsRanSuccessfully: []string{"bob"},
		StudentsLiked:           []string{"bob"},
		StudentsDisliked:        []string{"carol"},
	}
}

func TestStudentViewOmitsSensitiveFields(t *testing.T) {
	raw, err := json.Marshal(View(redactFixture(), student("dave")))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}

	for _, k := range []string{"test", "visibility", "studentsRan", "studentsRanSuccessfully", "studentsLiked", "studentsDisliked", "isDefault", "public"} {
		if _, ok := m[k]; ok {
			t.Fatalf("field %q leaked to a student viewer: %s", k, raw)
		}
	}
	for _, k := range []string{"_id", "name", "author", "description", "timesRan", "timesRanSuccessfully", "numStudentsRan", "numStudentsRanSuccessfully", "createdAt", "numLiked", "numDisliked", "userLiked", "userDisliked", "selfWritten"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("field %q missing from the student projection: %s", k, raw)
		}
	}
	if m["numLiked"] != float64(1) || m["numDisliked"] != float64(1) {
		t.Fatalf("derived counts wrong: %s", raw)
	}
}

func TestViewReactionFlagsPerViewer(t *testing.T) {
	tc := redactFixture()

	v := View(tc, student("bob")).(StudentView)
	if !v.UserLiked || v.UserDisliked {
		t.Fatalf("bob: liked=%v disliked=%v", v.UserLiked, v.UserDisliked)
	}
	v = View(tc, student("carol")).(StudentView)
	if v.UserLiked || !v.UserDisliked {
		t.Fatalf("carol: liked=%v disliked=%v", v.UserLiked, v.UserDisliked)
	}
	v = View(tc, student("dave")).(StudentView)
	if v.UserLiked || v.UserDisliked {
		t.Fatalf("dave: liked=%v disliked=%v", v.UserLiked, v.UserDisliked)
	}
}

func TestViewSelfWritten(t *testing.T) {
	tc := redactFixture()
	if v := View(tc, student("alice")).(StudentView); !v.SelfWritten {
		t.Fatalf("author projection must flag selfWritten")
	}
	if v := View(tc, student("bob")).(StudentView); v.SelfWritten {
		t.Fatalf("non-author projection flagged selfWritten")
	}
}

func TestAnonymousViewerNeverMatchesMembership(t *testing.T) {
	tc := redactFixture()
	tc.StudentsLiked = append(tc.StudentsLiked, "")

	v := View(tc, Principal{Role: "anonymous"}).(StudentView)
	if v.UserLiked || v.UserDisliked || v.SelfWritten {
		t.Fatalf("anonymous viewer matched a membership set: %+v", v)
	}
}

func TestAdminViewCarriesFullDocument(t *testing.T) {
	raw, err := json.Marshal(View(redactFixture(), admin("grader")))
	if err != nil {
		t.Fatal(err)
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		t.Fatal(err)
	}
	for _, k := range []string{"test", "visibility", "studentsLiked", "studentsDisliked", "numLiked", "numDisliked"} {
		if _, ok := m[k]; !ok {
			t.Fatalf("admin projection missing %q: %s", k, raw)
		}
	}
}

func TestViewAllPreservesOrder(t *testing.T) {
	a, b := redactFixture(), redactFixture()
	b.ID, b.Name = "id-2", "t2"

	out := ViewAll([]TestCase{a, b}, student("dave"))
	if len(out) != 2 {
		t.Fatalf("len = %d", len(out))
	}
	if out[0].(StudentView).Name != "t1" || out[1].(StudentView).Name != "t2" {
		t.Fatalf("order not preserved: %v", out)
	}
}
