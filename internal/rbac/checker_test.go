package rbac

import (
	"context"
	"testing"
)

func TestDefaultPolicy(t *testing.T) {
	c := NewChecker(nil)

	if !c.Has("student", "tests:view") || !c.Has("student", "tests:delete-own") {
		t.Fatal("student is missing a granted permission")
	}
	if c.Has("student", "tests:delete-any") || c.Has("student", "users:bulk_upsert") {
		t.Fatal("student holds an admin permission")
	}
	if !c.Has("admin", "tests:delete-any") || !c.Has("admin", "users:bulk_upsert") {
		t.Fatal("admin wildcard not applied")
	}
	if !c.Has("anonymous", "tests:view") || c.Has("anonymous", "tests:react") {
		t.Fatal("anonymous must be view-only")
	}
	if c.Has("", "tests:view") || c.Has("nope", "tests:view") {
		t.Fatal("unknown role granted a permission")
	}
}

func TestAny(t *testing.T) {
	c := NewChecker(nil)
	if !c.Any("student", "tests:delete-own", "tests:delete-any") {
		t.Fatal("Any should accept when one of the permissions matches")
	}
	if c.Any("anonymous", "tests:react", "tests:delete-own") {
		t.Fatal("Any granted from an empty match")
	}
}

func TestPrefixWildcard(t *testing.T) {
	c := NewChecker(map[string][]string{"ta": {"tests:*"}})
	if !c.Has("ta", "tests:view") || !c.Has("ta", "tests:delete-any") {
		t.Fatal("prefix wildcard not applied")
	}
	if c.Has("ta", "users:bulk_upsert") {
		t.Fatal("prefix wildcard leaked outside its namespace")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := WithSubject(WithRole(context.Background(), "student"), "alice")
	if RoleFromContext(ctx) != "student" || SubjectFromContext(ctx) != "alice" {
		t.Fatal("context round trip failed")
	}
	empty := context.Background()
	if RoleFromContext(empty) != "" || SubjectFromContext(empty) != "" {
		t.Fatal("empty context must yield empty identity")
	}
}
