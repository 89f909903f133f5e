package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
)

func TestBuildLikeConditionByDialectSQLite(t *testing.T) {
	condition, argCount := buildLikeConditionByDialect("sqlite", []string{"phone", " ", "display_name"})
	if argCount != 2 {
		t.Fatalf("arg count want 2 got %d", argCount)
	}
	want := "phone LIKE ? OR display_name LIKE ?"
	if condition != want {
		t.Fatalf("condition mismatch, want %s got %s", want, condition)
	}
}

func TestBuildLikeConditionByDialectPostgres(t *testing.T) {
	condition, _ := buildLikeConditionByDialect("postgres", []string{"phone"})
	if condition != "phone ILIKE ?" {
		t.Fatalf("postgres condition mismatch, got %s", condition)
	}
}

func TestBuildLikeConditionNilDBFallsBackToSQLite(t *testing.T) {
	condition, argCount := buildLikeCondition(nil, []string{"slug"})
	if argCount != 1 || condition != "slug LIKE ?" {
		t.Fatalf("unexpected condition %s (%d)", condition, argCount)
	}
}

func TestRepeatLikeArgs(t *testing.T) {
	args := repeatLikeArgs("%test%", 3)
	if len(args) != 3 {
		t.Fatalf("args len want 3 got %d", len(args))
	}
	for idx, arg := range args {
		if arg != "%test%" {
			t.Fatalf("args[%d] want %%test%% got %v", idx, arg)
		}
	}
}

func TestIsRetryableTxError(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil", err: nil, want: false},
		{name: "serialization", err: fmt.Errorf("commit: %w", &pgconn.PgError{Code: "40001"}), want: true},
		{name: "deadlock", err: &pgconn.PgError{Code: "40P01"}, want: true},
		{name: "unique", err: &pgconn.PgError{Code: "23505"}, want: false},
		{name: "sqlite busy", err: errors.New("database is locked (5) (SQLITE_BUSY)"), want: true},
		{name: "other", err: errors.New("no such table"), want: false},
	}
	for _, tc := range cases {
		if got := IsRetryableTxError(tc.err); got != tc.want {
			t.Fatalf("%s: want %v got %v", tc.name, tc.want, got)
		}
	}
}

func TestIsUniqueViolation(t *testing.T) {
	if !IsUniqueViolation(&pgconn.PgError{Code: "23505"}) {
		t.Fatalf("postgres unique violation should match")
	}
	if !IsUniqueViolation(errors.New("UNIQUE constraint failed: coupon_instances.code")) {
		t.Fatalf("sqlite unique violation should match")
	}
	if IsUniqueViolation(errors.New("connection refused")) {
		t.Fatalf("unrelated error should not match")
	}
}
