package service

import (
	"context"
	"errors"
	"testing"

	"github.com/washpoint-loyalty/internal/repository"
)

func TestCustomerRegisterAndLookup(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	ctx := context.Background()

	customer, err := f.customers.Register(ctx, RegisterCustomerInput{Phone: "+66 81-234-5678", DisplayName: " Somchai "})
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if customer.Phone != "0812345678" || customer.DisplayName != "Somchai" {
		t.Fatalf("unexpected customer: %+v", customer)
	}
	if _, err := f.customers.Register(ctx, RegisterCustomerInput{Phone: "081 234 5678"}); !errors.Is(err, ErrCustomerExists) {
		t.Fatalf("want ErrCustomerExists, got %v", err)
	}

	found, err := f.customers.GetByPhone(ctx, "081-234-5678")
	if err != nil || found.ID != customer.ID {
		t.Fatalf("lookup by phone failed: %+v err=%v", found, err)
	}
	if _, err := f.customers.GetByPhone(ctx, "0899999999"); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}
	if _, err := f.customers.GetByID(ctx, 999); !errors.Is(err, ErrCustomerNotFound) {
		t.Fatalf("want ErrCustomerNotFound, got %v", err)
	}

	rows, total, err := f.customers.Search(ctx, repository.CustomerListFilter{Keyword: "somchai", Page: 1, PageSize: 10})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if total != 1 || len(rows) != 1 {
		t.Fatalf("search want 1 row, got total=%d len=%d", total, len(rows))
	}
}

func TestNormalizePhone(t *testing.T) {
	cases := map[string]string{
		"0812345678":     "0812345678",
		" 081-234-5678 ": "0812345678",
		"+66812345678":   "0812345678",
		"(02) 123 4567":  "021234567",
		"":               "",
		"phone":          "",
	}
	for raw, want := range cases {
		if got := NormalizePhone(raw); got != want {
			t.Fatalf("NormalizePhone(%q) want %q got %q", raw, want, got)
		}
	}
}

func TestBranchCreateAndLookup(t *testing.T) {
	f := setupLoyaltyServiceTest(t)
	ctx := context.Background()

	first, err := f.branches.Create(ctx, "Sukhumvit 24", "")
	if err != nil {
		t.Fatalf("create branch failed: %v", err)
	}
	if first.Slug != "sukhumvit-24" || !first.IsActive {
		t.Fatalf("unexpected branch: %+v", first)
	}
	second, err := f.branches.Create(ctx, "Sukhumvit 24", "")
	if err != nil {
		t.Fatalf("create duplicate name failed: %v", err)
	}
	if second.Slug != "sukhumvit-24-2" {
		t.Fatalf("want suffixed slug, got %s", second.Slug)
	}
	if _, err := f.branches.Create(ctx, "Other", "sukhumvit-24"); !errors.Is(err, ErrBranchSlugExists) {
		t.Fatalf("explicit duplicate slug want ErrBranchSlugExists, got %v", err)
	}

	found, err := f.branches.GetBySlug(ctx, "Sukhumvit-24")
	if err != nil || found.ID != first.ID {
		t.Fatalf("lookup by slug failed: %+v err=%v", found, err)
	}
	if _, err := f.branches.GetBySlug(ctx, "missing"); !errors.Is(err, ErrBranchNotFound) {
		t.Fatalf("want ErrBranchNotFound, got %v", err)
	}
	active, err := f.branches.ListActive(ctx)
	if err != nil || len(active) != 2 {
		t.Fatalf("want 2 active branches, got %d err=%v", len(active), err)
	}
}
