package loanmock

import (
	"context"
	"errors"
	"testing"

	domain "lending-engine/internal/domain/loan"
)

func TestRepo_Create(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanID: "LN-1"}

	// Uses provided func
	called := false
	wantErr := errors.New("boom")
	m := &Repo{
		CreateFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Create ctx mismatch")
			}
			if got != l {
				t.Fatalf("Create arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Create(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Create: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("CreateFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Create(ctx, l); err != nil {
		t.Fatalf("Create default: want nil, got %v", err)
	}
}

func TestRepo_GetByLoanID(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-2"}

	// Uses provided func
	called := false
	m := &Repo{
		GetByLoanIDFn: func(gotCtx context.Context, loanID string) (*domain.Loan, error) {
			called = true
			if gotCtx != ctx {
				t.Fatalf("GetByLoanID ctx mismatch")
			}
			if loanID != "LN-2" {
				t.Fatalf("GetByLoanID loanID mismatch: got %s", loanID)
			}
			return want, nil
		},
	}
	got, err := m.GetByLoanID(ctx, "LN-2")
	if err != nil {
		t.Fatalf("GetByLoanID: unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("GetByLoanID: want %+v, got %+v", want, got)
	}
	if !called {
		t.Fatalf("GetByLoanIDFn not called")
	}

	// Default (nil func) → context.Canceled
	m = &Repo{}
	got, err = m.GetByLoanID(ctx, "LN-2")
	if err != context.Canceled {
		t.Fatalf("GetByLoanID default: want context.Canceled, got %v", err)
	}
	if got != nil {
		t.Fatalf("GetByLoanID default: want nil loan, got %+v", got)
	}
}

func TestRepo_Save(t *testing.T) {
	ctx := context.Background()
	l := &domain.Loan{LoanID: "LN-3"}

	// Uses provided func
	called := false
	wantErr := errors.New("save-fail")
	m := &Repo{
		SaveFn: func(gotCtx context.Context, got *domain.Loan) error {
			called = true
			if gotCtx != ctx {
				t.Fatalf("Save ctx mismatch")
			}
			if got != l {
				t.Fatalf("Save arg mismatch")
			}
			return wantErr
		},
	}
	if err := m.Save(ctx, l); !errors.Is(err, wantErr) {
		t.Fatalf("Save: want %v, got %v", wantErr, err)
	}
	if !called {
		t.Fatalf("SaveFn not called")
	}

	// Default (nil func) → no-op, nil error
	m = &Repo{}
	if err := m.Save(ctx, l); err != nil {
		t.Fatalf("Save default: want nil, got %v", err)
	}
}

func TestRepo_GetActiveByBorrowerID(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-4"}

	// Uses provided func
	called := false
	m := &Repo{
		GetActiveByBorrowerIDFn: func(gotCtx context.Context, borrowerID string) (*domain.Loan, error) {
			called = true
			if gotCtx != ctx {
				t.Fatalf("GetActive ctx mismatch")
			}
			if borrowerID != "BR-1" {
				t.Fatalf("GetActive borrowerID mismatch: got %s", borrowerID)
			}
			return want, nil
		},
	}
	got, err := m.GetActiveByBorrowerID(ctx, "BR-1")
	if err != nil {
		t.Fatalf("GetActiveByBorrowerID: unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("GetActiveByBorrowerID: want %+v, got %+v", want, got)
	}
	if !called {
		t.Fatalf("GetActiveByBorrowerIDFn not called")
	}

	// Default (nil func) → context.Canceled
	m = &Repo{}
	got, err = m.GetActiveByBorrowerID(ctx, "BR-1")
	if err != context.Canceled {
		t.Fatalf("GetActive default: want context.Canceled, got %v", err)
	}
	if got != nil {
		t.Fatalf("GetActive default: want nil loan, got %+v", got)
	}
}

func TestRepo_GetActiveByBorrowerIDForUpdate(t *testing.T) {
	ctx := context.Background()
	want := &domain.Loan{LoanID: "LN-5", BorrowerID: "BR-5"}

	// Uses provided func
	called := false
	m := &Repo{
		GetActiveByBorrowerIDForUpdateFn: func(gotCtx context.Context, borrowerID string) (*domain.Loan, error) {
			called = true
			if gotCtx != ctx {
				t.Fatalf("GetActiveByBorrowerIDForUpdate ctx mismatch")
			}
			if borrowerID != "BR-5" {
				t.Fatalf("GetActiveByBorrowerIDForUpdate borrowerID mismatch: got %s", borrowerID)
			}
			return want, nil
		},
	}
	got, err := m.GetActiveByBorrowerIDForUpdate(ctx, "BR-5")
	if err != nil {
		t.Fatalf("GetActiveByBorrowerIDForUpdate: unexpected err: %v", err)
	}
	if got != want {
		t.Fatalf("GetActiveByBorrowerIDForUpdate: want %+v, got %+v", want, got)
	}
	if !called {
		t.Fatalf("GetActiveByBorrowerIDForUpdateFn not called")
	}

	// Default (nil func) → context.Canceled
	m = &Repo{}
	got, err = m.GetActiveByBorrowerIDForUpdate(ctx, "BR-5")
	if err != context.Canceled {
		t.Fatalf("GetActiveByBorrowerIDForUpdate default: want context.Canceled, got %v", err)
	}
	if got != nil {
		t.Fatalf("GetActiveByBorrowerIDForUpdate default: want nil loan, got %+v", got)
	}
}
