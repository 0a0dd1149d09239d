package lending

import (
	"context"
	"errors"
	"testing"
	"time"

	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/testutil/identitymock"
	"lending-engine/internal/testutil/loanmock"
	"lending-engine/internal/testutil/uowmock"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

func TestQueryStatus(t *testing.T) {
	e := newEnv(t)
	e.seed("alice", 10_000, 0, 500)
	e.seed("carol", 10_000, 0, 500)
	l := e.fund("bob", "alice", 1000, 10, 2, 0)
	_, err := e.uc.InitiateRequest(e.ctx, InitiateInput{BorrowerID: "alice", LenderID: "carol", Amount: 50})
	require.NoError(t, err)

	dto, err := e.uc.QueryStatus(e.ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, int64(1000), dto.Wallet)
	require.NotNil(t, dto.Loan)
	require.Equal(t, l.LoanID, dto.Loan.LoanID)
	require.Equal(t, int64(1100), dto.Loan.Remaining)
	require.Len(t, dto.History, 1)
	require.Empty(t, dto.Sessions)

	e.clock.Advance(72 * time.Hour)
	dto, err = e.uc.QueryStatus(e.ctx, "bob")
	require.NoError(t, err)
	require.Equal(t, loan.StatusOverdue, dto.Loan.Status)
	require.Equal(t, loan.StatusOverdue, e.loan(l.LoanID).Status)

	alice, err := e.uc.QueryStatus(e.ctx, "alice")
	require.NoError(t, err)
	require.Nil(t, alice.Loan)
	require.Len(t, alice.History, 1)
	require.Len(t, alice.Sessions, 1)

	_, err = e.uc.QueryStatus(e.ctx, "ghost")
	require.ErrorIs(t, err, loan.ErrIdentityNotFound)
}

func TestQueryStatus_PropagatesStoreErrors(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUsecase(Deps{
		Identities: &identitymock.Repo{
			GetByUserIDFn: func(ctx context.Context, userID string) (*identity.Identity, error) {
				return identity.New(userID), nil
			},
		},
		UoW: uowmock.New().WithWithinLoanTx(
			func(context.Context, string, func(uow.Repos, *loan.Loan) error) error { return boom }),
	})

	_, err := uc.QueryStatus(context.Background(), "bob")
	require.ErrorIs(t, err, boom)
}

func TestInitiateRequest_LenderLookupError(t *testing.T) {
	boom := errors.New("db down")
	uc := NewUsecase(Deps{
		Identities: &identitymock.Repo{
			GetByUserIDFn: func(context.Context, string) (*identity.Identity, error) { return nil, boom },
		},
	})

	_, err := uc.InitiateRequest(context.Background(), InitiateInput{BorrowerID: "bob", LenderID: "alice", Amount: 1})
	require.ErrorIs(t, err, boom)
	require.NotErrorIs(t, err, loan.ErrValidation)
}

func TestPay_MissingLoanMapsToConflict(t *testing.T) {
	uc := NewUsecase(Deps{
		UoW: uowmock.New().WithWithinLoanTx(
			func(context.Context, string, func(uow.Repos, *loan.Loan) error) error { return gorm.ErrRecordNotFound }),
	})

	_, err := uc.PayPartial(context.Background(), "bob", 10)
	require.ErrorIs(t, err, loan.ErrNoActiveLoan)
}

func TestRemind_OverdueSaveFailureAborts(t *testing.T) {
	boom := errors.New("write failed")
	now := time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)
	overdue := &loan.Loan{
		LoanID: "L1", Kind: loan.KindPeer, BorrowerID: "bob", LenderID: "alice",
		Principal: 100, TotalToPay: 110, Deadline: now.Add(-time.Hour),
	}
	overdue.Open()

	saved := 0
	loans := &loanmock.Repo{SaveFn: func(context.Context, *loan.Loan) error {
		saved++
		return boom
	}}
	uc := NewUsecase(Deps{
		Now: func() time.Time { return now },
		UoW: uowmock.New().WithWithinLoanTx(
			func(_ context.Context, _ string, fn func(uow.Repos, *loan.Loan) error) error {
				return fn(uow.Repos{Loans: loans}, overdue)
			}),
	})

	_, err := uc.Remind(context.Background(), "alice", "bob")
	require.ErrorIs(t, err, boom)
	require.Equal(t, 1, saved)
	require.Equal(t, loan.StatusOverdue, overdue.Status)
}
