// Package lending runs the loan lifecycle: peer negotiation, disbursement,
// repayment, forgiveness and treasury credit.
package lending

import (
	"context"
	"errors"
	"time"

	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"
	"lending-engine/internal/domain/uow"
	"lending-engine/internal/usecase/credit"
	"lending-engine/internal/usecase/negotiation"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

// Notifier delivers a message to one user. It reports false when the
// message could not be delivered.
type Notifier interface {
	Notify(ctx context.Context, userID, message string) bool
}

// Locker is a cross-process marker. Replicas take it per borrower before
// disbursing so that only one of them funds a borrower at a time.
type Locker interface {
	TryLock(ctx context.Context, key string) (bool, error)
	Unlock(ctx context.Context, key string) error
}

type Deps struct {
	UoW        uow.UnitOfWork
	Identities identity.Repository
	History    history.Repository
	Treasury   treasury.Repository
	Sessions   *negotiation.Store
	Notifier   Notifier
	Locker     Locker
	Logger     *zap.Logger
	Capacities credit.Capacities
	Now        func() time.Time
}

type Usecase struct {
	uow        uow.UnitOfWork
	identities identity.Repository
	history    history.Repository
	treasury   treasury.Repository
	sessions   *negotiation.Store
	notifier   Notifier
	locker     Locker
	log        *zap.Logger
	capacities credit.Capacities
	now        func() time.Time
}

func NewUsecase(d Deps) *Usecase {
	u := &Usecase{
		uow:        d.UoW,
		identities: d.Identities,
		history:    d.History,
		treasury:   d.Treasury,
		sessions:   d.Sessions,
		notifier:   d.Notifier,
		locker:     d.Locker,
		log:        d.Logger,
		capacities: d.Capacities,
		now:        d.Now,
	}
	if u.log == nil {
		u.log = zap.NewNop()
	}
	if u.capacities == nil {
		u.capacities = credit.DefaultCapacities
	}
	if u.now == nil {
		u.now = func() time.Time { return time.Now().UTC() }
	}
	if u.sessions == nil {
		u.sessions = negotiation.NewStore(0)
	}
	return u
}

// notify delivers msg and records a warning on n when it fails.
func (u *Usecase) notify(ctx context.Context, n *Notice, userID, msg string) {
	if u.notifier != nil && u.notifier.Notify(ctx, userID, msg) {
		return
	}
	u.log.Warn("notification not delivered", zap.String("user_id", userID))
	n.warn(loan.DeliveryFailure(userID))
}

// activeLoan returns the borrower's active loan, or nil when there is none.
// A loan found past its deadline is persisted as overdue on the way.
func (u *Usecase) activeLoan(ctx context.Context, borrowerID string) (*loan.Loan, error) {
	var out *loan.Loan
	err := u.uow.WithinLoanTx(ctx, borrowerID, func(r uow.Repos, l *loan.Loan) error {
		if loan.Touch(u.now(), l) {
			if err := r.Loans.Save(ctx, l); err != nil {
				return err
			}
			u.log.Info("loan marked overdue",
				zap.String("loan_id", l.LoanID), zap.String("borrower_id", l.BorrowerID))
		}
		out = l
		return nil
	})
	if isNotFound(err) {
		return nil, nil
	}
	return out, err
}

const borrowerLockPrefix = "borrower:"

// holdBorrower takes the borrower marker when a Locker is configured. The
// returned release is never nil. An unreachable locker is logged and the
// database constraints are left to guard the write.
func (u *Usecase) holdBorrower(ctx context.Context, borrowerID string) (func(), error) {
	if u.locker == nil {
		return func() {}, nil
	}
	key := borrowerLockPrefix + borrowerID
	ok, err := u.locker.TryLock(ctx, key)
	if err != nil {
		u.log.Warn("borrower lock unavailable", zap.String("borrower_id", borrowerID), zap.Error(err))
		return func() {}, nil
	}
	if !ok {
		return nil, loan.ErrBorrowerBusy
	}
	return func() {
		if err := u.locker.Unlock(context.WithoutCancel(ctx), key); err != nil {
			u.log.Warn("borrower unlock failed", zap.String("borrower_id", borrowerID), zap.Error(err))
		}
	}, nil
}

// borrowerGate rejects a new loan while the borrower still holds one.
func (u *Usecase) borrowerGate(ctx context.Context, borrowerID string) error {
	l, err := u.activeLoan(ctx, borrowerID)
	if err != nil {
		return err
	}
	if l == nil {
		return nil
	}
	if loan.EffectiveStatus(u.now(), l) == loan.StatusOverdue {
		return loan.ErrOverdueLoan
	}
	return loan.ErrActiveLoan
}

func isNotFound(err error) bool { return errors.Is(err, gorm.ErrRecordNotFound) }

// orNoLoan maps the missing-row error of WithinLoanTx to a domain error.
func orNoLoan(err error) error {
	if isNotFound(err) {
		return loan.ErrNoActiveLoan
	}
	return err
}
