package lending

import (
	"context"
	"sync"
	"testing"
	"time"

	repo "lending-engine/internal/adapter/repository/mysql"
	"lending-engine/internal/domain/history"
	"lending-engine/internal/domain/identity"
	"lending-engine/internal/domain/ledger"
	"lending-engine/internal/domain/loan"
	"lending-engine/internal/domain/treasury"
	"lending-engine/internal/infrastructure/db"
	"lending-engine/internal/usecase/negotiation"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// recorder is a Notifier that keeps every message and can simulate
// unreachable users.
type recorder struct {
	mu   sync.Mutex
	sent map[string][]string
	down map[string]bool
}

func newRecorder() *recorder {
	return &recorder{sent: map[string][]string{}, down: map[string]bool{}}
}

func (r *recorder) Notify(_ context.Context, userID, message string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.down[userID] {
		return false
	}
	r.sent[userID] = append(r.sent[userID], message)
	return true
}

func (r *recorder) count(userID string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sent[userID])
}

type env struct {
	t        *testing.T
	ctx      context.Context
	db       *gorm.DB
	uc       *Usecase
	clock    *testClock
	notes    *recorder
	sessions *negotiation.Store
}

const vaultSeed = 1_000_000

func newEnv(t *testing.T) *env {
	t.Helper()
	gdb, err := db.OpenSQLite(":memory:")
	require.NoError(t, err)
	require.NoError(t, repo.Migrate(gdb))

	ctx := context.Background()
	vaults := repo.NewTreasuryRepository(gdb)
	_, err = vaults.EnsureVault(ctx, vaultSeed)
	require.NoError(t, err)

	clk := &testClock{t: time.Date(2025, 9, 6, 10, 0, 0, 0, time.UTC)}
	notes := newRecorder()
	sessions := negotiation.NewStore(15 * time.Minute).WithClock(clk.Now)

	uc := NewUsecase(Deps{
		UoW:        repo.NewGormUoW(gdb),
		Identities: repo.NewIdentityRepository(gdb),
		History:    repo.NewHistoryRepository(gdb),
		Treasury:   vaults,
		Sessions:   sessions,
		Notifier:   notes,
		Logger:     zap.NewNop(),
		Now:        clk.Now,
	})
	return &env{t: t, ctx: ctx, db: gdb, uc: uc, clock: clk, notes: notes, sessions: sessions}
}

func (e *env) seed(userID string, wallet, bank int64, score int) {
	e.t.Helper()
	i := identity.New(userID)
	require.NoError(e.t, e.db.Create(i).Error)
	i.Wallet, i.Bank, i.CreditScore = wallet, bank, score
	require.NoError(e.t, e.db.Save(i).Error)
}

func (e *env) who(userID string) *identity.Identity {
	e.t.Helper()
	var i identity.Identity
	require.NoError(e.t, e.db.Where("user_id = ?", userID).First(&i).Error)
	return &i
}

func (e *env) loan(loanID string) *loan.Loan {
	e.t.Helper()
	var l loan.Loan
	require.NoError(e.t, e.db.Where("loan_id = ?", loanID).First(&l).Error)
	return &l
}

func (e *env) activeLoans(borrowerID string) int64 {
	e.t.Helper()
	var n int64
	require.NoError(e.t, e.db.Model(&loan.Loan{}).
		Where("borrower_id = ? AND active = ?", borrowerID, true).Count(&n).Error)
	return n
}

func (e *env) history(loanID string) []history.Entry {
	e.t.Helper()
	var out []history.Entry
	require.NoError(e.t, e.db.Where("loan_id = ?", loanID).Order("id").Find(&out).Error)
	return out
}

func (e *env) ledger(loanID string) []ledger.Entry {
	e.t.Helper()
	var out []ledger.Entry
	require.NoError(e.t, e.db.Where("loan_id = ?", loanID).Order("id").Find(&out).Error)
	return out
}

func (e *env) vault() int64 {
	e.t.Helper()
	var v treasury.Vault
	require.NoError(e.t, e.db.Where("name = ?", treasury.CentralVault).First(&v).Error)
	return v.Balance
}

// offer runs a negotiation up to pending_acceptance.
func (e *env) offer(borrowerID, lenderID string, amount int64, rate, days, installments int) *SessionDTO {
	e.t.Helper()
	sess, err := e.uc.InitiateRequest(e.ctx, InitiateInput{BorrowerID: borrowerID, LenderID: lenderID, Amount: amount})
	require.NoError(e.t, err)
	terms, err := e.uc.DefineTerms(e.ctx, TermsInput{
		ActorID: lenderID, RequestID: sess.RequestID,
		InterestRate: rate, TermDays: days, Installments: installments,
	})
	require.NoError(e.t, err)
	return terms
}

// fund runs a negotiation through acceptance.
func (e *env) fund(borrowerID, lenderID string, amount int64, rate, days, installments int) *LoanDTO {
	e.t.Helper()
	terms := e.offer(borrowerID, lenderID, amount, rate, days, installments)
	l, err := e.uc.AcceptTerms(e.ctx, borrowerID, terms.RequestID)
	require.NoError(e.t, err)
	return l
}
