package loan

import "errors"

// Error kinds. Every *Error unwraps to exactly one of these.
var (
	ErrValidation        = errors.New("validation error")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrStateConflict     = errors.New("state conflict")
	ErrDeliveryFailure   = errors.New("delivery failure")
	ErrNotFound          = errors.New("not found")
	ErrForbidden         = errors.New("forbidden")
)

// Error carries a user-facing reason next to its kind.
type Error struct {
	Kind   error
	Reason string
}

func (e *Error) Error() string { return e.Reason }
func (e *Error) Unwrap() error { return e.Kind }

func newErr(kind error, reason string) *Error { return &Error{Kind: kind, Reason: reason} }

func Validation(reason string) *Error        { return newErr(ErrValidation, reason) }
func InsufficientFunds(reason string) *Error { return newErr(ErrInsufficientFunds, reason) }
func StateConflict(reason string) *Error     { return newErr(ErrStateConflict, reason) }
func NotFound(reason string) *Error          { return newErr(ErrNotFound, reason) }
func Forbidden(reason string) *Error         { return newErr(ErrForbidden, reason) }

func DeliveryFailure(userID string) *Error {
	return newErr(ErrDeliveryFailure, "could not deliver the message to "+userID)
}

var (
	ErrSelfLoan          = Validation("you cannot borrow from yourself")
	ErrInvalidAmount     = Validation("amount must be greater than zero")
	ErrAmountTooLarge    = Validation("amount must not exceed 1000000000000 coins")
	ErrLenderUnknown     = Validation("the lender has no financial account")
	ErrScoreTooLow       = Validation("your credit score is too low to request a loan")
	ErrInterestRange     = Validation("interest rate must be between 0 and 100")
	ErrTermRange         = Validation("term must be between 1 and 7 days")
	ErrInstallmentsRange = Validation("installments must be between 0 and 8")
	ErrNoInstallmentPlan = Validation("this loan has no installment plan")
	ErrNotForgivable     = Validation("treasury loans cannot be forgiven")
	ErrOverLimit         = Validation("amount exceeds your credit limit")

	ErrActiveLoan       = StateConflict("you already have an active loan")
	ErrOverdueLoan      = StateConflict("you have an overdue loan")
	ErrSessionExists    = StateConflict("a loan request to this lender is already pending")
	ErrSessionGone      = StateConflict("this loan request no longer exists")
	ErrSessionState     = StateConflict("this loan request is not in the right stage")
	ErrAcceptInProgress = StateConflict("this loan request is already being processed")
	ErrNoActiveLoan     = StateConflict("there is no active loan")
	ErrNotOverdue       = StateConflict("the loan is not overdue")
	ErrBorrowerBusy     = StateConflict("another loan for this borrower is being processed")

	ErrLenderFunds   = InsufficientFunds("the lender does not have enough funds")
	ErrPayerFunds    = InsufficientFunds("you do not have enough funds for this payment")
	ErrTreasuryFunds = InsufficientFunds("the treasury cannot cover this loan")

	ErrNotLender   = Forbidden("only the lender can do this")
	ErrNotBorrower = Forbidden("only the borrower can do this")

	ErrIdentityNotFound = NotFound("account not found")
)
