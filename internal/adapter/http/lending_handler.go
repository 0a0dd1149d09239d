package http

import (
	"net/http"
	"strings"

	"lending-engine/internal/usecase/lending"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type LendingHandler struct {
	uc  *lending.Usecase
	log *zap.Logger
}

func NewLendingHandler(uc *lending.Usecase, log *zap.Logger) *LendingHandler {
	if log == nil {
		log = zap.NewNop()
	}
	return &LendingHandler{uc: uc, log: log}
}

// Register mounts the lending routes on g.
func (h *LendingHandler) Register(g *echo.Group) {
	g.POST("/requests", h.InitiateRequest)
	g.POST("/requests/:request_id/terms", h.DefineTerms)
	g.POST("/requests/:request_id/accept", h.AcceptTerms)
	g.POST("/requests/:request_id/reject", h.RejectTerms)

	g.POST("/loans/pay/full", h.PayFull)
	g.POST("/loans/pay/installment", h.PayInstallment)
	g.POST("/loans/pay/partial", h.PayPartial)
	g.POST("/loans/:borrower_id/forgive", h.Forgive)
	g.POST("/loans/:borrower_id/remind", h.Remind)
	g.POST("/loans/:borrower_id/default", h.RecordDefault)

	g.GET("/me/status", h.QueryStatus)
	g.GET("/me/credit-limit", h.CreditLimit)

	g.GET("/treasury", h.TreasuryBalance)
	g.POST("/treasury/loans", h.RequestTreasuryLoan)
}

type initiateReq struct {
	LenderID string `json:"lender_id" validate:"required,userid"`
	Amount   int64  `json:"amount"    validate:"required,gt=0,lte=1000000000000"`
}

type termsReq struct {
	InterestRate *int `json:"interest_rate" validate:"required,gte=0,lte=100"`
	TermDays     int  `json:"term_days"     validate:"required,gte=1,lte=7"`
	Installments *int `json:"installments"  validate:"required,gte=0,lte=8"`
}

type amountReq struct {
	Amount int64 `json:"amount" validate:"required,gt=0,lte=1000000000000"`
}

func (h *LendingHandler) fail(c echo.Context, err error) error {
	code := StatusFor(err)
	if code == http.StatusInternalServerError {
		h.log.Error("lending request failed",
			zap.String("route", c.Path()), zap.Error(err))
		return c.JSON(code, Envelope{Message: "internal error"})
	}
	return c.JSON(code, Envelope{Message: err.Error()})
}

// bind decodes and validates the body into req. It writes the error
// response itself and reports false when the handler must stop.
func bind(c echo.Context, req any) (bool, error) {
	if err := c.Bind(req); err != nil {
		return false, badRequest(c, "invalid body")
	}
	if err := c.Validate(req); err != nil {
		return false, invalid(c, err)
	}
	return true, nil
}

func (h *LendingHandler) InitiateRequest(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	var req initiateReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.InitiateRequest(c.Request().Context(), lending.InitiateInput{
		BorrowerID: actor, LenderID: req.LenderID, Amount: req.Amount,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusCreated, dto)
}

func (h *LendingHandler) DefineTerms(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	requestID := strings.TrimSpace(c.Param("request_id"))
	if requestID == "" {
		return badRequest(c, "missing request_id path param")
	}
	var req termsReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.DefineTerms(c.Request().Context(), lending.TermsInput{
		ActorID:      actor,
		RequestID:    requestID,
		InterestRate: *req.InterestRate,
		TermDays:     req.TermDays,
		Installments: *req.Installments,
	})
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusOK, dto)
}

func (h *LendingHandler) AcceptTerms(c echo.Context) error {
	return h.onRequest(c, http.StatusCreated, func(actor, requestID string) (outcome, error) {
		return h.uc.AcceptTerms(c.Request().Context(), actor, requestID)
	})
}

func (h *LendingHandler) RejectTerms(c echo.Context) error {
	return h.onRequest(c, http.StatusOK, func(actor, requestID string) (outcome, error) {
		return h.uc.RejectTerms(c.Request().Context(), actor, requestID)
	})
}

func (h *LendingHandler) onRequest(c echo.Context, code int, fn func(actor, requestID string) (outcome, error)) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	requestID := strings.TrimSpace(c.Param("request_id"))
	if requestID == "" {
		return badRequest(c, "missing request_id path param")
	}
	dto, err := fn(actor, requestID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, code, dto)
}

func (h *LendingHandler) PayFull(c echo.Context) error {
	return h.asActor(c, func(actor string) (outcome, error) {
		return h.uc.PayFull(c.Request().Context(), actor)
	})
}

func (h *LendingHandler) PayInstallment(c echo.Context) error {
	return h.asActor(c, func(actor string) (outcome, error) {
		return h.uc.PayInstallment(c.Request().Context(), actor)
	})
}

func (h *LendingHandler) PayPartial(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	var req amountReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.PayPartial(c.Request().Context(), actor, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusOK, dto)
}

func (h *LendingHandler) QueryStatus(c echo.Context) error {
	return h.asActor(c, func(actor string) (outcome, error) {
		return h.uc.QueryStatus(c.Request().Context(), actor)
	})
}

func (h *LendingHandler) CreditLimit(c echo.Context) error {
	return h.asActor(c, func(actor string) (outcome, error) {
		return h.uc.CreditLimit(c.Request().Context(), actor)
	})
}

func (h *LendingHandler) RequestTreasuryLoan(c echo.Context) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	var req amountReq
	if ok, err := bind(c, &req); !ok {
		return err
	}
	dto, err := h.uc.RequestTreasuryLoan(c.Request().Context(), actor, req.Amount)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusCreated, dto)
}

func (h *LendingHandler) asActor(c echo.Context, fn func(actor string) (outcome, error)) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	dto, err := fn(actor)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusOK, dto)
}

func (h *LendingHandler) Forgive(c echo.Context) error {
	return h.onBorrower(c, func(actor, borrowerID string) (outcome, error) {
		return h.uc.Forgive(c.Request().Context(), actor, borrowerID)
	})
}

func (h *LendingHandler) Remind(c echo.Context) error {
	return h.onBorrower(c, func(actor, borrowerID string) (outcome, error) {
		return h.uc.Remind(c.Request().Context(), actor, borrowerID)
	})
}

// RecordDefault is called by the external scheduler; the actor is only
// recorded by the idempotency layer.
func (h *LendingHandler) RecordDefault(c echo.Context) error {
	return h.onBorrower(c, func(_, borrowerID string) (outcome, error) {
		return h.uc.RecordDefault(c.Request().Context(), borrowerID)
	})
}

func (h *LendingHandler) onBorrower(c echo.Context, fn func(actor, borrowerID string) (outcome, error)) error {
	actor, ok := actorID(c)
	if !ok {
		return badRequest(c, "missing or invalid actor")
	}
	borrowerID, ok := userParam(c, "borrower_id")
	if !ok {
		return badRequest(c, "invalid borrower_id path param")
	}
	dto, err := fn(actor, borrowerID)
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusOK, dto)
}

func (h *LendingHandler) TreasuryBalance(c echo.Context) error {
	dto, err := h.uc.TreasuryBalance(c.Request().Context())
	if err != nil {
		return h.fail(c, err)
	}
	return respond(c, http.StatusOK, dto)
}
