package checkout

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/angelmondragon/vendorcart-backend/internal/pricing"
	"github.com/angelmondragon/vendorcart-backend/internal/topup"
	"github.com/angelmondragon/vendorcart-backend/pkg/enums"
	pkgerrors "github.com/angelmondragon/vendorcart-backend/pkg/errors"
	"github.com/angelmondragon/vendorcart-backend/pkg/logger"
	"github.com/angelmondragon/vendorcart-backend/pkg/metrics"
)

const (
	defaultMaxNoteLength = 500
	maxUpdateAttempts    = 3
)

// errPreviewStale aborts a session write whose preview was fetched for an older revision.
var errPreviewStale = errors.New("preview fetched for an outdated session revision")

// Service orchestrates a buyer's checkout session around the pricing engine.
type Service interface {
	Start(ctx context.Context, buyerID string) (*SessionView, error)
	Get(ctx context.Context, buyerID, sessionID string) (*SessionView, error)
	Refresh(ctx context.Context, buyerID, sessionID string) (*SessionView, error)
	VoucherOptions(ctx context.Context, buyerID, sessionID, storeID string) ([]pricing.VoucherOption, error)
	SelectVoucher(ctx context.Context, buyerID, sessionID, storeID, voucherID string) (*SessionView, error)
	ClearVoucher(ctx context.Context, buyerID, sessionID, storeID string) (*SessionView, error)
	SetNote(ctx context.Context, buyerID, sessionID, storeID, note string) (*SessionView, error)
	Submit(ctx context.Context, buyerID, sessionID string, input SubmitInput) (*SubmitResult, error)
	Abandon(ctx context.Context, buyerID, sessionID string) error
}

// Config holds the tunables of the checkout service.
type Config struct {
	MaxNoteLength int
}

type service struct {
	store   SessionStore
	orders  orderService
	topups  topUpCreator
	engine  *pricing.Engine
	metrics metricsRecorder
	logg    *logger.Logger
	cfg     Config
	now     func() time.Time
}

// NewService builds the checkout service.
func NewService(
	store SessionStore,
	orders orderService,
	topups topUpCreator,
	engine *pricing.Engine,
	recorder metricsRecorder,
	logg *logger.Logger,
	cfg Config,
) (Service, error) {
	if store == nil {
		return nil, fmt.Errorf("session store required")
	}
	if orders == nil {
		return nil, fmt.Errorf("order service required")
	}
	if topups == nil {
		return nil, fmt.Errorf("top-up service required")
	}
	if engine == nil {
		return nil, fmt.Errorf("pricing engine required")
	}
	if recorder == nil {
		recorder = noopMetrics{}
	}
	if cfg.MaxNoteLength <= 0 {
		cfg.MaxNoteLength = defaultMaxNoteLength
	}
	return &service{
		store:   store,
		orders:  orders,
		topups:  topups,
		engine:  engine,
		metrics: recorder,
		logg:    logg,
		cfg:     cfg,
		now:     time.Now,
	}, nil
}

func (s *service) Start(ctx context.Context, buyerID string) (*SessionView, error) {
	if err := requireBuyer(buyerID); err != nil {
		return nil, err
	}
	orders, err := s.fetchPreview(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	sess := &Session{
		ID:        uuid.NewString(),
		BuyerID:   buyerID,
		Orders:    orders,
		Selection: pricing.NewSelection(),
	}
	if err := s.store.Create(ctx, sess); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create checkout session")
	}
	s.info(s.withSession(ctx, buyerID, sess.ID), "checkout.session_started")
	return s.view(sess, nil), nil
}

func (s *service) Get(ctx context.Context, buyerID, sessionID string) (*SessionView, error) {
	sess, err := s.load(ctx, buyerID, sessionID)
	if err != nil {
		return nil, err
	}
	return s.view(sess, nil), nil
}

// Refresh refetches the preview and swaps it in only if the session did not
// change while the fetch was in flight. Selections that no longer apply are cleared.
func (s *service) Refresh(ctx context.Context, buyerID, sessionID string) (*SessionView, error) {
	sess, err := s.load(ctx, buyerID, sessionID)
	if err != nil {
		return nil, err
	}
	fetchedFor := sess.Revision

	orders, err := s.fetchPreview(ctx, buyerID)
	if err != nil {
		return nil, err
	}

	var cleared []string
	updated, err := s.store.Update(ctx, buyerID, sessionID, func(cur *Session) error {
		if cur.Revision != fetchedFor {
			return errPreviewStale
		}
		cur.Orders = orders
		cleared = cur.Selection.ClearStale(orders)
		return nil
	})
	if errors.Is(err, errPreviewStale) || errors.Is(err, ErrSessionConflict) {
		s.metrics.IncPreview(metrics.PreviewDiscarded)
		s.warn(s.withSession(ctx, buyerID, sessionID), "checkout.preview_discarded")
		return nil, pkgerrors.New(pkgerrors.CodeConflict, "checkout changed while refreshing, retry")
	}
	if err != nil {
		return nil, s.storeError(err, "refresh checkout session")
	}
	s.metrics.AddStale("refresh", len(cleared))
	return s.view(updated, cleared), nil
}

func (s *service) VoucherOptions(ctx context.Context, buyerID, sessionID, storeID string) ([]pricing.VoucherOption, error) {
	sess, err := s.load(ctx, buyerID, sessionID)
	if err != nil {
		return nil, err
	}
	o, ok := sess.order(storeID)
	if !ok {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "store not part of this checkout")
	}
	return s.engine.VoucherOptions(o, sess.Selection, s.now()), nil
}

// SelectVoucher stores the voucher for a store once the eligibility check passes.
func (s *service) SelectVoucher(ctx context.Context, buyerID, sessionID, storeID, voucherID string) (*SessionView, error) {
	if strings.TrimSpace(voucherID) == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "voucher id is required")
	}
	updated, err := s.update(ctx, buyerID, sessionID, func(sess *Session) error {
		o, ok := sess.order(storeID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not part of this checkout")
		}
		v, ok := o.FindVoucher(voucherID)
		if !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "voucher not available for this store")
		}
		if ok, reason := pricing.Eligibility(v, o); !ok {
			return pkgerrors.New(pkgerrors.CodeVoucherIneligible, "voucher cannot be applied to this order").WithDetails(map[string]any{
				"store_id":   storeID,
				"voucher_id": voucherID,
				"reason":     string(reason),
			})
		}
		sess.Selection.Select(storeID, v)
		return nil
	})
	if err != nil {
		if pkgerrors.IsCode(err, pkgerrors.CodeVoucherIneligible) {
			s.metrics.IncSelection(metrics.SelectionIneligible)
		}
		return nil, err
	}
	s.metrics.IncSelection(metrics.SelectionApplied)
	return s.view(updated, nil), nil
}

func (s *service) ClearVoucher(ctx context.Context, buyerID, sessionID, storeID string) (*SessionView, error) {
	updated, err := s.update(ctx, buyerID, sessionID, func(sess *Session) error {
		if _, ok := sess.order(storeID); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not part of this checkout")
		}
		sess.Selection.Clear(storeID)
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.IncSelection(metrics.SelectionCleared)
	return s.view(updated, nil), nil
}

// SetNote stores a trimmed note for the store; an empty note removes it.
func (s *service) SetNote(ctx context.Context, buyerID, sessionID, storeID, note string) (*SessionView, error) {
	trimmed := strings.TrimSpace(note)
	if utf8.RuneCountInString(trimmed) > s.cfg.MaxNoteLength {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "note is too long").WithDetails(map[string]any{
			"max_length": s.cfg.MaxNoteLength,
		})
	}
	updated, err := s.update(ctx, buyerID, sessionID, func(sess *Session) error {
		if _, ok := sess.order(storeID); !ok {
			return pkgerrors.New(pkgerrors.CodeNotFound, "store not part of this checkout")
		}
		sess.Selection.SetNote(storeID, trimmed)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.view(updated, nil), nil
}

// Submit prices the session and hands the submission to the order service.
// A WALLET payment short of funds is parked as a pending top-up instead.
func (s *service) Submit(ctx context.Context, buyerID, sessionID string, input SubmitInput) (*SubmitResult, error) {
	in, err := parseSubmitInput(input)
	if err != nil {
		return nil, err
	}
	ctx = s.withSession(ctx, buyerID, sessionID)

	sess, err := s.load(ctx, buyerID, sessionID)
	if err != nil {
		return nil, err
	}
	totals := s.engine.AggregateCheckout(sess.Orders, sess.Selection, in)
	if len(totals.StaleStores()) > 0 {
		return nil, s.clearStaleBeforeSubmit(ctx, buyerID, sessionID, in)
	}

	if in.PaymentMethod.SettlesFromWallet() {
		balance, err := s.orders.GetWalletBalance(ctx, buyerID)
		if err != nil {
			s.metrics.IncSubmission(metrics.SubmissionFailed)
			return nil, err
		}
		plan := pricing.PlanPayment(in.PaymentMethod, totals.GrandTotal, balance.Balance)
		if plan.TopUpRequired {
			return nil, s.deferForTopUp(ctx, sess, totals, plan)
		}
	}

	result, err := s.orders.CreateOrders(ctx, buyerID, totals.Submission)
	if err != nil {
		if typed := pkgerrors.As(err); typed != nil && typed.Code() == pkgerrors.CodeSubmissionRejected {
			s.metrics.IncSubmission(metrics.SubmissionRejected)
			s.warn(ctx, "checkout.submission_rejected: "+typed.Message())
			return nil, err
		}
		s.metrics.IncSubmission(metrics.SubmissionFailed)
		return nil, err
	}

	s.metrics.IncSubmission(metrics.SubmissionCreated)
	if err := s.store.Delete(ctx, buyerID, sessionID); err != nil {
		s.logError(ctx, "checkout.session_delete_failed", err)
	}
	s.info(ctx, "checkout.submitted")
	return &SubmitResult{OrderIDs: result.OrderIDs, Totals: totals}, nil
}

func (s *service) Abandon(ctx context.Context, buyerID, sessionID string) error {
	if _, err := s.load(ctx, buyerID, sessionID); err != nil {
		return err
	}
	if err := s.store.Delete(ctx, buyerID, sessionID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete checkout session")
	}
	s.info(s.withSession(ctx, buyerID, sessionID), "checkout.session_abandoned")
	return nil
}

func (s *service) clearStaleBeforeSubmit(ctx context.Context, buyerID, sessionID string, in pricing.SubmissionInput) error {
	var cleared []string
	updated, err := s.update(ctx, buyerID, sessionID, func(sess *Session) error {
		cleared = sess.Selection.ClearStale(sess.Orders)
		return nil
	})
	if err != nil {
		return err
	}
	s.metrics.AddStale("submit", len(cleared))
	totals := s.engine.AggregateCheckout(updated.Orders, updated.Selection, in)
	return pkgerrors.New(pkgerrors.CodeStaleSelection, "selected vouchers no longer apply").WithDetails(map[string]any{
		"cleared_stores": cleared,
		"grand_total":    totals.GrandTotal.String(),
		"revision":       updated.Revision,
	})
}

func (s *service) deferForTopUp(ctx context.Context, sess *Session, totals pricing.CheckoutTotals, plan pricing.PaymentPlan) error {
	pending, err := s.topups.Create(ctx, topup.CreateInput{
		BuyerID:    sess.BuyerID,
		SessionID:  sess.ID,
		Currency:   totals.Currency,
		Plan:       plan,
		Submission: totals.Submission,
	})
	if err != nil {
		s.metrics.IncSubmission(metrics.SubmissionFailed)
		return err
	}
	s.metrics.IncSubmission(metrics.SubmissionTopUpRequired)
	s.info(ctx, "checkout.topup_required")
	return pkgerrors.New(pkgerrors.CodeInsufficientWallet, "wallet balance is insufficient").WithDetails(map[string]any{
		"shortfall":      plan.Shortfall.String(),
		"grand_total":    plan.GrandTotal.String(),
		"wallet_balance": plan.WalletBalance.String(),
		"top_up_id":      pending.ID.String(),
	})
}

// fetchPreview loads and sanitizes the vendor orders. The result is dropped if
// the caller went away while the request was in flight.
func (s *service) fetchPreview(ctx context.Context, buyerID string) ([]pricing.VendorOrder, error) {
	preview, err := s.orders.FetchPreview(ctx, buyerID)
	if err != nil {
		return nil, err
	}
	if ctxErr := ctx.Err(); ctxErr != nil {
		s.metrics.IncPreview(metrics.PreviewDiscarded)
		return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, ctxErr, "checkout preview discarded")
	}
	s.metrics.IncPreview(metrics.PreviewFetched)

	orders := make([]pricing.VendorOrder, 0, len(preview.Orders))
	for _, o := range preview.Orders {
		if err := o.Validate(); err != nil {
			return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "order service returned an invalid preview")
		}
		clean, voucherErr := pricing.SanitizeVouchers(o)
		if voucherErr != nil && s.logg != nil {
			s.logg.Warn(s.logg.WithStoreID(ctx, o.StoreID), "checkout.invalid_vouchers_dropped: "+voucherErr.Error())
		}
		orders = append(orders, clean)
	}
	return orders, nil
}

// update retries fn when a concurrent write to the same session wins the race.
func (s *service) update(ctx context.Context, buyerID, sessionID string, fn func(*Session) error) (*Session, error) {
	if err := requireBuyer(buyerID); err != nil {
		return nil, err
	}
	var err error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		var updated *Session
		updated, err = s.store.Update(ctx, buyerID, sessionID, fn)
		if err == nil {
			return updated, nil
		}
		if !errors.Is(err, ErrSessionConflict) {
			break
		}
	}
	return nil, s.storeError(err, "update checkout session")
}

func (s *service) load(ctx context.Context, buyerID, sessionID string) (*Session, error) {
	if err := requireBuyer(buyerID); err != nil {
		return nil, err
	}
	sess, err := s.store.Get(ctx, buyerID, sessionID)
	if err != nil {
		return nil, s.storeError(err, "load checkout session")
	}
	return sess, nil
}

func (s *service) storeError(err error, message string) error {
	if pkgerrors.As(err) != nil {
		return err
	}
	switch {
	case errors.Is(err, ErrSessionNotFound):
		return pkgerrors.New(pkgerrors.CodeNotFound, "checkout session not found")
	case errors.Is(err, ErrSessionConflict):
		return pkgerrors.Wrap(pkgerrors.CodeConflict, err, "checkout session busy, retry")
	default:
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, message)
	}
}

func (s *service) view(sess *Session, cleared []string) *SessionView {
	return &SessionView{
		ID:            sess.ID,
		Revision:      sess.Revision,
		ExpiresAt:     sess.ExpiresAt,
		Totals:        s.engine.AggregateCheckout(sess.Orders, sess.Selection, pricing.SubmissionInput{}),
		ClearedStores: cleared,
	}
}

func parseSubmitInput(input SubmitInput) (pricing.SubmissionInput, error) {
	address := strings.TrimSpace(input.AddressID)
	if address == "" {
		return pricing.SubmissionInput{}, pkgerrors.New(pkgerrors.CodeMissingAddress, "delivery address required")
	}
	method, err := enums.ParsePaymentMethod(input.PaymentMethod)
	if err != nil {
		return pricing.SubmissionInput{}, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment method")
	}
	shipping := strings.TrimSpace(input.ShippingMethod)
	if shipping == "" {
		return pricing.SubmissionInput{}, pkgerrors.New(pkgerrors.CodeValidation, "shipping method is required")
	}
	return pricing.SubmissionInput{
		AddressID:      address,
		ShippingMethod: shipping,
		PaymentMethod:  method,
	}, nil
}

func requireBuyer(buyerID string) error {
	if strings.TrimSpace(buyerID) == "" {
		return pkgerrors.New(pkgerrors.CodeUnauthorized, "buyer context required")
	}
	return nil
}

func (s *service) withSession(ctx context.Context, buyerID, sessionID string) context.Context {
	if s.logg == nil {
		return ctx
	}
	return s.logg.WithSessionID(s.logg.WithBuyerID(ctx, buyerID), sessionID)
}

func (s *service) info(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Info(ctx, msg)
	}
}

func (s *service) warn(ctx context.Context, msg string) {
	if s.logg != nil {
		s.logg.Warn(ctx, msg)
	}
}

func (s *service) logError(ctx context.Context, msg string, err error) {
	if s.logg != nil {
		s.logg.Error(ctx, msg, err)
	}
}
