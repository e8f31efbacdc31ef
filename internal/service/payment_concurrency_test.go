package service

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/repository"
)

// interleavingGateway 在下单请求发出前执行一次回调，模拟并发确认
type interleavingGateway struct {
	PaymentGateway
	beforeCreateOrder func()
}

func (g *interleavingGateway) CreateOrder(ctx context.Context, input razorpay.CreateOrderInput) (*razorpay.Order, error) {
	if hook := g.beforeCreateOrder; hook != nil {
		g.beforeCreateOrder = nil
		hook()
	}
	return g.PaymentGateway.CreateOrder(ctx, input)
}

// interleavingStrategy 在写入失败状态前执行一次回调
type interleavingStrategy struct {
	PurchasableStrategy
	beforeFailed func()
}

func (s *interleavingStrategy) ApplyFailed(p *Purchasable) error {
	if hook := s.beforeFailed; hook != nil {
		s.beforeFailed = nil
		hook()
	}
	return s.PurchasableStrategy.ApplyFailed(p)
}

// renewingUserRepo 在降级写入前执行一次回调
type renewingUserRepo struct {
	repository.UserRepository
	beforeDowngrade func()
}

func (r *renewingUserRepo) DowngradeExpiredTier(userID uint, now time.Time) (bool, error) {
	if hook := r.beforeDowngrade; hook != nil {
		r.beforeDowngrade = nil
		hook()
	}
	return r.UserRepository.DowngradeExpiredTier(userID, now)
}

type failingCartRepo struct {
	repository.CartRepository
}

func (failingCartRepo) ClearByUser(uint) error {
	return errors.New("cart store offline")
}

func TestInitiateDoesNotOverwriteConcurrentConfirm(t *testing.T) {
	env := setupPaymentServiceTest(t)
	patient := env.createUser(t, "race_initiate@example.com")
	doctor, _ := env.createDoctor(t, "race_initiate_doc@example.com", 1200)
	appointment := env.createAppointment(t, patient.ID, doctor.ID)
	first, err := env.paymentSvc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	gateway := &interleavingGateway{PaymentGateway: env.client}
	gateway.beforeCreateOrder = func() {
		if _, err := env.paymentSvc.Confirm(ConfirmPaymentInput{
			UserID:          patient.ID,
			Kind:            constants.PurchaseKindAppointment,
			PurchasableID:   appointment.ID,
			RemoteOrderID:   first.RemoteOrderID,
			RemotePaymentID: "pay_C1",
			Signature:       sign(first.RemoteOrderID, "pay_C1"),
		}); err != nil {
			t.Fatalf("concurrent confirm failed: %v", err)
		}
	}
	racing := NewPaymentService(env.registry, gateway, env.eventRepo, nil)
	if _, err := racing.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID}); !errors.Is(err, ErrAlreadyPaid) {
		t.Fatalf("initiate racing a confirm should be already paid, got %v", err)
	}

	stored := env.reloadAppointment(t, appointment.ID)
	if !stored.Payment.IsPaid() || stored.Payment.RemotePaymentID != "pay_C1" || stored.Payment.RemoteOrderID != first.RemoteOrderID {
		t.Fatalf("paid envelope must survive a late initiate: %+v", stored.Payment)
	}
	if got := env.countEvents(t, constants.PurchaseKindAppointment, appointment.ID, constants.PaymentEventInitiated); got != 1 {
		t.Fatalf("rejected initiate must not be audited, got %d", got)
	}
}

func TestFailDoesNotOverwriteConcurrentConfirm(t *testing.T) {
	env := setupPaymentServiceTest(t)
	patient := env.createUser(t, "race_fail@example.com")
	doctor, _ := env.createDoctor(t, "race_fail_doc@example.com", 800)
	appointment := env.createAppointment(t, patient.ID, doctor.ID)
	result, err := env.paymentSvc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	base, err := env.registry.Resolve(constants.PurchaseKindAppointment)
	if err != nil {
		t.Fatalf("resolve strategy failed: %v", err)
	}
	strategy := &interleavingStrategy{PurchasableStrategy: base}
	strategy.beforeFailed = func() {
		if _, err := env.paymentSvc.Confirm(ConfirmPaymentInput{
			UserID:          patient.ID,
			Kind:            constants.PurchaseKindAppointment,
			PurchasableID:   appointment.ID,
			RemoteOrderID:   result.RemoteOrderID,
			RemotePaymentID: "pay_C2",
			Signature:       sign(result.RemoteOrderID, "pay_C2"),
		}); err != nil {
			t.Fatalf("concurrent confirm failed: %v", err)
		}
	}
	svc := NewPaymentService(NewPurchasableRegistry(strategy), env.client, env.eventRepo, nil)

	purchasable, err := svc.Fail(FailPaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID, Reason: "closed checkout"})
	if err != nil {
		t.Fatalf("fail after concurrent confirm should be a no-op, got %v", err)
	}
	if !purchasable.Payment.IsPaid() {
		t.Fatalf("fail should report the paid state, got %s", purchasable.Payment.PaymentStatus)
	}
	stored := env.reloadAppointment(t, appointment.ID)
	if !stored.Payment.IsPaid() || stored.Payment.RemotePaymentID != "pay_C2" {
		t.Fatalf("paid envelope must survive a late fail: %+v", stored.Payment)
	}
	if got := env.countEvents(t, constants.PurchaseKindAppointment, appointment.ID, constants.PaymentEventFailed); got != 0 {
		t.Fatalf("ignored fail should not be recorded, got %d", got)
	}
}

func TestTierExpiryKeepsConcurrentRenewal(t *testing.T) {
	env := setupPaymentServiceTest(t)
	user := env.createUser(t, "race_renewal@example.com")
	expiredAt := time.Now().Add(-time.Hour)
	user.AccountTier = constants.AccountTierPro
	user.TierExpiresAt = &expiredAt
	user.Upgrade = models.PaymentEnvelope{
		RemoteOrderID:   "order_previous",
		RemotePaymentID: "pay_previous",
		PaymentStatus:   constants.PaymentStatusPaid,
		RemoteAmount:    99900,
		Currency:        "INR",
	}
	if err := env.userRepo.Update(user); err != nil {
		t.Fatalf("promote user failed: %v", err)
	}

	renewal, err := env.paymentSvc.Initiate(InitiatePaymentInput{UserID: user.ID, Kind: constants.PurchaseKindTierUpgrade, PurchasableID: user.ID})
	if err != nil {
		t.Fatalf("renewal initiate failed: %v", err)
	}
	repo := &renewingUserRepo{UserRepository: env.userRepo}
	repo.beforeDowngrade = func() {
		if _, err := env.paymentSvc.Confirm(ConfirmPaymentInput{
			UserID:          user.ID,
			Kind:            constants.PurchaseKindTierUpgrade,
			PurchasableID:   user.ID,
			RemoteOrderID:   renewal.RemoteOrderID,
			RemotePaymentID: "pay_renewal",
			Signature:       sign(renewal.RemoteOrderID, "pay_renewal"),
		}); err != nil {
			t.Fatalf("renewal confirm failed: %v", err)
		}
	}
	now := time.Now()
	expired, err := NewTierService(repo).ExpireIfDue(user.ID, now)
	if err != nil {
		t.Fatalf("expire failed: %v", err)
	}
	if expired {
		t.Fatalf("renewed user must not be downgraded")
	}

	stored, err := env.userRepo.GetByID(user.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload user failed: %v", err)
	}
	if stored.AccountTier != constants.AccountTierPro || stored.TierExpiresAt == nil || !stored.TierExpiresAt.After(now) {
		t.Fatalf("renewal should keep pro tier: tier=%s expires=%v", stored.AccountTier, stored.TierExpiresAt)
	}
	if !stored.Upgrade.IsPaid() || stored.Upgrade.RemotePaymentID != "pay_renewal" {
		t.Fatalf("renewal payment should persist: %+v", stored.Upgrade)
	}
}

func TestOrderConfirmSucceedsWhenCartClearFails(t *testing.T) {
	env := setupPaymentServiceTest(t)
	patient := env.createUser(t, "cart_offline@example.com")
	balm := env.createProduct(t, "Neem Balm", 250)
	if err := env.cartSvc.SetItem(SetCartItemInput{UserID: patient.ID, ProductID: balm.ID, Quantity: 2}); err != nil {
		t.Fatalf("add balm failed: %v", err)
	}
	order, err := env.checkoutSvc.Checkout(CheckoutInput{UserID: patient.ID, Address: "4 Temple Street, Mysuru", Phone: "+91-9111111111"})
	if err != nil {
		t.Fatalf("checkout failed: %v", err)
	}
	if err := env.cartSvc.SetItem(SetCartItemInput{UserID: patient.ID, ProductID: balm.ID, Quantity: 1}); err != nil {
		t.Fatalf("refill cart failed: %v", err)
	}

	registry := NewPurchasableRegistry(NewOrderPurchasable(env.orderRepo, failingCartRepo{CartRepository: env.cartRepo}))
	svc := NewPaymentService(registry, env.client, env.eventRepo, nil)
	result, err := svc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindProductOrder, PurchasableID: order.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}
	purchasable, err := svc.Confirm(ConfirmPaymentInput{
		UserID:          patient.ID,
		Kind:            constants.PurchaseKindProductOrder,
		PurchasableID:   order.ID,
		RemoteOrderID:   result.RemoteOrderID,
		RemotePaymentID: "pay_K1",
		Signature:       sign(result.RemoteOrderID, "pay_K1"),
	})
	if err != nil {
		t.Fatalf("cart clear failure must not fail confirm, got %v", err)
	}
	if !purchasable.Payment.IsPaid() {
		t.Fatalf("confirm should report paid")
	}
	stored, err := env.orderRepo.GetByID(order.ID)
	if err != nil || stored == nil || !stored.Payment.IsPaid() {
		t.Fatalf("order should be paid: %v", err)
	}
	if got := env.countEvents(t, constants.PurchaseKindProductOrder, order.ID, constants.PaymentEventPaid); got != 1 {
		t.Fatalf("expected one paid event, got %d", got)
	}
	cart, err := env.cartSvc.List(patient.ID)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(cart) != 1 {
		t.Fatalf("cart should be left as is when clearing fails, got %d items", len(cart))
	}
}

func TestInitiateGatewayTimeoutLeavesRecordUntouched(t *testing.T) {
	env := setupPaymentServiceTest(t)
	patient := env.createUser(t, "slow_gateway@example.com")
	doctor, _ := env.createDoctor(t, "slow_gateway_doc@example.com", 900)
	appointment := env.createAppointment(t, patient.ID, doctor.ID)
	first, err := env.paymentSvc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID})
	if err != nil {
		t.Fatalf("initiate failed: %v", err)
	}

	slow := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-r.Context().Done():
		case <-time.After(2 * time.Second):
		}
	}))
	defer slow.Close()
	slowClient, err := razorpay.NewClient(razorpay.Config{
		KeyID:      "rzp_test_key",
		KeySecret:  testGatewaySecret,
		APIBaseURL: slow.URL,
		Timeout:    50 * time.Millisecond,
	})
	if err != nil {
		t.Fatalf("new slow client failed: %v", err)
	}
	svc := NewPaymentService(env.registry, slowClient, env.eventRepo, nil)
	if _, err := svc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID}); !errors.Is(err, ErrGatewayUnavailable) {
		t.Fatalf("gateway timeout should be unavailable, got %v", err)
	}
	stored := env.reloadAppointment(t, appointment.ID)
	if stored.Payment.RemoteOrderID != first.RemoteOrderID || stored.Payment.PaymentStatus != constants.PaymentStatusPending {
		t.Fatalf("timed out initiate must leave record untouched: %+v", stored.Payment)
	}

	retry, err := env.paymentSvc.Initiate(InitiatePaymentInput{UserID: patient.ID, Kind: constants.PurchaseKindAppointment, PurchasableID: appointment.ID})
	if err != nil {
		t.Fatalf("retried initiate failed: %v", err)
	}
	if retry.RemoteOrderID == first.RemoteOrderID {
		t.Fatalf("retried initiate should attach a new remote order")
	}
	if got := env.reloadAppointment(t, appointment.ID).Payment.RemoteOrderID; got != retry.RemoteOrderID {
		t.Fatalf("expected remote order %s, got %s", retry.RemoteOrderID, got)
	}
}
