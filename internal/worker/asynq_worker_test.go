package worker

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/provider"
	"github.com/ayurcare-next/internal/queue"
	"github.com/ayurcare-next/internal/repository"
	"github.com/ayurcare-next/internal/service"

	"github.com/glebarez/sqlite"
	"github.com/hibiken/asynq"
	"gorm.io/gorm"
)

func setupWorkerConsumer(t *testing.T, now time.Time) (*Consumer, *repository.GormUserRepository) {
	t.Helper()
	dsn := fmt.Sprintf("file:worker_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(&models.User{}, &models.Appointment{}, &models.Order{}, &models.OrderItem{}, &models.PaymentEvent{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db
	userRepo := repository.NewUserRepository(db)
	consumer := NewConsumer(&provider.Container{
		UserRepo:    userRepo,
		TierService: service.NewTierService(userRepo),
	})
	consumer.now = func() time.Time { return now }
	return consumer, userRepo
}

func TestHandleTierExpireDowngradesDueUser(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	consumer, userRepo := setupWorkerConsumer(t, now)
	expiresAt := now.Add(-time.Minute)
	user := &models.User{
		Email:         "worker_tier@example.com",
		Status:        constants.UserStatusActive,
		AccountTier:   constants.AccountTierPro,
		TierExpiresAt: &expiresAt,
	}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	task, err := queue.NewTierExpireTask(queue.TierExpirePayload{UserID: user.ID})
	if err != nil {
		t.Fatalf("build task failed: %v", err)
	}
	if err := consumer.handleTierExpire(context.Background(), task); err != nil {
		t.Fatalf("handle tier expire failed: %v", err)
	}
	stored, _ := userRepo.GetByID(user.ID)
	if stored.AccountTier != constants.AccountTierFree {
		t.Fatalf("user should be downgraded, got %s", stored.AccountTier)
	}
}

func TestHandleTierExpireKeepsRenewedUser(t *testing.T) {
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	consumer, userRepo := setupWorkerConsumer(t, now)
	renewedUntil := now.Add(30 * 24 * time.Hour)
	user := &models.User{
		Email:         "worker_renewed@example.com",
		Status:        constants.UserStatusActive,
		AccountTier:   constants.AccountTierPro,
		TierExpiresAt: &renewedUntil,
	}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	task, _ := queue.NewTierExpireTask(queue.TierExpirePayload{UserID: user.ID})
	if err := consumer.handleTierExpire(context.Background(), task); err != nil {
		t.Fatalf("handle tier expire failed: %v", err)
	}
	stored, _ := userRepo.GetByID(user.ID)
	if stored.AccountTier != constants.AccountTierPro {
		t.Fatalf("renewed user should stay pro, got %s", stored.AccountTier)
	}
}

func TestHandlersSkipMalformedPayloads(t *testing.T) {
	consumer, _ := setupWorkerConsumer(t, time.Now())
	consumer.ReconcileService = service.NewReconcileService(service.NewPurchasableRegistry(), nil, nil)

	bad := asynq.NewTask(queue.TaskTierExpire, []byte("{not-json"))
	if err := consumer.handleTierExpire(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed tier payload should skip retry, got %v", err)
	}
	bad = asynq.NewTask(queue.TaskPaymentReconcile, []byte("{not-json"))
	if err := consumer.handlePaymentReconcile(context.Background(), bad); !errors.Is(err, asynq.SkipRetry) {
		t.Fatalf("malformed reconcile payload should skip retry, got %v", err)
	}

	task, _ := queue.NewPaymentReconcileTask(queue.PaymentReconcilePayload{Kind: constants.PurchaseKindAppointment})
	if err := consumer.handlePaymentReconcile(context.Background(), task); err != nil {
		t.Fatalf("empty reconcile target should be skipped, got %v", err)
	}
	task, _ = queue.NewPaymentReconcileTask(queue.PaymentReconcilePayload{
		Kind:            "gift_card",
		PurchasableID:   1,
		RemotePaymentID: "pay_X",
	})
	if err := consumer.handlePaymentReconcile(context.Background(), task); err != nil {
		t.Fatalf("unknown kind should be dropped without retry, got %v", err)
	}
}
