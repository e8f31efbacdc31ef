//go:build integration
// +build integration

package repository

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"

	"github.com/shopspring/decimal"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// setupPostgresIntegrationDB 初始化 PostgreSQL 集成测试数据库。
func setupPostgresIntegrationDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := strings.TrimSpace(os.Getenv("TEST_POSTGRES_DSN"))
	if dsn == "" {
		t.Skip("skip postgres integration test: TEST_POSTGRES_DSN is empty")
	}

	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open postgres failed: %v", err)
	}

	cleanupModels := []interface{}{
		&models.PaymentEvent{},
		&models.OrderItem{},
		&models.Order{},
		&models.CartItem{},
		&models.Appointment{},
		&models.DoctorPatientLog{},
		&models.Doctor{},
		&models.Product{},
		&models.User{},
	}
	_ = db.Migrator().DropTable(cleanupModels...)

	if err := db.AutoMigrate(
		&models.User{},
		&models.Doctor{},
		&models.DoctorPatientLog{},
		&models.Product{},
		&models.CartItem{},
		&models.Appointment{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentEvent{},
	); err != nil {
		t.Fatalf("migrate postgres models failed: %v", err)
	}

	t.Cleanup(func() {
		_ = db.Migrator().DropTable(cleanupModels...)
		sqlDB, err := db.DB()
		if err == nil {
			_ = sqlDB.Close()
		}
	})

	return db
}

func TestPostgresCheckoutTransaction(t *testing.T) {
	db := setupPostgresIntegrationDB(t)

	user := &models.User{Email: "pg_patient@example.com", Status: constants.UserStatusActive}
	if err := NewUserRepository(db).Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	product := &models.Product{
		Name:        "Triphala Tablets",
		PriceAmount: models.NewMoneyFromDecimal(decimal.RequireFromString("199.50")),
		IsActive:    true,
	}
	if err := NewProductRepository(db).Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if err := NewCartRepository(db).Upsert(&models.CartItem{UserID: user.ID, ProductID: product.ID, Quantity: 2}); err != nil {
		t.Fatalf("upsert cart failed: %v", err)
	}

	var orderID uint
	err := db.Transaction(func(tx *gorm.DB) error {
		order := &models.Order{
			UserID:          user.ID,
			Status:          constants.OrderStatusPlaced,
			ShippingAddress: "12 MG Road",
			ShippingPhone:   "9000000000",
			TotalAmount:     models.NewMoneyFromDecimal(decimal.RequireFromString("399.00")),
			Payment:         models.PaymentEnvelope{PaymentStatus: constants.PaymentStatusPending},
		}
		items := []models.OrderItem{{
			ProductID: product.ID,
			Name:      product.Name,
			UnitPrice: product.PriceAmount,
			Quantity:  2,
			LineTotal: models.NewMoneyFromDecimal(decimal.RequireFromString("399.00")),
		}}
		if err := NewOrderRepository(db).WithTx(tx).Create(order, items); err != nil {
			return err
		}
		orderID = order.ID
		if err := NewCartRepository(db).WithTx(tx).ClearByUser(user.ID); err != nil {
			return err
		}
		return NewUserRepository(db).WithTx(tx).UpdateDeliveryInfo(user.ID, "12 MG Road", "9000000000")
	})
	if err != nil {
		t.Fatalf("checkout transaction failed: %v", err)
	}

	order, err := NewOrderRepository(db).GetByID(orderID)
	if err != nil || order == nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(order.Items) != 1 || order.Items[0].UnitPrice.String() != "199.50" {
		t.Fatalf("unexpected order items: %+v", order.Items)
	}
	if order.TotalAmount.String() != "399.00" {
		t.Fatalf("unexpected order total: %s", order.TotalAmount.String())
	}
	cart, err := NewCartRepository(db).ListByUser(user.ID)
	if err != nil || len(cart) != 0 {
		t.Fatalf("cart should be cleared, got %d err=%v", len(cart), err)
	}
	stored, _ := NewUserRepository(db).GetByID(user.ID)
	if stored.Address != "12 MG Road" || stored.Phone != "9000000000" {
		t.Fatalf("delivery info should be written back, got %+v", stored)
	}
}

func TestPostgresPaymentEventsAndTierSweep(t *testing.T) {
	db := setupPostgresIntegrationDB(t)
	now := time.Now().UTC().Truncate(time.Second)

	expired := now.Add(-time.Hour)
	renewed := now.Add(time.Hour)
	userRepo := NewUserRepository(db)
	due := &models.User{Email: "pg_due@example.com", AccountTier: constants.AccountTierPro, TierExpiresAt: &expired}
	active := &models.User{Email: "pg_active@example.com", AccountTier: constants.AccountTierPro, TierExpiresAt: &renewed}
	for _, user := range []*models.User{due, active} {
		if err := userRepo.Create(user); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}
	ids, err := userRepo.ListTierExpiredIDs(now, 10)
	if err != nil {
		t.Fatalf("list tier expired failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != due.ID {
		t.Fatalf("want only due user, got %v", ids)
	}

	eventRepo := NewPaymentEventRepository(db)
	for _, event := range []string{constants.PaymentEventInitiated, constants.PaymentEventPaid} {
		if err := eventRepo.Create(&models.PaymentEvent{
			Kind:          constants.PurchaseKindTierUpgrade,
			PurchasableID: due.ID,
			UserID:        due.ID,
			Event:         event,
			RemoteOrderID: "order_PG1",
			Amount:        99900,
			Currency:      constants.DefaultGatewayCurrency,
			Payload:       models.JSON{"receipt": "upg_1"},
		}); err != nil {
			t.Fatalf("create payment event failed: %v", err)
		}
	}
	events, err := eventRepo.ListByTarget(constants.PurchaseKindTierUpgrade, due.ID)
	if err != nil || len(events) != 2 {
		t.Fatalf("list payment events want 2 got %d err=%v", len(events), err)
	}
	if events[1].Payload["receipt"] != "upg_1" {
		t.Fatalf("payload should round trip, got %v", events[1].Payload)
	}
	count, err := eventRepo.CountByTargetAndEvent(constants.PurchaseKindTierUpgrade, due.ID, constants.PaymentEventPaid)
	if err != nil || count != 1 {
		t.Fatalf("count paid events want 1 got %d err=%v", count, err)
	}
}
