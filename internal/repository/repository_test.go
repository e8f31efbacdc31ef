package repository

import (
	"fmt"
	"testing"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/models"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

func setupRepositoryTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:repository_test_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
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
		t.Fatalf("auto migrate failed: %v", err)
	}
	return db
}

func TestCartUpsertKeepsSingleLine(t *testing.T) {
	db := setupRepositoryTestDB(t)
	product := &models.Product{Name: "Brahmi Ghee", PriceAmount: models.NewMoneyFromInt(420), IsActive: true}
	if err := NewProductRepository(db).Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	repo := NewCartRepository(db)
	if err := repo.Upsert(&models.CartItem{UserID: 7, ProductID: product.ID, Quantity: 1}); err != nil {
		t.Fatalf("first upsert failed: %v", err)
	}
	if err := repo.Upsert(&models.CartItem{UserID: 7, ProductID: product.ID, Quantity: 5}); err != nil {
		t.Fatalf("second upsert failed: %v", err)
	}
	items, err := repo.ListByUser(7)
	if err != nil {
		t.Fatalf("list cart failed: %v", err)
	}
	if len(items) != 1 || items[0].Quantity != 5 {
		t.Fatalf("want one line with quantity 5, got %+v", items)
	}
	if items[0].Product == nil || items[0].Product.Name != "Brahmi Ghee" {
		t.Fatalf("product should be preloaded")
	}

	if err := repo.DeleteByUserAndProduct(7, product.ID); err != nil {
		t.Fatalf("delete cart item failed: %v", err)
	}
	items, _ = repo.ListByUser(7)
	if len(items) != 0 {
		t.Fatalf("cart should be empty after delete")
	}
}

func TestOrderCreateSnapshotsItems(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewOrderRepository(db)
	order := &models.Order{
		UserID:          3,
		Status:          constants.OrderStatusPlaced,
		ShippingAddress: "Kochi",
		ShippingPhone:   "9000000001",
		TotalAmount:     models.NewMoneyFromInt(500),
	}
	items := []models.OrderItem{
		{ProductID: 1, Name: "A", UnitPrice: models.NewMoneyFromInt(100), Quantity: 2, LineTotal: models.NewMoneyFromInt(200)},
		{ProductID: 2, Name: "B", UnitPrice: models.NewMoneyFromInt(300), Quantity: 1, LineTotal: models.NewMoneyFromInt(300)},
	}
	if err := repo.Create(order, items); err != nil {
		t.Fatalf("create order failed: %v", err)
	}

	order.Payment.RemoteOrderID = "order_R1"
	order.Payment.PaymentStatus = constants.PaymentStatusPending
	if err := repo.Update(order); err != nil {
		t.Fatalf("update order failed: %v", err)
	}

	stored, err := repo.GetByID(order.ID)
	if err != nil || stored == nil {
		t.Fatalf("get order failed: %v", err)
	}
	if len(stored.Items) != 2 {
		t.Fatalf("want 2 items, got %d", len(stored.Items))
	}
	if stored.Payment.RemoteOrderID != "order_R1" || !stored.Payment.HasRemoteOrder() {
		t.Fatalf("payment envelope not persisted: %+v", stored.Payment)
	}

	missing, err := repo.GetByID(order.ID + 100)
	if err != nil || missing != nil {
		t.Fatalf("missing order should return nil,nil got %v %v", missing, err)
	}
}

func TestUserDeliveryInfoAndTierSweep(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	expired := now.Add(-time.Minute)
	later := now.Add(time.Hour)

	due := &models.User{Email: "due@example.com", Address: "old", Phone: "111", AccountTier: constants.AccountTierPro, TierExpiresAt: &expired}
	active := &models.User{Email: "active@example.com", AccountTier: constants.AccountTierPro, TierExpiresAt: &later}
	free := &models.User{Email: "free@example.com", AccountTier: constants.AccountTierFree, TierExpiresAt: &expired}
	for _, user := range []*models.User{due, active, free} {
		if err := repo.Create(user); err != nil {
			t.Fatalf("create user failed: %v", err)
		}
	}

	if err := repo.UpdateDeliveryInfo(due.ID, "new address", ""); err != nil {
		t.Fatalf("update delivery info failed: %v", err)
	}
	stored, _ := repo.GetByID(due.ID)
	if stored.Address != "new address" || stored.Phone != "111" {
		t.Fatalf("empty phone should be kept, got %+v", stored)
	}

	ids, err := repo.ListTierExpiredIDs(now, 0)
	if err != nil {
		t.Fatalf("list tier expired failed: %v", err)
	}
	if len(ids) != 1 || ids[0] != due.ID {
		t.Fatalf("want only due user, got %v", ids)
	}
}

func TestPaymentEventsByTarget(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewPaymentEventRepository(db)
	for _, event := range []string{constants.PaymentEventInitiated, constants.PaymentEventFailed, constants.PaymentEventInitiated} {
		if err := repo.Create(&models.PaymentEvent{
			Kind:          constants.PurchaseKindAppointment,
			PurchasableID: 9,
			Event:         event,
			Payload:       models.JSON{"event": event},
		}); err != nil {
			t.Fatalf("create event failed: %v", err)
		}
	}
	if err := repo.Create(&models.PaymentEvent{Kind: constants.PurchaseKindProductOrder, PurchasableID: 9, Event: constants.PaymentEventPaid}); err != nil {
		t.Fatalf("create other kind failed: %v", err)
	}

	events, err := repo.ListByTarget(constants.PurchaseKindAppointment, 9)
	if err != nil || len(events) != 3 {
		t.Fatalf("want 3 appointment events, got %d err=%v", len(events), err)
	}
	count, err := repo.CountByTargetAndEvent(constants.PurchaseKindAppointment, 9, constants.PaymentEventInitiated)
	if err != nil || count != 2 {
		t.Fatalf("want 2 initiated events, got %d err=%v", count, err)
	}
}

func TestUpdatePaymentUnlessPaidGuardsPaidRows(t *testing.T) {
	db := setupRepositoryTestDB(t)
	patient := &models.User{Email: "guarded@example.com"}
	if err := NewUserRepository(db).Create(patient); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	doctor := &models.Doctor{UserID: patient.ID, Name: "Dr. Guard", Fee: models.NewMoneyFromInt(500), IsActive: true}
	if err := NewDoctorRepository(db).Create(doctor); err != nil {
		t.Fatalf("create doctor failed: %v", err)
	}
	repo := NewAppointmentRepository(db)
	appointment := &models.Appointment{
		UserID:      patient.ID,
		DoctorID:    doctor.ID,
		ScheduledAt: time.Now().Add(24 * time.Hour),
		Payment:     models.PaymentEnvelope{PaymentStatus: constants.PaymentStatusPaid, RemoteOrderID: "order_1", RemotePaymentID: "pay_1"},
	}
	if err := repo.Create(appointment); err != nil {
		t.Fatalf("create appointment failed: %v", err)
	}

	ok, err := repo.UpdatePaymentUnlessPaid(EnvelopeUpdate{
		ID:     appointment.ID,
		Fields: map[string]interface{}{"remote_order_id": "order_2", "payment_status": constants.PaymentStatusPending},
	})
	if err != nil || ok {
		t.Fatalf("paid row must not be overwritten: ok=%v err=%v", ok, err)
	}
	ok, err = repo.UpdatePaymentUnlessPaid(EnvelopeUpdate{
		ID:             appointment.ID,
		AllowPaymentID: "pay_1",
		Fields:         map[string]interface{}{"remote_signature": "sig_1"},
	})
	if err != nil || !ok {
		t.Fatalf("same payment id should be allowed: ok=%v err=%v", ok, err)
	}
	stored, err := repo.GetByID(appointment.ID)
	if err != nil || stored == nil {
		t.Fatalf("reload appointment failed: %v", err)
	}
	if stored.Payment.RemoteOrderID != "order_1" || stored.Payment.RemoteSignature != "sig_1" || !stored.Payment.IsPaid() {
		t.Fatalf("unexpected envelope: %+v", stored.Payment)
	}
}

func TestDowngradeExpiredTierIsConditional(t *testing.T) {
	db := setupRepositoryTestDB(t)
	repo := NewUserRepository(db)
	now := time.Date(2026, 7, 1, 0, 0, 0, 0, time.UTC)
	renewed := now.Add(30 * 24 * time.Hour)
	user := &models.User{Email: "renewed@example.com", AccountTier: constants.AccountTierPro, TierExpiresAt: &renewed}
	if err := repo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}

	ok, err := repo.DowngradeExpiredTier(user.ID, now)
	if err != nil || ok {
		t.Fatalf("active pro must not be downgraded: ok=%v err=%v", ok, err)
	}
	ok, err = repo.DowngradeExpiredTier(user.ID, renewed.Add(time.Second))
	if err != nil || !ok {
		t.Fatalf("expired pro should be downgraded: ok=%v err=%v", ok, err)
	}
	stored, _ := repo.GetByID(user.ID)
	if stored.AccountTier != constants.AccountTierFree || stored.TierExpiresAt == nil {
		t.Fatalf("downgrade should only change tier: %+v", stored)
	}
}
