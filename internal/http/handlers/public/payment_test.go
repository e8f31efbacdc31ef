package public

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/provider"
	"github.com/ayurcare-next/internal/repository"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
)

const handlerTestSecret = "handler_test_secret"

type handlerTestEnv struct {
	db      *gorm.DB
	router  *gin.Engine
	userID  uint
	product *models.Product
}

func newOrderGateway(t *testing.T) *httptest.Server {
	t.Helper()
	var mu sync.Mutex
	seq := 0
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/v1/orders" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		var body map[string]interface{}
		_ = json.NewDecoder(r.Body).Decode(&body)
		mu.Lock()
		seq++
		id := fmt.Sprintf("order_H%d", seq)
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":       id,
			"amount":   body["amount"],
			"currency": body["currency"],
			"receipt":  body["receipt"],
			"status":   "created",
		})
	}))
	t.Cleanup(server.Close)
	return server
}

func setupHandlerTest(t *testing.T) *handlerTestEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dsn := fmt.Sprintf("file:public_handler_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open sqlite failed: %v", err)
	}
	if err := db.AutoMigrate(
		&models.User{},
		&models.Doctor{},
		&models.DoctorPatientLog{},
		&models.Appointment{},
		&models.Product{},
		&models.CartItem{},
		&models.Order{},
		&models.OrderItem{},
		&models.PaymentEvent{},
	); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}
	models.DB = db

	gateway := newOrderGateway(t)
	client, err := razorpay.NewClient(razorpay.Config{
		KeyID:      "rzp_test_handler",
		KeySecret:  handlerTestSecret,
		APIBaseURL: gateway.URL,
		Timeout:    2 * time.Second,
	})
	if err != nil {
		t.Fatalf("new gateway client failed: %v", err)
	}

	userRepo := repository.NewUserRepository(db)
	cartRepo := repository.NewCartRepository(db)
	orderRepo := repository.NewOrderRepository(db)
	productRepo := repository.NewProductRepository(db)
	appointmentRepo := repository.NewAppointmentRepository(db)
	eventRepo := repository.NewPaymentEventRepository(db)
	registry := service.NewPurchasableRegistry(
		service.NewAppointmentPurchasable(appointmentRepo),
		service.NewOrderPurchasable(orderRepo, cartRepo),
		service.NewUpgradePurchasable(userRepo, service.DefaultTierPricing()),
	)
	container := &provider.Container{
		GatewayClient:   client,
		UserRepo:        userRepo,
		CartRepo:        cartRepo,
		OrderRepo:       orderRepo,
		ProductRepo:     productRepo,
		PaymentService:  service.NewPaymentService(registry, client, eventRepo, nil),
		CheckoutService: service.NewCheckoutService(cartRepo, userRepo, orderRepo),
		CartService:     service.NewCartService(cartRepo, productRepo),
	}

	user := &models.User{Email: "handler@example.com", Status: constants.UserStatusActive}
	if err := userRepo.Create(user); err != nil {
		t.Fatalf("create user failed: %v", err)
	}
	product := &models.Product{Name: "Triphala", PriceAmount: models.NewMoneyFromInt(350), IsActive: true}
	if err := productRepo.Create(product); err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	h := New(container)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("user_id", user.ID)
		c.Next()
	})
	r.GET("/payments/key", h.GetPaymentKey)
	r.POST("/payments/initiate", h.InitiatePayment)
	r.POST("/payments/confirm", h.ConfirmPayment)
	r.POST("/payments/fail", h.FailPayment)
	r.POST("/cart/items", h.UpsertCartItem)
	r.GET("/cart", h.GetCart)
	r.POST("/orders/checkout", h.Checkout)

	return &handlerTestEnv{db: db, router: r, userID: user.ID, product: product}
}

type apiResponse struct {
	StatusCode int             `json:"status_code"`
	Msg        string          `json:"msg"`
	Data       json.RawMessage `json:"data"`
}

func (env *handlerTestEnv) call(t *testing.T, method, path string, body interface{}) apiResponse {
	t.Helper()
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal request failed: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept-Language", "en-US")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("http status want 200 got %d", w.Code)
	}
	var resp apiResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response failed: %v body=%s", err, w.Body.String())
	}
	return resp
}

func (env *handlerTestEnv) checkoutOrder(t *testing.T) uint {
	t.Helper()
	resp := env.call(t, http.MethodPost, "/cart/items", gin.H{"product_id": env.product.ID, "quantity": 2})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("add cart item failed: %+v", resp)
	}
	resp = env.call(t, http.MethodPost, "/orders/checkout", gin.H{"address": "12 Lotus Road", "phone": "9000000000"})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("checkout failed: %+v", resp)
	}
	var order models.Order
	if err := json.Unmarshal(resp.Data, &order); err != nil {
		t.Fatalf("decode order failed: %v", err)
	}
	if order.TotalAmount.String() != "700.00" || len(order.Items) != 1 {
		t.Fatalf("unexpected order: %+v", order)
	}
	return order.ID
}

func TestPaymentHandlersOrderFlow(t *testing.T) {
	env := setupHandlerTest(t)
	orderID := env.checkoutOrder(t)

	resp := env.call(t, http.MethodPost, "/payments/initiate", gin.H{
		"purchasable_kind": constants.PurchaseKindProductOrder,
		"purchasable_id":   orderID,
	})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("initiate failed: %+v", resp)
	}
	var initiated struct {
		RemoteOrderID string `json:"remote_order_id"`
		Amount        int64  `json:"amount"`
		Currency      string `json:"currency"`
		KeyID         string `json:"key_id"`
	}
	if err := json.Unmarshal(resp.Data, &initiated); err != nil {
		t.Fatalf("decode initiate failed: %v", err)
	}
	if initiated.RemoteOrderID == "" || initiated.Amount != 70000 || initiated.Currency != "INR" || initiated.KeyID != "rzp_test_handler" {
		t.Fatalf("unexpected initiate result: %+v", initiated)
	}

	resp = env.call(t, http.MethodPost, "/payments/confirm", gin.H{
		"purchasable_kind":  constants.PurchaseKindProductOrder,
		"purchasable_id":    orderID,
		"remote_order_id":   initiated.RemoteOrderID,
		"remote_payment_id": "pay_H1",
		"signature":         razorpay.ComputeSignature(handlerTestSecret, initiated.RemoteOrderID, "pay_H1"),
	})
	if resp.StatusCode != response.CodeOK {
		t.Fatalf("confirm failed: %+v", resp)
	}
	var confirmed struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(resp.Data, &confirmed); err != nil {
		t.Fatalf("decode confirm failed: %v", err)
	}
	if confirmed.Status != constants.PaymentStatusPaid {
		t.Fatalf("status want paid got %s", confirmed.Status)
	}

	resp = env.call(t, http.MethodPost, "/payments/initiate", gin.H{
		"purchasable_kind": constants.PurchaseKindProductOrder,
		"purchasable_id":   orderID,
	})
	if resp.StatusCode != response.CodeConflict {
		t.Fatalf("initiate on paid order should conflict, got %+v", resp)
	}
}

func TestConfirmVerificationFailuresAreIndistinguishable(t *testing.T) {
	env := setupHandlerTest(t)
	orderID := env.checkoutOrder(t)

	resp := env.call(t, http.MethodPost, "/payments/initiate", gin.H{
		"purchasable_kind": constants.PurchaseKindProductOrder,
		"purchasable_id":   orderID,
	})
	var initiated struct {
		RemoteOrderID string `json:"remote_order_id"`
	}
	if err := json.Unmarshal(resp.Data, &initiated); err != nil {
		t.Fatalf("decode initiate failed: %v", err)
	}

	badSignature := env.call(t, http.MethodPost, "/payments/confirm", gin.H{
		"purchasable_kind":  constants.PurchaseKindProductOrder,
		"purchasable_id":    orderID,
		"remote_order_id":   initiated.RemoteOrderID,
		"remote_payment_id": "pay_H2",
		"signature":         "deadbeef",
	})
	wrongOrder := env.call(t, http.MethodPost, "/payments/confirm", gin.H{
		"purchasable_kind":  constants.PurchaseKindProductOrder,
		"purchasable_id":    orderID,
		"remote_order_id":   "order_elsewhere",
		"remote_payment_id": "pay_H2",
		"signature":         razorpay.ComputeSignature(handlerTestSecret, "order_elsewhere", "pay_H2"),
	})
	if badSignature.StatusCode != response.CodePaymentRequired || wrongOrder.StatusCode != response.CodePaymentRequired {
		t.Fatalf("verification failures should share a code: %d / %d", badSignature.StatusCode, wrongOrder.StatusCode)
	}
	if badSignature.Msg != wrongOrder.Msg || badSignature.Msg != "Payment verification failed" {
		t.Fatalf("verification failures should share a message: %q / %q", badSignature.Msg, wrongOrder.Msg)
	}

	var stored models.Order
	if err := env.db.First(&stored, orderID).Error; err != nil {
		t.Fatalf("reload order failed: %v", err)
	}
	if stored.Payment.IsPaid() {
		t.Fatalf("order must stay unpaid after failed verification")
	}
}

func TestPaymentHandlerValidationAndKey(t *testing.T) {
	env := setupHandlerTest(t)

	resp := env.call(t, http.MethodGet, "/payments/key", nil)
	if resp.StatusCode != response.CodeOK || !bytes.Contains(resp.Data, []byte(`"rzp_test_handler"`)) {
		t.Fatalf("unexpected key response: %+v", resp)
	}

	resp = env.call(t, http.MethodPost, "/payments/initiate", gin.H{"purchasable_kind": "gift_card", "purchasable_id": 1})
	if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Unsupported purchasable kind" {
		t.Fatalf("unknown kind should be rejected, got %+v", resp)
	}
	resp = env.call(t, http.MethodPost, "/payments/initiate", gin.H{"purchasable_kind": constants.PurchaseKindProductOrder, "purchasable_id": 9999})
	if resp.StatusCode != response.CodeNotFound {
		t.Fatalf("missing order should be not found, got %+v", resp)
	}
	resp = env.call(t, http.MethodPost, "/payments/initiate", gin.H{"purchasable_kind": constants.PurchaseKindProductOrder})
	if resp.StatusCode != response.CodeBadRequest {
		t.Fatalf("missing id should be bad request, got %+v", resp)
	}
	resp = env.call(t, http.MethodPost, "/orders/checkout", gin.H{"address": "addr", "phone": "1"})
	if resp.StatusCode != response.CodeBadRequest || resp.Msg != "Cart is empty" {
		t.Fatalf("empty cart checkout should fail, got %+v", resp)
	}
}

func TestFailPaymentHandler(t *testing.T) {
	env := setupHandlerTest(t)
	orderID := env.checkoutOrder(t)

	resp := env.call(t, http.MethodPost, "/payments/fail", gin.H{
		"purchasable_kind": constants.PurchaseKindProductOrder,
		"purchasable_id":   orderID,
		"reason":           "user_cancelled",
	})
	if resp.StatusCode != response.CodeOK || !bytes.Contains(resp.Data, []byte(`"failed"`)) {
		t.Fatalf("fail should mark failed, got %+v", resp)
	}
}
