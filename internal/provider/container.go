package provider

import (
	"fmt"

	"github.com/ayurcare-next/internal/cache"
	"github.com/ayurcare-next/internal/config"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/payment/razorpay"
	"github.com/ayurcare-next/internal/queue"
	"github.com/ayurcare-next/internal/repository"
	"github.com/ayurcare-next/internal/service"
)

// Container 依赖注入容器
type Container struct {
	Config        *config.Config
	QueueClient   *queue.Client
	GatewayClient *razorpay.Client

	// Repositories
	UserRepo         repository.UserRepository
	DoctorRepo       repository.DoctorRepository
	AppointmentRepo  repository.AppointmentRepository
	ProductRepo      repository.ProductRepository
	CartRepo         repository.CartRepository
	OrderRepo        repository.OrderRepository
	PaymentEventRepo repository.PaymentEventRepository

	// Services
	PurchasableRegistry *service.PurchasableRegistry
	PaymentService      *service.PaymentService
	CheckoutService     *service.CheckoutService
	CartService         *service.CartService
	AppointmentService  *service.AppointmentService
	ReconcileService    *service.ReconcileService
	TierService         *service.TierService
}

// NewContainer 初始化容器；网关凭据缺失时直接返回错误
func NewContainer(cfg *config.Config) (*Container, error) {
	gatewayClient, err := razorpay.NewClient(cfg.Payment.Razorpay.ToClientConfig())
	if err != nil {
		logger.Errorw("provider_init_gateway_failed", "error", err)
		return nil, fmt.Errorf("init payment gateway: %w", err)
	}

	// 初始化缓存
	if err := cache.InitRedis(&cfg.Redis); err != nil {
		logger.Warnw("provider_init_redis_failed", "error", err)
	}

	// 初始化队列客户端
	var queueClient *queue.Client
	if cfg.Queue.Enabled {
		qc, err := queue.NewClient(&cfg.Queue)
		if err != nil {
			logger.Errorw("provider_init_queue_client_failed", "error", err)
		} else {
			queueClient = qc
		}
	}

	c := &Container{
		Config:        cfg,
		QueueClient:   queueClient,
		GatewayClient: gatewayClient,
	}

	// 1. 初始化 Repositories
	c.initRepositories()

	// 2. 初始化 Services
	c.initServices()

	return c, nil
}

func (c *Container) initRepositories() {
	db := models.DB
	c.UserRepo = repository.NewUserRepository(db)
	c.DoctorRepo = repository.NewDoctorRepository(db)
	c.AppointmentRepo = repository.NewAppointmentRepository(db)
	c.ProductRepo = repository.NewProductRepository(db)
	c.CartRepo = repository.NewCartRepository(db)
	c.OrderRepo = repository.NewOrderRepository(db)
	c.PaymentEventRepo = repository.NewPaymentEventRepository(db)
}

func (c *Container) initServices() {
	pricing := service.NewTierPricing(c.Config.Payment.Tier.ProPrice, c.Config.Payment.Tier.DurationDays)
	c.PurchasableRegistry = service.NewPurchasableRegistry(
		service.NewAppointmentPurchasable(c.AppointmentRepo),
		service.NewOrderPurchasable(c.OrderRepo, c.CartRepo),
		service.NewUpgradePurchasable(c.UserRepo, pricing),
	)
	c.PaymentService = service.NewPaymentService(c.PurchasableRegistry, c.GatewayClient, c.PaymentEventRepo, c.QueueClient)
	c.CheckoutService = service.NewCheckoutService(c.CartRepo, c.UserRepo, c.OrderRepo)
	c.CartService = service.NewCartService(c.CartRepo, c.ProductRepo)
	c.AppointmentService = service.NewAppointmentService(c.AppointmentRepo, c.DoctorRepo)
	c.ReconcileService = service.NewReconcileService(c.PurchasableRegistry, c.GatewayClient, c.PaymentEventRepo)
	c.TierService = service.NewTierService(c.UserRepo)
}
