package worker

import (
	"context"
	"errors"
	"time"

	"github.com/ayurcare-next/internal/config"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/queue"

	"github.com/hibiken/asynq"
)

const (
	tierExpireSweepInterval = 10 * time.Minute
)

// Service 异步队列服务
type Service struct {
	name     string
	server   *asynq.Server
	mux      *asynq.ServeMux
	consumer *Consumer
}

// NewService 创建异步队列服务
func NewService(cfg *config.QueueConfig, consumer *Consumer) (*Service, error) {
	if cfg == nil || !cfg.Enabled {
		return nil, errors.New("queue disabled")
	}
	if consumer == nil {
		return nil, errors.New("consumer is nil")
	}
	opt, serverCfg := queue.BuildServerConfig(cfg)
	server := asynq.NewServer(opt, serverCfg)
	mux := asynq.NewServeMux()
	consumer.Register(mux)
	return &Service{
		name:     "worker",
		server:   server,
		mux:      mux,
		consumer: consumer,
	}, nil
}

// Name 服务名称
func (s *Service) Name() string {
	if s == nil || s.name == "" {
		return "worker"
	}
	return s.name
}

// Start 启动服务
func (s *Service) Start(ctx context.Context) error {
	if s == nil || s.server == nil || s.mux == nil {
		return errors.New("worker not initialized")
	}
	if s.consumer != nil && s.consumer.TierService != nil {
		go s.runTierExpireSweep(ctx)
	}
	return s.server.Run(s.mux)
}

// Stop 停止服务
func (s *Service) Stop(ctx context.Context) error {
	if s == nil || s.server == nil {
		return nil
	}
	_ = ctx
	s.server.Shutdown()
	return nil
}

// runTierExpireSweep 定期扫描过期会员，补偿丢失的延迟任务
func (s *Service) runTierExpireSweep(ctx context.Context) {
	runOnce := func() {
		expired, err := s.consumer.TierService.ExpireDue(s.consumer.now())
		if err != nil {
			logger.Warnw("worker_tier_expire_sweep_failed", "error", err)
			return
		}
		if expired > 0 {
			logger.Infow("worker_tier_expire_sweep_done", "expired", expired)
		}
	}
	runOnce()

	ticker := time.NewTicker(tierExpireSweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runOnce()
		}
	}
}
