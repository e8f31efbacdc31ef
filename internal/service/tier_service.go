package service

import (
	"fmt"
	"time"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/repository"
)

const tierExpireBatchSize = 200

// TierService 会员等级维护
type TierService struct {
	userRepo repository.UserRepository
}

// NewTierService 创建会员等级服务
func NewTierService(userRepo repository.UserRepository) *TierService {
	return &TierService{userRepo: userRepo}
}

// ExpireIfDue 到期后降级为 free；续费后的用户不受影响
func (s *TierService) ExpireIfDue(userID uint, now time.Time) (bool, error) {
	user, err := s.userRepo.GetByID(userID)
	if err != nil {
		return false, fmt.Errorf("load user: %w", err)
	}
	if user == nil {
		return false, nil
	}
	if user.AccountTier != constants.AccountTierPro || user.TierExpiresAt == nil {
		return false, nil
	}
	if user.TierExpiresAt.After(now) {
		return false, nil
	}
	// 条件降级：加载后若已续费（到期时间后移）则不命中
	downgraded, err := s.userRepo.DowngradeExpiredTier(user.ID, now)
	if err != nil {
		return false, fmt.Errorf("downgrade user tier: %w", err)
	}
	if !downgraded {
		logger.Infow("tier_expire_skipped_renewed", "user_id", user.ID)
		return false, nil
	}
	logger.Infow("tier_expired",
		"user_id", user.ID,
		"expired_at", user.TierExpiresAt,
	)
	return true, nil
}

// ExpireDue 批量降级已过期用户，作为延迟任务丢失时的兜底
func (s *TierService) ExpireDue(now time.Time) (int, error) {
	ids, err := s.userRepo.ListTierExpiredIDs(now, tierExpireBatchSize)
	if err != nil {
		return 0, fmt.Errorf("list expired tiers: %w", err)
	}
	expired := 0
	for _, id := range ids {
		ok, err := s.ExpireIfDue(id, now)
		if err != nil {
			logger.Warnw("tier_expire_sweep_failed", "user_id", id, "error", err)
			continue
		}
		if ok {
			expired++
		}
	}
	return expired, nil
}
