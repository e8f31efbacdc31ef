package main

import (
	"flag"
	"time"

	"github.com/ayurcare-next/internal/config"
	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"
	"github.com/ayurcare-next/internal/models"
	"github.com/ayurcare-next/internal/service"
)

func main() {
	var patientEmail string
	var tokenTTL time.Duration
	flag.StringVar(&patientEmail, "patient", "patient@ayurcare.local", "演示患者邮箱")
	flag.DurationVar(&tokenTTL, "token-ttl", 24*time.Hour, "演示 Token 有效期")
	flag.Parse()

	// 连接数据库
	cfg := config.Load()
	logger.Init(cfg.Server.Mode, cfg.Log.ToLoggerOptions())
	stdLog := logger.StdLogger()
	if err := models.InitDB(models.DBOptions{
		Driver: cfg.Database.Driver,
		DSN:    cfg.Database.DSN,
		Pool: models.DBPoolConfig{
			MaxOpenConns:           cfg.Database.Pool.MaxOpenConns,
			MaxIdleConns:           cfg.Database.Pool.MaxIdleConns,
			ConnMaxLifetimeSeconds: cfg.Database.Pool.ConnMaxLifetimeSeconds,
			ConnMaxIdleTimeSeconds: cfg.Database.Pool.ConnMaxIdleTimeSeconds,
		},
		Debug: cfg.Server.Mode == "debug",
	}); err != nil {
		stdLog.Fatalf("Failed to connect database: %v", err)
	}

	// 自动迁移
	if err := models.AutoMigrate(); err != nil {
		stdLog.Fatalf("Failed to migrate database: %v", err)
	}

	result, err := models.SeedDemoData(patientEmail)
	if err != nil {
		stdLog.Fatalf("Failed to seed demo data: %v", err)
	}

	// 本地联调用 Token（生产环境由外部认证服务签发）
	patientToken, expiresAt, err := service.GenerateUserJWT(cfg.UserJWT.SecretKey, result.Patient.ID, constants.UserRolePatient, tokenTTL)
	if err != nil {
		stdLog.Fatalf("Failed to sign patient token: %v", err)
	}
	stdLog.Printf("patient %s (id=%d) token, expires %s:\n%s", result.Patient.Email, result.Patient.ID, expiresAt.Format(time.RFC3339), patientToken)
	for _, doctor := range result.Doctors {
		token, _, err := service.GenerateUserJWT(cfg.UserJWT.SecretKey, doctor.UserID, constants.UserRoleDoctor, tokenTTL)
		if err != nil {
			stdLog.Fatalf("Failed to sign doctor token: %v", err)
		}
		stdLog.Printf("doctor %s (doctor_id=%d, fee=%s) token:\n%s", doctor.Name, doctor.ID, doctor.Fee.StringFixed(2), token)
	}
	stdLog.Printf("Seed completed")
}
