package models

import (
	"errors"
	"fmt"

	"github.com/ayurcare-next/internal/constants"
	"github.com/ayurcare-next/internal/logger"

	"gorm.io/gorm"
)

// SeedDoctor 演示医生
type SeedDoctor struct {
	Email     string
	Name      string
	Specialty string
	Fee       int64
}

// SeedProduct 演示商品
type SeedProduct struct {
	Name        string
	Description string
	Price       string
}

// DefaultSeedDoctors 默认演示医生
var DefaultSeedDoctors = []SeedDoctor{
	{Email: "dr.sharma@ayurcare.local", Name: "Dr. Anika Sharma", Specialty: "Panchakarma", Fee: 1500},
	{Email: "dr.menon@ayurcare.local", Name: "Dr. Ravi Menon", Specialty: "Nadi Pariksha", Fee: 900},
}

// DefaultSeedProducts 默认演示商品
var DefaultSeedProducts = []SeedProduct{
	{Name: "Ashwagandha Churna", Description: "Root powder, 100g", Price: "249.00"},
	{Name: "Triphala Tablets", Description: "60 tablets", Price: "199.00"},
	{Name: "Brahmi Ghee", Description: "Medicated ghee, 200g", Price: "420.00"},
	{Name: "Kumkumadi Tailam", Description: "Face oil, 30ml", Price: "650.00"},
}

// SeedResult 种子数据结果
type SeedResult struct {
	Patient *User
	Doctors []Doctor
}

// SeedDemoData 写入演示用户、医生与商品，已存在的记录保持不变
func SeedDemoData(patientEmail string) (*SeedResult, error) {
	if DB == nil {
		return nil, errors.New("database not initialized")
	}
	result := &SeedResult{}
	err := DB.Transaction(func(tx *gorm.DB) error {
		patient, err := ensureSeedUser(tx, patientEmail, constants.UserRolePatient)
		if err != nil {
			return err
		}
		result.Patient = patient

		for _, item := range DefaultSeedDoctors {
			doctorUser, err := ensureSeedUser(tx, item.Email, constants.UserRoleDoctor)
			if err != nil {
				return err
			}
			var doctor Doctor
			err = tx.Where("user_id = ?", doctorUser.ID).First(&doctor).Error
			if errors.Is(err, gorm.ErrRecordNotFound) {
				doctor = Doctor{
					UserID:    doctorUser.ID,
					Name:      item.Name,
					Specialty: item.Specialty,
					Fee:       NewMoneyFromInt(item.Fee),
					IsActive:  true,
				}
				if err := tx.Create(&doctor).Error; err != nil {
					return fmt.Errorf("create doctor %s: %w", item.Email, err)
				}
				logger.Infow("seed_doctor_created", "doctor_id", doctor.ID, "name", doctor.Name)
			} else if err != nil {
				return err
			}
			result.Doctors = append(result.Doctors, doctor)
		}

		for _, item := range DefaultSeedProducts {
			var count int64
			if err := tx.Model(&Product{}).Where("name = ?", item.Name).Count(&count).Error; err != nil {
				return err
			}
			if count > 0 {
				continue
			}
			price, err := ParseMoney(item.Price)
			if err != nil {
				return fmt.Errorf("parse seed price %s: %w", item.Name, err)
			}
			product := Product{Name: item.Name, Description: item.Description, PriceAmount: price, IsActive: true}
			if err := tx.Create(&product).Error; err != nil {
				return fmt.Errorf("create product %s: %w", item.Name, err)
			}
			logger.Infow("seed_product_created", "product_id", product.ID, "name", product.Name)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func ensureSeedUser(tx *gorm.DB, email, role string) (*User, error) {
	var user User
	err := tx.Where("email = ?", email).First(&user).Error
	if err == nil {
		return &user, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	user = User{
		Email:       email,
		Role:        role,
		Status:      constants.UserStatusActive,
		AccountTier: constants.AccountTierFree,
	}
	if err := tx.Create(&user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", email, err)
	}
	return &user, nil
}
