package repository

import (
	"github.com/ayurcare-next/internal/constants"

	"gorm.io/gorm"
)

// EnvelopeUpdate 支付信封条件更新
type EnvelopeUpdate struct {
	ID             uint
	AllowPaymentID string                 // 已支付时仅允许同一支付流水号覆盖，空值表示已支付即拒绝
	Fields         map[string]interface{} // 信封列（不带嵌入前缀）
	Extra          map[string]interface{} // 同一行的其他列
}

// updateEnvelopeUnlessPaid 仅在记录未被其他支付流水号标记为 paid 时写入，返回是否命中
func updateEnvelopeUnlessPaid(db *gorm.DB, model interface{}, prefix string, update EnvelopeUpdate) (bool, error) {
	if update.ID == 0 || len(update.Fields) == 0 {
		return false, nil
	}
	values := make(map[string]interface{}, len(update.Fields)+len(update.Extra))
	for column, value := range update.Fields {
		values[prefix+column] = value
	}
	for column, value := range update.Extra {
		values[column] = value
	}
	result := db.Model(model).
		Where("id = ?", update.ID).
		Where("(COALESCE("+prefix+"payment_status, '') <> ? OR "+prefix+"remote_payment_id = ?)", constants.PaymentStatusPaid, update.AllowPaymentID).
		Updates(values)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}
