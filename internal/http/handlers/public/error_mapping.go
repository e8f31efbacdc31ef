package public

import (
	"errors"

	handlershared "github.com/ayurcare-next/internal/http/handlers/shared"
	"github.com/ayurcare-next/internal/http/response"
	"github.com/ayurcare-next/internal/service"

	"github.com/gin-gonic/gin"
)

// mappedHandlerError 定义业务错误到接口错误响应的映射关系。
type mappedHandlerError struct {
	target error
	code   int
	key    string
}

func respondError(c *gin.Context, code int, key string, err error) {
	handlershared.RespondError(c, code, key, err)
}

func respondWithMappedError(c *gin.Context, err error, rules []mappedHandlerError, fallbackCode int, fallbackKey string) {
	for _, rule := range rules {
		if errors.Is(err, rule.target) {
			// 校验类错误对外只暴露统一 key，具体原因写日志
			if rule.key == "error.payment_verification_failed" {
				handlershared.RequestLog(c).Warnw("payment_verification_rejected", "error", err)
			}
			respondError(c, rule.code, rule.key, err)
			return
		}
	}
	respondError(c, fallbackCode, fallbackKey, err)
}

func concatMappedHandlerErrors(groups ...[]mappedHandlerError) []mappedHandlerError {
	total := 0
	for _, group := range groups {
		total += len(group)
	}
	result := make([]mappedHandlerError, 0, total)
	for _, group := range groups {
		result = append(result, group...)
	}
	return result
}

var purchasableCommonErrorRules = []mappedHandlerError{
	{target: service.ErrPurchaseKindInvalid, code: response.CodeBadRequest, key: "error.purchase_kind_invalid"},
	{target: service.ErrPurchasableNotFound, code: response.CodeNotFound, key: "error.purchasable_not_found"},
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
	{target: service.ErrPaymentInputInvalid, code: response.CodeBadRequest, key: "error.payment_input_invalid"},
}

var paymentInitiateExtraErrorRules = []mappedHandlerError{
	{target: service.ErrAlreadyPaid, code: response.CodeConflict, key: "error.already_paid"},
	{target: service.ErrInvalidAmount, code: response.CodeBadRequest, key: "error.invalid_amount"},
	{target: service.ErrGatewayUnavailable, code: response.CodeServiceUnavailable, key: "error.gateway_unavailable"},
}

var paymentConfirmExtraErrorRules = []mappedHandlerError{
	{target: service.ErrOrderMismatch, code: response.CodePaymentRequired, key: "error.payment_verification_failed"},
	{target: service.ErrInvalidSignature, code: response.CodePaymentRequired, key: "error.payment_verification_failed"},
	{target: service.ErrAlreadyPaid, code: response.CodeConflict, key: "error.already_paid"},
}

var checkoutErrorRules = []mappedHandlerError{
	{target: service.ErrCartEmpty, code: response.CodeBadRequest, key: "error.cart_empty"},
	{target: service.ErrMissingDeliveryInfo, code: response.CodeBadRequest, key: "error.missing_delivery_info"},
	{target: service.ErrUserNotFound, code: response.CodeNotFound, key: "error.user_not_found"},
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, key: "error.order_item_invalid"},
}

var cartErrorRules = []mappedHandlerError{
	{target: service.ErrProductNotAvailable, code: response.CodeBadRequest, key: "error.product_not_available"},
	{target: service.ErrInvalidOrderItem, code: response.CodeBadRequest, key: "error.order_item_invalid"},
}

var appointmentErrorRules = []mappedHandlerError{
	{target: service.ErrAppointmentInvalid, code: response.CodeBadRequest, key: "error.appointment_invalid"},
	{target: service.ErrDoctorNotFound, code: response.CodeNotFound, key: "error.doctor_not_found"},
	{target: service.ErrAppointmentNotFound, code: response.CodeNotFound, key: "error.appointment_not_found"},
	{target: service.ErrAppointmentNotPaid, code: response.CodeConflict, key: "error.appointment_not_paid"},
	{target: service.ErrForbidden, code: response.CodeForbidden, key: "error.forbidden"},
}

func respondPaymentInitiateError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(purchasableCommonErrorRules, paymentInitiateExtraErrorRules), response.CodeInternal, "error.payment_failed")
}

func respondPaymentConfirmError(c *gin.Context, err error) {
	respondWithMappedError(c, err, concatMappedHandlerErrors(purchasableCommonErrorRules, paymentConfirmExtraErrorRules), response.CodeInternal, "error.payment_failed")
}

func respondPaymentFailError(c *gin.Context, err error) {
	respondWithMappedError(c, err, purchasableCommonErrorRules, response.CodeInternal, "error.payment_failed")
}

func respondCheckoutError(c *gin.Context, err error) {
	respondWithMappedError(c, err, checkoutErrorRules, response.CodeInternal, "error.checkout_failed")
}

func respondCartError(c *gin.Context, err error) {
	respondWithMappedError(c, err, cartErrorRules, response.CodeInternal, "error.cart_update_failed")
}

func respondAppointmentError(c *gin.Context, err error, fallbackKey string) {
	respondWithMappedError(c, err, appointmentErrorRules, response.CodeInternal, fallbackKey)
}
