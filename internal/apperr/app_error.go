package apperr

import "github.com/tuanvumaihuynh/lfs/pkg/zerror"

const (
	ValidationErrorCode = "VALIDATION_FAILED"
)

var (
	ValidationErr = zerror.NewValidationFailed(ValidationErrorCode, "validation error")

	// Catalog
	CategoryNotFoundErr  = zerror.NewNotFound("CATEGORY_NOT_FOUND", "category not found")
	CategorySlugTakenErr = zerror.NewConflict("CATEGORY_SLUG_TAKEN", "category slug already exists")
	CategoryParentErr    = zerror.NewUnprocessableEntity("CATEGORY_INVALID_PARENT", "category cannot be its own ancestor")
	ProductNotFoundErr   = zerror.NewNotFound("PRODUCT_NOT_FOUND", "product not found")
	ProductSlugTakenErr  = zerror.NewConflict("PRODUCT_SLUG_TAKEN", "product slug already exists")
	ProductParentErr     = zerror.NewUnprocessableEntity("PRODUCT_INVALID_PARENT", "variants need a parent product with variants")
	TaxNotFoundErr       = zerror.NewNotFound("TAX_NOT_FOUND", "tax not found")

	// Cart
	CartNotFoundErr        = zerror.NewNotFound("CART_NOT_FOUND", "cart not found")
	CartItemNotFoundErr    = zerror.NewNotFound("CART_ITEM_NOT_FOUND", "cart item not found")
	CartEmptyErr           = zerror.NewUnprocessableEntity("CART_EMPTY", "cart is empty")
	ProductNotAvailableErr = zerror.NewUnprocessableEntity("PRODUCT_NOT_AVAILABLE", "product is not available")
	OutOfStockErr          = zerror.NewUnprocessableEntity("OUT_OF_STOCK", "not enough products in stock")

	// Methods
	ShippingMethodNotFoundErr = zerror.NewNotFound("SHIPPING_METHOD_NOT_FOUND", "shipping method not found")
	PaymentMethodNotFoundErr  = zerror.NewNotFound("PAYMENT_METHOD_NOT_FOUND", "payment method not found")
	MethodPriceNotFoundErr    = zerror.NewNotFound("METHOD_PRICE_NOT_FOUND", "method price not found")
	MethodNotValidErr         = zerror.NewUnprocessableEntity("METHOD_NOT_VALID", "method is not valid for the cart")
	CriterionInvalidErr       = zerror.NewValidationFailed("CRITERION_INVALID", "criterion is invalid")

	// Discounts and vouchers
	DiscountNotFoundErr     = zerror.NewNotFound("DISCOUNT_NOT_FOUND", "discount not found")
	VoucherGroupNotFoundErr = zerror.NewNotFound("VOUCHER_GROUP_NOT_FOUND", "voucher group not found")
	VoucherNotFoundErr      = zerror.NewNotFound("VOUCHER_NOT_FOUND", "voucher not found")
	VoucherNotEffectiveErr  = zerror.NewUnprocessableEntity("VOUCHER_NOT_EFFECTIVE", "voucher is not effective")
	VoucherNumbersErr       = zerror.NewUnprocessableEntity("VOUCHER_NUMBERS_EXHAUSTED", "cannot generate enough unique voucher numbers")

	// Orders and customers
	OrderNotFoundErr     = zerror.NewNotFound("ORDER_NOT_FOUND", "order not found")
	CustomerNotFoundErr  = zerror.NewNotFound("CUSTOMER_NOT_FOUND", "customer not found")
	IPNNotVerifiedErr    = zerror.NewBadRequest("IPN_NOT_VERIFIED", "paypal notification could not be verified")
	PayPalUnavailableErr = zerror.NewBadGateway("PAYPAL_UNAVAILABLE", "paypal verification failed")

	// Marketing and exports
	TopsellerNotFoundErr = zerror.NewNotFound("TOPSELLER_NOT_FOUND", "topseller not found")
	ExportNotFoundErr    = zerror.NewNotFound("EXPORT_NOT_FOUND", "export not found")
	ExportSlugTakenErr   = zerror.NewConflict("EXPORT_SLUG_TAKEN", "export slug already exists")
	PortletNotFoundErr   = zerror.NewNotFound("PORTLET_NOT_FOUND", "portlet not found")

	// Auth
	InvalidCredentialsErr = zerror.NewUnauthorized("INVALID_CREDENTIALS", "invalid email or password")
	InvalidTokenErr       = zerror.NewUnauthorized("INVALID_TOKEN", "missing or invalid token")
	AdminExistsErr        = zerror.NewConflict("ADMIN_EXISTS", "admin user already exists")

	TooManyRequestsErr = zerror.NewTooManyRequests("TOO_MANY_REQUESTS", "too many requests")
)
