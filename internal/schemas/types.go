// Package schemas — request payload shapes. Binding tags drive gin's
// validator; json/form/uri tags select the source location.
package schemas

import "time"

// LoginRequest is the common credential exchange body.
type LoginRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
}

// RegisterRequest creates an account. Role is optional and restricted to the
// two self-service roles; admins are provisioned out of band.
type RegisterRequest struct {
	Email    string `json:"email"    binding:"required,email"`
	Password string `json:"password" binding:"required,min=8,max=128"`
	Name     string `json:"name"     binding:"required,min=1,max=128"`
	Role     string `json:"role"     binding:"omitempty,oneof=customer specialist"`
}

// TelegramAuthRequest is the mini-app credential exchange: the signed init
// data replaces email/password entirely.
type TelegramAuthRequest struct {
	InitData string `json:"initData" binding:"required"`
}

// UpdateProfileRequest patches mutable profile fields.
type UpdateProfileRequest struct {
	Name      string `json:"name"      binding:"required,min=1,max=128"`
	AvatarURL string `json:"avatarUrl" binding:"omitempty,url,max=512"`
}

// CreateBookingRequest is the common booking creation body (web).
type CreateBookingRequest struct {
	ServiceID string    `json:"serviceId" binding:"required,uuid4"`
	StartsAt  time.Time `json:"startsAt"  binding:"required"`
	Notes     string    `json:"notes"     binding:"omitempty,max=1000"`
}

// MiniAppCreateBookingRequest overrides the booking body for the mini-app,
// which additionally carries the WebApp query id used to answer the client.
type MiniAppCreateBookingRequest struct {
	ServiceID string    `json:"serviceId" binding:"required,uuid4"`
	StartsAt  time.Time `json:"startsAt"  binding:"required"`
	Notes     string    `json:"notes"     binding:"omitempty,max=1000"`
	QueryID   string    `json:"queryId"   binding:"required,max=128"`
}

// BotCreateBookingRequest overrides the booking body for the bot surface,
// which identifies the conversation rather than a query.
type BotCreateBookingRequest struct {
	ServiceID string    `json:"serviceId" binding:"required,uuid4"`
	StartsAt  time.Time `json:"startsAt"  binding:"required"`
	ChatID    int64     `json:"chatId"    binding:"required"`
}

// BookingParams binds the booking id route parameter.
type BookingParams struct {
	BookingID string `uri:"bookingId" binding:"required,uuid4"`
}

// SearchServicesQuery binds the catalog search query string.
type SearchServicesQuery struct {
	Q      string `form:"q"      binding:"omitempty,max=200"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
	Limit  int    `form:"limit"  binding:"omitempty,min=1,max=100"`
}

// CreateServiceRequest publishes a specialist offering.
type CreateServiceRequest struct {
	Title       string `json:"title"       binding:"required,min=1,max=255"`
	Description string `json:"description" binding:"omitempty,max=5000"`
	PriceCents  int64  `json:"priceCents"  binding:"required,min=0"`
	DurationMin int    `json:"durationMin" binding:"required,min=5,max=480"`
}

// CreatePaymentRequest starts a checkout for a booking.
type CreatePaymentRequest struct {
	BookingID       string `json:"bookingId"       binding:"required,uuid4"`
	AmountCents     int64  `json:"amountCents"     binding:"required,min=1"`
	PaymentMethodID string `json:"paymentMethodId" binding:"required,max=128"`
}

// UploadFileRequest describes an upload registration (metadata only; bytes
// travel as multipart).
type UploadFileRequest struct {
	FileName string `json:"fileName" binding:"required,max=255"`
	MimeType string `json:"mimeType" binding:"required,max=128"`
	Size     int64  `json:"size"     binding:"required,min=1,max=10485760"`
}

// CreateReviewRequest rates a completed booking.
type CreateReviewRequest struct {
	BookingID string `json:"bookingId" binding:"required,uuid4"`
	Rating    int    `json:"rating"    binding:"required,min=1,max=5"`
	Comment   string `json:"comment"   binding:"omitempty,max=2000"`
}
