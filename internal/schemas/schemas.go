// Package schemas is the validation schema registry: a typed catalog of
// request payload shapes, partitioned into four namespaces resolved in fixed
// order — platform-specific first, then common, then the domain groups
// (booking, service, payment, file, review). The first namespace containing
// a name wins, which lets a platform override a common shape without touching
// shared routes.
//
// Names are enumerated constants and every route binds one at registration
// time through MustResolve, so a typo is a startup panic instead of a 500
// discovered when the route is first hit.
package schemas

import (
	"fmt"

	"github.com/bookline-app/bookline-backend/internal/platform"
)

// Name identifies a registered schema.
type Name string

// Enumerated schema names. Closed set; adding a route payload means adding a
// constant here and a registry entry below.
const (
	NameLogin          Name = "login"
	NameRegister       Name = "register"
	NameTelegramAuth   Name = "telegramAuth"
	NameUpdateProfile  Name = "updateProfile"
	NameCreateBooking  Name = "createBooking"
	NameBookingParams  Name = "bookingParams"
	NameSearchServices Name = "searchServices"
	NameCreateService  Name = "createService"
	NameCreatePayment  Name = "createPayment"
	NameUploadFile     Name = "uploadFile"
	NameCreateReview   Name = "createReview"
)

// Schema wraps a prototype factory. Each call to New returns a fresh typed
// instance for gin binding; binding tags on the struct drive validation.
type Schema struct {
	New func() any
}

// Registries, probed in this order by Resolve.
var (
	platformRegistry = map[platform.Platform]map[Name]Schema{
		platform.PlatformTelegramMiniApp: {
			NameTelegramAuth:  {New: func() any { return &TelegramAuthRequest{} }},
			NameCreateBooking: {New: func() any { return &MiniAppCreateBookingRequest{} }},
		},
		platform.PlatformTelegramBot: {
			NameCreateBooking: {New: func() any { return &BotCreateBookingRequest{} }},
		},
	}

	commonRegistry = map[Name]Schema{
		NameLogin:          {New: func() any { return &LoginRequest{} }},
		NameRegister:       {New: func() any { return &RegisterRequest{} }},
		NameUpdateProfile:  {New: func() any { return &UpdateProfileRequest{} }},
		NameSearchServices: {New: func() any { return &SearchServicesQuery{} }},
	}

	bookingRegistry = map[Name]Schema{
		NameCreateBooking: {New: func() any { return &CreateBookingRequest{} }},
		NameBookingParams: {New: func() any { return &BookingParams{} }},
	}

	serviceRegistry = map[Name]Schema{
		NameCreateService: {New: func() any { return &CreateServiceRequest{} }},
	}

	paymentRegistry = map[Name]Schema{
		NameCreatePayment: {New: func() any { return &CreatePaymentRequest{} }},
	}

	fileRegistry = map[Name]Schema{
		NameUploadFile: {New: func() any { return &UploadFileRequest{} }},
	}

	reviewRegistry = map[Name]Schema{
		NameCreateReview: {New: func() any { return &CreateReviewRequest{} }},
	}
)

// Resolve looks up name for the given platform: platform namespace first,
// then common, then the domain groups. The boolean is false when no
// namespace contains the name.
func Resolve(name Name, p platform.Platform) (Schema, bool) {
	if byName, ok := platformRegistry[p]; ok {
		if s, ok := byName[name]; ok {
			return s, true
		}
	}
	if s, ok := commonRegistry[name]; ok {
		return s, true
	}
	for _, reg := range []map[Name]Schema{
		bookingRegistry, serviceRegistry, paymentRegistry, fileRegistry, reviewRegistry,
	} {
		if s, ok := reg[name]; ok {
			return s, true
		}
	}
	return Schema{}, false
}

// MustResolve panics when the name resolves for no platform at all. Called at
// route registration so a missing registry entry fails startup, not a
// request. Platform-specific-only names are fine as long as they resolve
// somewhere.
func MustResolve(name Name) {
	for _, p := range platform.AllPlatforms() {
		if _, ok := Resolve(name, p); ok {
			return
		}
	}
	panic(fmt.Sprintf("schemas: unregistered schema name %q", name))
}
