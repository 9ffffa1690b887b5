package platform

// Feature names gate endpoints that only make sense on some client surfaces
// (e.g. file upload is not exposed to the Telegram bot).
type Feature string

// Enumerated features referenced by routes.
const (
	FeatureFileUpload     Feature = "file_upload"
	FeatureOnlinePayment  Feature = "online_payment"
	FeatureReviews        Feature = "reviews"
	FeaturePushNotify     Feature = "push_notifications"
	FeatureProfileEditing Feature = "profile_editing"
)

// featureTable maps each platform to its allowed feature set. Static; loaded
// once at package init. The web surface carries everything; Telegram surfaces
// are trimmed to what their clients can render.
var featureTable = map[Platform]map[Feature]struct{}{
	PlatformWeb: {
		FeatureFileUpload:     {},
		FeatureOnlinePayment:  {},
		FeatureReviews:        {},
		FeatureProfileEditing: {},
	},
	PlatformTelegramMiniApp: {
		FeatureOnlinePayment:  {},
		FeatureReviews:        {},
		FeaturePushNotify:     {},
		FeatureProfileEditing: {},
	},
	PlatformTelegramBot: {
		FeatureReviews:    {},
		FeaturePushNotify: {},
	},
}

// HasFeature reports whether the platform's client surface supports the
// named feature. Unknown platforms have no features.
func HasFeature(p Platform, f Feature) bool {
	set, ok := featureTable[p]
	if !ok {
		return false
	}
	_, ok = set[f]
	return ok
}
