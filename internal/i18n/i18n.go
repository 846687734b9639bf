// Package i18n is the static English/Arabic string picker used for every
// message shown to end users.  There is no translation engine: each key
// simply has both strings.
package i18n

import (
	"strings"

	"golang.org/x/text/language"
)

// Lang is a supported display language.
type Lang string

const (
	EN Lang = "en"
	AR Lang = "ar"
)

// Key identifies a user-facing message.
type Key string

const (
	NameRequired      Key = "name_required"
	NameLength        Key = "name_length"
	NameCharacters    Key = "name_characters"
	EmailInvalid      Key = "email_invalid"
	PhoneInvalid      Key = "phone_invalid"
	HoursRange        Key = "hours_range"
	DateInvalid       Key = "date_invalid"
	DurationInvalid   Key = "duration_invalid"
	QuantityInvalid   Key = "quantity_invalid"
	InvalidRequest    Key = "invalid_request"
	NotFound          Key = "not_found"
	YachtUnavailable  Key = "yacht_unavailable"
	ItemUnavailable   Key = "item_unavailable"
	BookingSubmitted  Key = "booking_submitted"
	BookingFailed     Key = "booking_failed"
	TryAgain          Key = "try_again"
	Generic           Key = "generic"
	TooManyRequests   Key = "too_many_requests"
	Unauthorized      Key = "unauthorized"
	Forbidden         Key = "forbidden"
	CartEmpty         Key = "cart_empty"
	WhatsAppUnset     Key = "whatsapp_unset"
	InvalidStatus     Key = "invalid_status"
	UnknownSetting    Key = "unknown_setting"
	InvalidTransition Key = "invalid_transition"
)

var messages = map[Key][2]string{
	NameRequired:      {"Please enter your name.", "يرجى إدخال اسمك."},
	NameLength:        {"Name must be between 2 and 100 characters.", "يجب أن يكون الاسم بين 2 و 100 حرف."},
	NameCharacters:    {"Name may only contain letters, spaces, hyphens and apostrophes.", "يمكن أن يحتوي الاسم على حروف ومسافات وشرطات وفواصل عليا فقط."},
	EmailInvalid:      {"Please enter a valid email address.", "يرجى إدخال بريد إلكتروني صحيح."},
	PhoneInvalid:      {"Please enter a valid phone number.", "يرجى إدخال رقم هاتف صحيح."},
	HoursRange:        {"Duration must be between 1 and 72 hours.", "يجب أن تكون المدة بين 1 و 72 ساعة."},
	DateInvalid:       {"Please choose a valid date.", "يرجى اختيار تاريخ صحيح."},
	DurationInvalid:   {"Please choose 30 or 60 minutes.", "يرجى اختيار 30 أو 60 دقيقة."},
	QuantityInvalid:   {"Please enter at least one person.", "يرجى إدخال شخص واحد على الأقل."},
	InvalidRequest:    {"The request could not be understood.", "تعذر فهم الطلب."},
	NotFound:          {"The requested item was not found.", "العنصر المطلوب غير موجود."},
	YachtUnavailable:  {"This yacht is not available for booking.", "هذا اليخت غير متاح للحجز."},
	ItemUnavailable:   {"This service is currently unavailable.", "هذه الخدمة غير متاحة حالياً."},
	BookingSubmitted:  {"Your booking request has been received. We will contact you shortly.", "تم استلام طلب الحجز. سنتواصل معك قريباً."},
	BookingFailed:     {"We could not save your booking. Please try again.", "تعذر حفظ الحجز. يرجى المحاولة مرة أخرى."},
	TryAgain:          {"The service is busy right now. Please try again in a moment.", "الخدمة مشغولة حالياً. يرجى المحاولة بعد قليل."},
	Generic:           {"Something went wrong. Please try again later.", "حدث خطأ ما. يرجى المحاولة لاحقاً."},
	TooManyRequests:   {"Too many requests. Please slow down.", "طلبات كثيرة جداً. يرجى التمهل."},
	Unauthorized:      {"Please sign in to continue.", "يرجى تسجيل الدخول للمتابعة."},
	Forbidden:         {"You do not have access to this page.", "ليس لديك صلاحية الوصول إلى هذه الصفحة."},
	CartEmpty:         {"Your list is empty.", "قائمتك فارغة."},
	WhatsAppUnset:     {"WhatsApp booking is not available right now.", "الحجز عبر واتساب غير متاح حالياً."},
	InvalidStatus:     {"Unknown booking status.", "حالة حجز غير معروفة."},
	UnknownSetting:    {"Unknown setting.", "إعداد غير معروف."},
	InvalidTransition: {"This step is not allowed right now.", "هذه الخطوة غير مسموحة حالياً."},
}

// T returns the message for key in lang.  Unknown keys fall back to the
// generic message so raw keys never reach a user.
func T(lang Lang, key Key) string {
	m, ok := messages[key]
	if !ok {
		m = messages[Generic]
	}
	if lang == AR {
		return m[1]
	}
	return m[0]
}

var matcher = language.NewMatcher([]language.Tag{language.English, language.Arabic})

// Pick chooses the display language.  An explicit ?lang= value wins over
// the Accept-Language header; anything unrecognised means English.
func Pick(query, acceptLanguage string) Lang {
	switch Lang(strings.ToLower(strings.TrimSpace(query))) {
	case EN:
		return EN
	case AR:
		return AR
	}
	if acceptLanguage == "" {
		return EN
	}
	tags, _, err := language.ParseAcceptLanguage(acceptLanguage)
	if err != nil || len(tags) == 0 {
		return EN
	}
	_, idx, conf := matcher.Match(tags...)
	if conf == language.No {
		return EN
	}
	if idx == 1 {
		return AR
	}
	return EN
}
