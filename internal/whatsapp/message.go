// Package whatsapp builds the pre-filled messages and wa.me deep links
// used to hand a booking or a shopping list over to a human.  Nothing
// here touches the network.
package whatsapp

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/skip2/go-qrcode"

	"github.com/iliyamo/yacht-charter/internal/i18n"
	"github.com/iliyamo/yacht-charter/internal/model"
	"github.com/iliyamo/yacht-charter/internal/pricing"
)

var ErrNoNumber = errors.New("whatsapp number not configured")

// Line is an extra priced line, e.g. a water sport from the services cart.
type Line struct {
	Name       string
	Detail     string
	PriceCents int64
}

// BookingRequest is everything a booking message mentions.
type BookingRequest struct {
	YachtName     string
	CustomerName  string
	CustomerEmail string
	CustomerPhone string
	Date          string
	StartTime     string
	Hours         int
	Options       []model.YachtOption
	Extras        []Line
	TotalCents    int64
	Currency      string
	Promotion     *model.Promotion
	Lang          i18n.Lang
}

type label int

const (
	lblGreeting label = iota
	lblYacht
	lblDate
	lblTime
	lblDuration
	lblHours
	lblOptions
	lblExtras
	lblTotal
	lblPromotion
	lblName
	lblPhone
	lblEmail
	lblListGreeting
	lblDates
	lblServicesGreeting
	lblMinutes
	lblPersons
)

var labels = map[label][2]string{
	lblGreeting:     {"Hello, I would like to book a yacht.", "مرحباً، أرغب في حجز يخت."},
	lblYacht:        {"Yacht", "اليخت"},
	lblDate:         {"Date", "التاريخ"},
	lblTime:         {"Start time", "وقت البدء"},
	lblDuration:     {"Duration", "المدة"},
	lblHours:        {"hours", "ساعات"},
	lblOptions:      {"Options", "الإضافات"},
	lblExtras:       {"Services", "الخدمات"},
	lblTotal:        {"Total", "المجموع"},
	lblPromotion:    {"Promotion", "العرض"},
	lblName:         {"Name", "الاسم"},
	lblPhone:        {"Phone", "الهاتف"},
	lblEmail:        {"Email", "البريد الإلكتروني"},
	lblListGreeting: {"Hello, I am interested in the following yachts:", "مرحباً، أنا مهتم باليخوت التالية:"},
	lblDates:        {"Dates", "التواريخ"},

	lblServicesGreeting: {"Hello, I would like to book the following services:", "مرحباً، أرغب في حجز الخدمات التالية:"},
	lblMinutes:          {"min", "دقيقة"},
	lblPersons:          {"persons", "أشخاص"},
}

func tr(lang i18n.Lang, l label) string {
	if lang == i18n.AR {
		return labels[l][1]
	}
	return labels[l][0]
}

// Compose renders the plain text of a booking message.
func Compose(r BookingRequest) string {
	var b strings.Builder
	t := func(l label) string { return tr(r.Lang, l) }

	b.WriteString(t(lblGreeting))
	b.WriteString("\n\n")
	fmt.Fprintf(&b, "%s: %s\n", t(lblYacht), r.YachtName)
	if r.Date != "" {
		fmt.Fprintf(&b, "%s: %s\n", t(lblDate), r.Date)
	}
	if r.StartTime != "" {
		fmt.Fprintf(&b, "%s: %s\n", t(lblTime), r.StartTime)
	}
	if r.Hours > 0 {
		fmt.Fprintf(&b, "%s: %d %s\n", t(lblDuration), r.Hours, t(lblHours))
	}
	if len(r.Options) > 0 {
		fmt.Fprintf(&b, "\n%s:\n", t(lblOptions))
		for _, o := range r.Options {
			fmt.Fprintf(&b, "- %s (%s)\n", optionName(o, r.Lang), pricing.Format(o.PriceCents, r.Currency))
		}
	}
	if len(r.Extras) > 0 {
		fmt.Fprintf(&b, "\n%s:\n", t(lblExtras))
		writeLines(&b, r.Extras, r.Currency)
	}
	fmt.Fprintf(&b, "\n%s: %s\n", t(lblTotal), pricing.Format(r.TotalCents, r.Currency))
	if r.Promotion != nil {
		fmt.Fprintf(&b, "%s: %s\n", t(lblPromotion), promotionTitle(r.Promotion, r.Lang))
	}
	if r.CustomerName != "" || r.CustomerPhone != "" || r.CustomerEmail != "" {
		b.WriteString("\n")
		if r.CustomerName != "" {
			fmt.Fprintf(&b, "%s: %s\n", t(lblName), r.CustomerName)
		}
		if r.CustomerPhone != "" {
			fmt.Fprintf(&b, "%s: %s\n", t(lblPhone), r.CustomerPhone)
		}
		if r.CustomerEmail != "" {
			fmt.Fprintf(&b, "%s: %s\n", t(lblEmail), r.CustomerEmail)
		}
	}
	return strings.TrimRight(b.String(), "\n")
}

// ListEntry is one yacht of the shopping list.
type ListEntry struct {
	YachtName string
	StartDate string
	EndDate   string
}

// ComposeShoppingList renders the message for every yacht of interest.
func ComposeShoppingList(entries []ListEntry, lang i18n.Lang) string {
	var b strings.Builder
	b.WriteString(tr(lang, lblListGreeting))
	b.WriteString("\n")
	for i, e := range entries {
		fmt.Fprintf(&b, "\n%d. %s", i+1, e.YachtName)
		switch {
		case e.StartDate != "" && e.EndDate != "":
			fmt.Fprintf(&b, " (%s: %s - %s)", tr(lang, lblDates), e.StartDate, e.EndDate)
		case e.StartDate != "":
			fmt.Fprintf(&b, " (%s: %s)", tr(lang, lblDate), e.StartDate)
		}
	}
	return b.String()
}

// ComposeServices renders the message for the services cart: one line per
// service with its detail and price, then the total.
func ComposeServices(lines []Line, totalCents int64, currency string, lang i18n.Lang) string {
	var b strings.Builder
	b.WriteString(tr(lang, lblServicesGreeting))
	b.WriteString("\n\n")
	writeLines(&b, lines, currency)
	fmt.Fprintf(&b, "\n%s: %s", tr(lang, lblTotal), pricing.Format(totalCents, currency))
	return b.String()
}

// ServiceDetail describes the quantity of a service line: the minutes of
// a water sport, the persons of a food item, nothing for the rest.
func ServiceDetail(kind model.ItemKind, quantity int, lang i18n.Lang) string {
	switch kind {
	case model.KindWaterSport:
		return fmt.Sprintf("%d %s", quantity, tr(lang, lblMinutes))
	case model.KindFood:
		return fmt.Sprintf("%d %s", quantity, tr(lang, lblPersons))
	}
	return ""
}

func writeLines(b *strings.Builder, lines []Line, currency string) {
	for _, e := range lines {
		if e.Detail != "" {
			fmt.Fprintf(b, "- %s, %s (%s)\n", e.Name, e.Detail, pricing.Format(e.PriceCents, currency))
		} else {
			fmt.Fprintf(b, "- %s (%s)\n", e.Name, pricing.Format(e.PriceCents, currency))
		}
	}
}

// BuildMessage returns the URL-encoded text of a booking message, ready
// for the text parameter of a wa.me link.
func BuildMessage(r BookingRequest) string {
	return Encode(Compose(r))
}

// Encode escapes text for a query parameter, with spaces as %20.
func Encode(text string) string {
	return strings.ReplaceAll(url.QueryEscape(text), "+", "%20")
}

// Link builds the wa.me deep link.  Everything but digits is stripped
// from number, as wa.me expects the bare international number.
func Link(number, text string) (string, error) {
	digits := strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, number)
	if digits == "" {
		return "", ErrNoNumber
	}
	return "https://wa.me/" + digits + "?text=" + Encode(text), nil
}

// QR renders link as a PNG QR code of size×size pixels.
func QR(link string, size int) ([]byte, error) {
	return qrcode.Encode(link, qrcode.Medium, size)
}

func optionName(o model.YachtOption, lang i18n.Lang) string {
	if lang == i18n.AR && o.NameAR != "" {
		return o.NameAR
	}
	return o.Name
}

func promotionTitle(p *model.Promotion, lang i18n.Lang) string {
	title := p.Title
	if lang == i18n.AR && p.TitleAR != "" {
		title = p.TitleAR
	}
	if p.DiscountPercent > 0 {
		return fmt.Sprintf("%s (-%g%%)", title, p.DiscountPercent)
	}
	return title
}
