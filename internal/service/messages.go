package service

import (
	"fmt"
	"strings"

	"jeeny/internal/modules/quote"
)

const (
	msgGreeting              = "أهلين! احكيلي من وين لوين بدك تروح وبحسبلك الأجرة."
	msgAskStart              = "من وين بدك تنطلق؟"
	msgAskDestination        = "وين بدك تروح؟"
	msgAskCarClass           = "أي نوع سيارة بدك؟ عادية، تاكسي، عائلية، أو VIP."
	msgNoPreviousTrip        = "ما في رحلة سابقة أعدّل عليها. احكيلي من وين لوين بدك تروح."
	msgSameCarClass          = "نوع السيارة %s مختار أصلاً لهاي الرحلة."
	msgUnknownCarClass       = "نوع السيارة \"%s\" مش معروف، اعتمدت السيارة العادية."
	msgPlaceNotFound         = "ما قدرت ألاقي موقع \"%s\". ممكن توضحلي أكثر؟"
	msgOutOfRegion           = "الموقع \"%s\" برا منطقة الخدمة. الخدمة متوفرة داخل الأردن فقط."
	msgNoRoute               = "ما لقيت طريق بين %s و %s."
	msgTripHeader            = "تفاصيل رحلتك:"
	msgCarChangedHeader      = "غيرت نوع السيارة من %s إلى %s:"
	msgLocationChangedHeader = "عدلت الرحلة:"
)

// FormatPlan renders a plan as the assistant's Arabic summary.
func FormatPlan(header string, plan *quote.Plan) string {
	q, d := plan.Quote, plan.Driver
	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	fmt.Fprintf(&b, "من: %s\n", plan.Start.Name)
	fmt.Fprintf(&b, "إلى: %s\n", plan.End.Name)
	fmt.Fprintf(&b, "المسافة: %s\n", q.DistanceText)
	fmt.Fprintf(&b, "المدة المتوقعة: %s\n", q.DurationText)
	fmt.Fprintf(&b, "نوع السيارة: %s (%s)\n", q.CarClass.ArabicName(), q.CarClass.PriceNote())
	fmt.Fprintf(&b, "التكلفة التقديرية: %.2f دينار\n", q.Cost.Float64())
	fmt.Fprintf(&b, "أقرب سائق على بعد %d متر، بيوصلك خلال %.1f دقيقة تقريباً.", d.OffsetDistanceM, d.ETAMin)
	return b.String()
}

var farewells = []string{"انهي", "انهاء", "إنهاء", "خروج", "exit", "quit", "شكرا لك", "شكراً لك"}

// IsFarewell reports whether the message ends the conversation.
func IsFarewell(message string) bool {
	m := strings.ToLower(strings.TrimSpace(message))
	for _, f := range farewells {
		if m == f {
			return true
		}
	}
	return false
}
