package pricing

import (
	"regexp"
	"strings"
)

// RE2 word boundaries are ASCII-only, so Arabic keywords use explicit
// whitespace anchors where a bare substring would be ambiguous.
// Checked in order: VIP before family before taxi, so "تاكسي VIP" is VIP.
var classPatterns = []struct {
	class    CarClass
	patterns []*regexp.Regexp
}{
	{CarClassVIP, compileAll(`\bvip\b`, `في\s*آي\s*بي`, `فاخر[ةه]?`, `درج[ةه]\s*(أولى|اولى)`, `ممتاز[ةه]`, `كلاس\s*عالي`, `\bluxury\b`)},
	{CarClassFamily, compileAll(`عائلي[ةه]?`, `كبير[ةه]`, `(7|٧|سبع|سبعة)\s*ركاب`, `(^|\s)فان($|\s)`, `باص\s*صغير`, `\bfamily\b`, `\bvan\b`)},
	{CarClassTaxi, compileAll(`تاكسي`, `تكسي`, `أجر[ةه]`, `\btaxi\b`, `\bcab\b`)},
	{CarClassStandard, compileAll(`عادي[ةه]?`, `\bstandard\b`, `\bnormal\b`)},
}

func compileAll(exprs ...string) []*regexp.Regexp {
	out := make([]*regexp.Regexp, len(exprs))
	for i, e := range exprs {
		out[i] = regexp.MustCompile(`(?i)` + e)
	}
	return out
}

// DetectCarClass scans free text for class keywords in Jordanian Arabic and
// English. ok is false when nothing matched.
func DetectCarClass(text string) (CarClass, bool) {
	text = strings.TrimSpace(text)
	if text == "" {
		return CarClassStandard, false
	}
	for _, cp := range classPatterns {
		for _, re := range cp.patterns {
			if re.MatchString(text) {
				return cp.class, true
			}
		}
	}
	return CarClassStandard, false
}
