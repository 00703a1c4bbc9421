// README: Car classes and the shared fare rates.
package pricing

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidCarClass = errors.New("invalid car class")

// InvalidCarClassError carries the rejected name; it matches ErrInvalidCarClass.
type InvalidCarClassError struct {
	Name string
}

func (e *InvalidCarClassError) Error() string {
	return fmt.Sprintf("%s: %q", ErrInvalidCarClass, e.Name)
}

func (e *InvalidCarClassError) Is(target error) bool {
	return target == ErrInvalidCarClass
}

// CarClass is the closed set of vehicle tiers. The zero value is Standard.
type CarClass int

const (
	CarClassStandard CarClass = iota
	CarClassTaxi
	CarClassFamily
	CarClassVIP
)

type classInfo struct {
	name       string
	arabic     string
	multiplier float64
	note       string
}

var classTable = [...]classInfo{
	CarClassStandard: {name: "standard", arabic: "عادية", multiplier: 1.0, note: "السعر الأساسي"},
	CarClassTaxi:     {name: "taxi", arabic: "تاكسي", multiplier: 1.15, note: "زيادة 15% للتاكسي"},
	CarClassFamily:   {name: "family", arabic: "عائلية", multiplier: 1.3, note: "زيادة 30% للسيارة العائلية"},
	CarClassVIP:      {name: "vip", arabic: "VIP", multiplier: 1.5, note: "زيادة 50% لخدمة VIP"},
}

// CarClasses lists every class in ascending price order.
func CarClasses() []CarClass {
	return []CarClass{CarClassStandard, CarClassTaxi, CarClassFamily, CarClassVIP}
}

func (c CarClass) Valid() bool {
	return c >= CarClassStandard && c <= CarClassVIP
}

func (c CarClass) info() classInfo {
	if !c.Valid() {
		return classTable[CarClassStandard]
	}
	return classTable[c]
}

func (c CarClass) String() string      { return c.info().name }
func (c CarClass) ArabicName() string  { return c.info().arabic }
func (c CarClass) Multiplier() float64 { return c.info().multiplier }

// PriceNote is the rider-facing surcharge line for the class.
func (c CarClass) PriceNote() string { return c.info().note }

func (c CarClass) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}

func (c *CarClass) UnmarshalText(b []byte) error {
	v, err := ParseCarClass(string(b))
	if err != nil {
		return err
	}
	*c = v
	return nil
}

// ParseCarClass accepts the canonical English name or the Arabic label,
// ignoring case and surrounding space.
func ParseCarClass(s string) (CarClass, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	for _, c := range CarClasses() {
		info := classTable[c]
		if key == info.name || key == strings.ToLower(info.arabic) {
			return c, nil
		}
	}
	return CarClassStandard, &InvalidCarClassError{Name: s}
}

// Rates are shared by all classes; only the multiplier varies per class.
type Rates struct {
	BaseFare float64 `mapstructure:"base_fare"`
	PerKm    float64 `mapstructure:"per_km"`
	PerMin   float64 `mapstructure:"per_min"`
	Currency string  `mapstructure:"currency"`
}

func DefaultRates() Rates {
	return Rates{BaseFare: 0.5, PerKm: 0.25, PerMin: 0.05, Currency: "JOD"}
}
