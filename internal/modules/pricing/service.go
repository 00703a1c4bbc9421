// README: Pricing service computes fare estimates.
package pricing

import (
	"strings"

	"github.com/sirupsen/logrus"

	"jeeny/internal/types"
)

type Service struct {
	rates Rates
	log   logrus.FieldLogger
}

func NewService(rates Rates, log logrus.FieldLogger) *Service {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Service{rates: rates, log: log.WithField("component", "pricing")}
}

func (s *Service) Rates() Rates {
	return s.rates
}

// Estimate returns (base + km*perKm + min*perMin) * multiplier, rounded to two
// decimals. Zero distance or duration yields the base component only.
func (s *Service) Estimate(distanceKm, durationMin float64, class CarClass) types.Money {
	cost := s.rates.BaseFare + distanceKm*s.rates.PerKm + durationMin*s.rates.PerMin
	return types.MoneyFromFloat(cost*class.Multiplier(), s.rates.Currency)
}

// EstimateNamed resolves className first. An unknown name is priced as
// Standard and the returned error wraps ErrInvalidCarClass; the fare is
// still usable.
func (s *Service) EstimateNamed(distanceKm, durationMin float64, className string) (types.Money, CarClass, error) {
	class, err := ResolveClass(className, s.log)
	return s.Estimate(distanceKm, durationMin, class), class, err
}

// ResolveClass parses a requested class name. An empty name means Standard.
// An unknown name degrades to Standard, is logged as a warning, and the
// returned error wraps ErrInvalidCarClass.
func ResolveClass(name string, log logrus.FieldLogger) (CarClass, error) {
	if strings.TrimSpace(name) == "" {
		return CarClassStandard, nil
	}
	class, err := ParseCarClass(name)
	if err != nil {
		if log == nil {
			log = logrus.StandardLogger()
		}
		log.WithField("car_class", name).Warn("unknown car class, pricing as standard")
	}
	return class, err
}
