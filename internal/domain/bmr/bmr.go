// Package bmr defines the contract for computing basal metabolic rate
// estimates from normalized body metrics.
package bmr

import (
	"errors"
	"fmt"
	"strings"

	"github.com/okian/basal/internal/domain/model"
	"github.com/shopspring/decimal"
)

// Supported formula names.
const (
	MifflinStJeorName  = "mifflin_st_jeor"
	HarrisBenedictName = "harris_benedict"
)

const (
	minutesPerDay = 1440
	resultPlaces  = 2
)

// ErrUnknownFormula is returned by New for an unsupported formula name.
var ErrUnknownFormula = errors.New("unknown bmr formula")

// Model computes a Result from a MetricRecord. Implementations must be
// pure: the same record always yields the same result.
type Model interface {
	Name() string
	Compute(rec model.MetricRecord) model.Result
}

// coefficients describes a linear estimate: base + w*weight + h*height + a*age.
type coefficients struct {
	base, weight, height, age float64
}

func (c coefficients) apply(rec model.MetricRecord) float64 {
	return c.base + c.weight*rec.Weight + c.height*rec.Height + c.age*float64(rec.Age)
}

// Linear is a sex-specific linear BMR formula.
type Linear struct {
	name   string
	male   coefficients
	female coefficients
}

// MifflinStJeor returns the Mifflin-St Jeor (1990) equation.
func MifflinStJeor() *Linear {
	return &Linear{
		name:   MifflinStJeorName,
		male:   coefficients{base: 5, weight: 10, height: 6.25, age: -5},
		female: coefficients{base: -161, weight: 10, height: 6.25, age: -5},
	}
}

// HarrisBenedict returns the revised Harris-Benedict equation (Roza & Shizgal, 1984).
func HarrisBenedict() *Linear {
	return &Linear{
		name:   HarrisBenedictName,
		male:   coefficients{base: 88.362, weight: 13.397, height: 4.799, age: -5.677},
		female: coefficients{base: 447.593, weight: 9.247, height: 3.098, age: -4.330},
	}
}

// New returns the model registered under name. Matching ignores case and
// surrounding whitespace; an empty name selects Mifflin-St Jeor.
func New(name string) (Model, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", MifflinStJeorName:
		return MifflinStJeor(), nil
	case HarrisBenedictName:
		return HarrisBenedict(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormula, name)
	}
}

// Name returns the formula identifier reported in results.
func (l *Linear) Name() string { return l.name }

// Compute evaluates the formula for both sexes and prorates the mean
// daily estimate over the record's elapsed minutes.
func (l *Linear) Compute(rec model.MetricRecord) model.Result {
	male := l.male.apply(rec)
	female := l.female.apply(rec)
	mean := (male + female) / 2

	return model.Result{
		Formula:        l.name,
		BMRMale:        round2(male),
		BMRFemale:      round2(female),
		BMR:            round2(mean),
		ElapsedMinutes: rec.Time,
		EnergyKcal:     round2(mean * float64(rec.Time) / minutesPerDay),
	}
}

// round2 rounds half away from zero on the shortest decimal form of v.
func round2(v float64) float64 {
	return decimal.NewFromFloat(v).Round(resultPlaces).InexactFloat64()
}
