package loadgen

import (
	"math/rand/v2"
	"strconv"
)

// Ranges for generated body metrics.
const (
	weightMin   = 40.0
	weightRange = 80.0
	heightMin   = 150.0
	heightRange = 50.0
	ageMin      = 18
	ageRange    = 62
	timeMin     = 1
	timeRange   = 240
)

// Generator produces deterministic payloads for a seed.
type Generator struct {
	rnd *rand.Rand
}

// NewGenerator returns a generator seeded with seed.
func NewGenerator(seed uint64) *Generator {
	return &Generator{rnd: rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))}
}

// Valid returns a payload the service accepts. Roughly half of the fields
// are sent as strings.
func (g *Generator) Valid() Payload {
	weight := roundTo(weightMin+g.rnd.Float64()*weightRange, 1)
	height := roundTo(heightMin+g.rnd.Float64()*heightRange, 1)
	age := ageMin + g.rnd.IntN(ageRange)
	minutes := timeMin + g.rnd.IntN(timeRange)

	return Payload{
		"weight": g.floatValue(weight),
		"height": g.floatValue(height),
		"age":    g.intValue(age),
		"time":   g.intValue(minutes),
	}
}

// Invalid returns a payload the service must reject. The variant cycles on i.
func (g *Generator) Invalid(i int) Payload {
	p := g.Valid()
	switch i % 6 {
	case 0:
		delete(p, "weight")
	case 1:
		p["height"] = "tall"
	case 2:
		p["age"] = "30.5"
	case 3:
		p["time"] = nil
	case 4:
		p["weight"] = true
	default:
		p["age"] = []any{30}
	}
	return p
}

func (g *Generator) floatValue(v float64) any {
	if g.rnd.IntN(2) == 0 {
		return strconv.FormatFloat(v, 'f', -1, 64)
	}
	return v
}

func (g *Generator) intValue(v int) any {
	if g.rnd.IntN(2) == 0 {
		return strconv.Itoa(v)
	}
	return v
}

func roundTo(v float64, places int) float64 {
	p := 1.0
	for range places {
		p *= 10
	}
	return float64(int64(v*p+0.5)) / p
}
