package sensor_simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"
)

// ====== Tunables ======
const (
	// tempDriftPerMin bounds the random walk of the temperature.
	tempDriftPerMin = 0.2

	// humidityDriftPerMin bounds the random walk of the relative humidity.
	humidityDriftPerMin = 0.5

	// batteryDrainPerHour is the raw ADC count lost per hour.
	batteryDrainPerHour = 4.0

	// batteryFull is the raw ADC value of a charged pack.
	batteryFull = 900
)

// DataGenerator keeps a slowly drifting climate and a draining battery.
type DataGenerator struct {
	mu          sync.Mutex
	rng         *rand.Rand
	last        time.Time
	now         func() time.Time
	temperature float64
	humidity    float64
	battery     float64
	dropoutRate float64 // probability a climate read fails
	dayStart    int     // hour daylight begins
	dayEnd      int     // hour daylight ends
}

// NewDataGenerator seeds the climate at temp/humidity. dropoutRate in [0..1]
// makes climate reads fail that fraction of the time.
func NewDataGenerator(seed int64, temp, humidity, dropoutRate float64) *DataGenerator {
	return &DataGenerator{
		rng:         rand.New(rand.NewSource(seed)),
		now:         time.Now,
		temperature: temp,
		humidity:    clamp(humidity, 0, 100),
		battery:     batteryFull,
		dropoutRate: clamp(dropoutRate, 0, 1),
		dayStart:    6,
		dayEnd:      20,
	}
}

// advance moves the walk forward to the current time. Caller holds mu.
func (g *DataGenerator) advance() {
	now := g.now()
	if g.last.IsZero() {
		g.last = now
		return
	}
	dtMin := now.Sub(g.last).Minutes()
	if dtMin <= 0 {
		return
	}
	g.last = now
	g.temperature += (g.rng.Float64()*2 - 1) * tempDriftPerMin * dtMin
	g.humidity = clamp(g.humidity+(g.rng.Float64()*2-1)*humidityDriftPerMin*dtMin, 0, 100)
	g.battery = math.Max(0, g.battery-batteryDrainPerHour*dtMin/60)
}

func (g *DataGenerator) Temperature() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	if g.rng.Float64() < g.dropoutRate {
		return math.NaN()
	}
	return g.temperature
}

func (g *DataGenerator) Humidity() float64 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	if g.rng.Float64() < g.dropoutRate {
		return math.NaN()
	}
	return g.humidity
}

func (g *DataGenerator) BatteryRaw() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.advance()
	return int(math.Round(g.battery))
}

// LightState is 1 during daylight hours.
func (g *DataGenerator) LightState() int {
	g.mu.Lock()
	h := g.now().Hour()
	g.mu.Unlock()
	if h >= g.dayStart && h < g.dayEnd {
		return 1
	}
	return 0
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
