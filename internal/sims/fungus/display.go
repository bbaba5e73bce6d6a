package fungus

import "image/color"

// DisplayMode selects which layer the display buffer encodes.
type DisplayMode uint8

const (
	DisplayDensity DisplayMode = iota
	DisplayTemperature
	DisplayHumidity
	DisplayNutrient
)

func (m DisplayMode) String() string {
	switch m {
	case DisplayTemperature:
		return "temperature"
	case DisplayHumidity:
		return "humidity"
	case DisplayNutrient:
		return "nutrient"
	default:
		return "density"
	}
}

var (
	densityPalette     = buildPalette(func(v float64) color.RGBA { return DensityColor(v) })
	temperaturePalette = buildPalette(func(v float64) color.RGBA { return TemperatureColor(v * MaxTemperature) })
	humidityPalette    = buildPalette(func(v float64) color.RGBA { return HumidityColor(v * MaxHumidity) })
	nutrientPalette    = buildPalette(func(v float64) color.RGBA { return NutrientColor(v * MaxNutrient) })
)

// Palette exposes the color palette for the current display mode.
func (w *World) Palette() []color.RGBA {
	switch w.mode {
	case DisplayTemperature:
		return temperaturePalette
	case DisplayHumidity:
		return humidityPalette
	case DisplayNutrient:
		return nutrientPalette
	default:
		return densityPalette
	}
}

// DisplayMode returns the layer currently encoded in Cells.
func (w *World) DisplayMode() DisplayMode { return w.mode }

// SetDisplayMode switches the layer encoded in Cells.
func (w *World) SetDisplayMode(m DisplayMode) {
	if m > DisplayNutrient {
		m = DisplayDensity
	}
	w.mode = m
	w.rebuildDisplay()
}

func buildPalette(fn func(v float64) color.RGBA) []color.RGBA {
	palette := make([]color.RGBA, 256)
	for i := range palette {
		palette[i] = fn(float64(i) / 255)
	}
	return palette
}

var (
	densityStops     = [4]float64{0, 0.33, 0.66, 1}
	densityStopColor = [4]color.RGBA{
		{R: 128, G: 0, B: 128, A: 255},
		{R: 0, G: 128, B: 255, A: 255},
		{R: 0, G: 255, B: 128, A: 255},
		{R: 255, G: 255, B: 0, A: 255},
	}
)

// DensityColor maps a density to the purple-blue-green-yellow gradient.
func DensityColor(d float64) color.RGBA {
	for i := 0; i < len(densityStops)-1; i++ {
		lo, hi := densityStops[i], densityStops[i+1]
		if d >= lo && d <= hi {
			return lerpColor(densityStopColor[i], densityStopColor[i+1], (d-lo)/(hi-lo))
		}
	}
	return color.RGBA{A: 255}
}

// TemperatureColor maps 0-30 °C from blue through green to red.
func TemperatureColor(t float64) color.RGBA {
	t = clamp(t, 0, MaxTemperature)
	half := MaxTemperature / 2
	if t <= half {
		ratio := t / half
		return color.RGBA{R: uint8(ratio * 255), G: 255, B: uint8((1 - ratio) * 255), A: 255}
	}
	ratio := (t - half) / half
	return color.RGBA{R: 255, G: uint8((1 - ratio) * 255), A: 255}
}

// HumidityColor maps 0-100 % from light beige to dark purple.
func HumidityColor(h float64) color.RGBA {
	return lerpColor(color.RGBA{R: 255, G: 228, B: 200, A: 255}, color.RGBA{R: 48, G: 25, B: 52, A: 255}, clamp(h, 0, MaxHumidity)/MaxHumidity)
}

// NutrientColor maps 0-100 from light beige to dark red.
func NutrientColor(n float64) color.RGBA {
	return lerpColor(color.RGBA{R: 255, G: 240, B: 225, A: 255}, color.RGBA{R: 128, A: 255}, clamp(n, 0, MaxNutrient)/MaxNutrient)
}

func lerpColor(a, b color.RGBA, t float64) color.RGBA {
	t = clamp(t, 0, 1)
	mix := func(x, y uint8) uint8 {
		return uint8(float64(x) + (float64(y)-float64(x))*t)
	}
	return color.RGBA{R: mix(a.R, b.R), G: mix(a.G, b.G), B: mix(a.B, b.B), A: 255}
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

func encodeDisplayValue(v, maxValue float64) uint8 {
	return uint8(clamp(v/maxValue, 0, 1)*255 + 0.5)
}

func (w *World) rebuildDisplay() {
	cells := w.curr.Cells()
	for i := range w.display {
		if i >= len(cells) {
			break
		}
		c := cells[i]
		switch w.mode {
		case DisplayTemperature:
			w.display[i] = encodeDisplayValue(c.Temperature, MaxTemperature)
		case DisplayHumidity:
			w.display[i] = encodeDisplayValue(c.Humidity, MaxHumidity)
		case DisplayNutrient:
			w.display[i] = encodeDisplayValue(c.Nutrient, MaxNutrient)
		default:
			w.display[i] = encodeDisplayValue(c.Density, 1)
		}
	}
}
