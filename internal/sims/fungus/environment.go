package fungus

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
)

// Field names one environment attribute of a cell.
type Field int

const (
	FieldTemperature Field = iota
	FieldHumidity
	FieldNutrient
)

func (f Field) String() string {
	switch f {
	case FieldTemperature:
		return "temperature"
	case FieldHumidity:
		return "humidity"
	case FieldNutrient:
		return "nutrient"
	default:
		return fmt.Sprintf("Field(%d)", int(f))
	}
}

// Max returns the top of the field's domain.
func (f Field) Max() float64 {
	switch f {
	case FieldTemperature:
		return MaxTemperature
	case FieldHumidity:
		return MaxHumidity
	default:
		return MaxNutrient
	}
}

// ParseField maps a field name to its Field.
func ParseField(s string) (Field, error) {
	switch strings.ToLower(s) {
	case "temperature", "temp", "t":
		return FieldTemperature, nil
	case "humidity", "hum", "h":
		return FieldHumidity, nil
	case "nutrient", "food", "n":
		return FieldNutrient, nil
	}
	return 0, fmt.Errorf("unknown environment field %q", s)
}

// Paint sets one environment attribute of a cell. The environment is fixed
// while the simulation runs.
func (w *World) Paint(row, col int, f Field, value float64) error {
	if w.running {
		return ErrRunning
	}
	if err := checkBounds(w.curr, row, col); err != nil {
		return err
	}
	if f < FieldTemperature || f > FieldNutrient {
		return fmt.Errorf("%w: unknown field %v", ErrInvalidEnvironment, f)
	}
	if !inRange(value, 0, f.Max()) {
		return fmt.Errorf("%w: %s %v outside [0,%v]", ErrInvalidEnvironment, f, value, f.Max())
	}
	c := w.curr.At(row, col)
	switch f {
	case FieldTemperature:
		c.Temperature = value
	case FieldHumidity:
		c.Humidity = value
	case FieldNutrient:
		c.Nutrient = value
	}
	w.rebuildDisplay()
	return nil
}

// SetEnvironment replaces all three environment attributes of a cell.
func (w *World) SetEnvironment(row, col int, temperature, humidity, nutrient float64) error {
	if w.running {
		return ErrRunning
	}
	if err := checkBounds(w.curr, row, col); err != nil {
		return err
	}
	if err := validateEnvironment(temperature, humidity, nutrient); err != nil {
		return err
	}
	c := w.curr.At(row, col)
	c.Temperature, c.Humidity, c.Nutrient = temperature, humidity, nutrient
	w.rebuildDisplay()
	return nil
}

// RandomizeEnvironment fills every cell with whole-number environment values
// drawn from the world's RNG.
func (w *World) RandomizeEnvironment() error {
	if w.running {
		return ErrRunning
	}
	w.randomize()
	w.rebuildDisplay()
	return nil
}

func (w *World) randomize() {
	cells := w.curr.Cells()
	for i := range cells {
		cells[i].Temperature = float64(w.rng.IntN(int(MaxTemperature)))
		cells[i].Humidity = float64(w.rng.IntN(int(MaxHumidity)))
		cells[i].Nutrient = float64(w.rng.IntN(int(MaxNutrient)))
	}
}

// EnvironmentRecord is one row of an environment CSV file.
type EnvironmentRecord struct {
	Row         int     `csv:"row"`
	Col         int     `csv:"col"`
	Temperature float64 `csv:"temperature"`
	Humidity    float64 `csv:"humidity"`
	Nutrient    float64 `csv:"nutrient"`
}

// LoadEnvironment applies per-cell environment values read as CSV with a
// row,col,temperature,humidity,nutrient header. Cells not listed keep their
// values. Nothing is applied unless every record is valid.
func (w *World) LoadEnvironment(r io.Reader) (int, error) {
	if w.running {
		return 0, ErrRunning
	}
	var records []EnvironmentRecord
	if err := gocsv.Unmarshal(r, &records); err != nil {
		return 0, fmt.Errorf("parsing environment csv: %w", err)
	}
	var errs []error
	for i, rec := range records {
		if err := checkBounds(w.curr, rec.Row, rec.Col); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i+1, err))
			continue
		}
		if err := validateEnvironment(rec.Temperature, rec.Humidity, rec.Nutrient); err != nil {
			errs = append(errs, fmt.Errorf("record %d: %w", i+1, err))
		}
	}
	if err := errors.Join(errs...); err != nil {
		return 0, err
	}
	for _, rec := range records {
		c := w.curr.At(rec.Row, rec.Col)
		c.Temperature, c.Humidity, c.Nutrient = rec.Temperature, rec.Humidity, rec.Nutrient
	}
	w.rebuildDisplay()
	return len(records), nil
}

// ExportEnvironment writes every cell's environment in the format read by
// LoadEnvironment.
func (w *World) ExportEnvironment(out io.Writer) error {
	records := make([]EnvironmentRecord, 0, w.rows*w.cols)
	for row := 0; row < w.rows; row++ {
		for col := 0; col < w.cols; col++ {
			c := w.curr.At(row, col)
			records = append(records, EnvironmentRecord{
				Row:         row,
				Col:         col,
				Temperature: c.Temperature,
				Humidity:    c.Humidity,
				Nutrient:    c.Nutrient,
			})
		}
	}
	if err := gocsv.Marshal(records, out); err != nil {
		return fmt.Errorf("writing environment csv: %w", err)
	}
	return nil
}
