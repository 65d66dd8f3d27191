// Package mockdata writes synthetic CSV files shaped like the US Accidents
// dataset. They are used for demos and tests when the real file is not at
// hand.
package mockdata

import (
	"encoding/csv"
	"fmt"
	"io"
	"math/rand"
	"strconv"
	"time"

	"github.com/jaswdr/faker"

	"github.com/couchcryptid/accident-analysis/internal/domain"
)

// Options controls the generated file.
type Options struct {
	Rows  int
	Seed  int64
	Start time.Time
	End   time.Time

	// BadRowEvery, when positive, writes an unparseable Start_Time on every
	// Nth data row (1-based) so chunk failure paths can be exercised.
	BadRowEvery int
}

// DefaultOptions covers the dataset's time span.
func DefaultOptions() Options {
	return Options{
		Rows:  10000,
		Seed:  1,
		Start: time.Date(2016, time.January, 1, 0, 0, 0, 0, time.UTC),
		End:   time.Date(2023, time.March, 31, 23, 59, 59, 0, time.UTC),
	}
}

// Bounding box of generated coordinates, roughly the contiguous US.
const (
	MinLat = 25.0
	MaxLat = 49.0
	MinLng = -124.0
	MaxLng = -67.0
)

var weatherConditions = []string{
	"Fair", "Clear", "Mostly Cloudy", "Overcast", "Partly Cloudy",
	"Cloudy", "Light Rain", "Scattered Clouds", "Light Snow", "Fog",
	"Rain", "Haze", "Fair / Windy", "Heavy Rain", "Thunderstorm",
}

var timezones = []string{"US/Eastern", "US/Central", "US/Mountain", "US/Pacific"}

// chance of each road feature being set, in percent
var featureChance = [domain.NumFeatures]int{
	domain.FeatureAmenity:       1,
	domain.FeatureBump:          1,
	domain.FeatureCrossing:      11,
	domain.FeatureJunction:      7,
	domain.FeatureNoExit:        1,
	domain.FeatureRailway:       1,
	domain.FeatureRoundabout:    1,
	domain.FeatureStation:       3,
	domain.FeatureStop:          3,
	domain.FeatureTrafficSignal: 15,
}

// Header returns the generated column order: an ID and source column the
// analysis ignores, followed by every projected column.
func Header() []string {
	return append([]string{"ID", "Source"}, domain.Columns()...)
}

// Generate writes a header and opts.Rows data rows to w.
func Generate(w io.Writer, opts Options) error {
	if opts.Rows < 0 {
		return fmt.Errorf("rows must not be negative, got %d", opts.Rows)
	}
	if !opts.End.After(opts.Start) {
		return fmt.Errorf("end %s must be after start %s", opts.End, opts.Start)
	}

	rng := rand.New(rand.NewSource(opts.Seed))
	fake := faker.NewWithSeed(rng)
	cw := csv.NewWriter(w)
	if err := cw.Write(Header()); err != nil {
		return fmt.Errorf("write header: %w", err)
	}

	row := make([]string, 2+int(domain.ColumnCount))
	for i := 1; i <= opts.Rows; i++ {
		fillRow(fake, rng, row, i, opts)
		if opts.BadRowEvery > 0 && i%opts.BadRowEvery == 0 {
			row[2+int(domain.ColStartTime)] = "not a timestamp"
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("write row %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

func fillRow(fake faker.Faker, rng *rand.Rand, row []string, n int, opts Options) {
	set := func(c domain.Column, v string) { row[2+int(c)] = v }

	row[0] = "A-" + strconv.Itoa(n)
	row[1] = fake.RandomStringElement([]string{"Source1", "Source2", "Source3"})

	start := fake.Time().TimeBetween(opts.Start, opts.End).UTC().Truncate(time.Second)
	end := start.Add(time.Duration(fake.IntBetween(5, 360)) * time.Minute)
	layout := "2006-01-02 15:04:05"
	if fake.Boolean().BoolWithChance(5) {
		layout = "2006-01-02 15:04:05.000000000"
	}

	set(domain.ColSeverity, strconv.Itoa(severity(fake)))
	set(domain.ColStartTime, start.Format(layout))
	set(domain.ColEndTime, end.Format(layout))

	if fake.Boolean().BoolWithChance(98) {
		set(domain.ColStartLat, decimal(between(rng, MinLat, MaxLat), 6))
		set(domain.ColStartLng, decimal(between(rng, MinLng, MaxLng), 6))
	} else {
		set(domain.ColStartLat, "")
		set(domain.ColStartLng, "")
	}

	set(domain.ColDistance, decimal(between(rng, 0, 5), 3))
	set(domain.ColCity, fake.Address().City())
	set(domain.ColState, fake.Address().StateAbbr())
	set(domain.ColZipcode, fake.Address().PostCode())
	set(domain.ColTimezone, fake.RandomStringElement(timezones))
	set(domain.ColTemperature, decimal(between(rng, -10, 105), 1))
	set(domain.ColHumidity, strconv.Itoa(fake.IntBetween(5, 100)))
	set(domain.ColVisibility, decimal(between(rng, 0, 10), 1))
	set(domain.ColWindSpeed, decimal(between(rng, 0, 30), 1))
	set(domain.ColPrecipitation, decimal(between(rng, 0, 1), 2))

	weather := ""
	if fake.Boolean().BoolWithChance(97) {
		weather = fake.RandomStringElement(weatherConditions)
	}
	set(domain.ColWeatherCondition, weather)

	for f := domain.Feature(0); f < domain.NumFeatures; f++ {
		set(f.Column(), boolString(fake.Boolean().BoolWithChance(featureChance[f])))
	}

	if start.Hour() >= 7 && start.Hour() < 19 {
		set(domain.ColSunriseSunset, "Day")
	} else {
		set(domain.ColSunriseSunset, "Night")
	}
}

// between returns a value in [lo, hi).
func between(rng *rand.Rand, lo, hi float64) float64 {
	return lo + rng.Float64()*(hi-lo)
}

func decimal(v float64, prec int) string {
	return strconv.FormatFloat(v, 'f', prec, 64)
}

// severity follows the dataset's skew toward level 2.
func severity(fake faker.Faker) int {
	switch p := fake.IntBetween(1, 100); {
	case p <= 2:
		return 1
	case p <= 82:
		return 2
	case p <= 97:
		return 3
	default:
		return 4
	}
}

func boolString(b bool) string {
	if b {
		return "True"
	}
	return "False"
}
