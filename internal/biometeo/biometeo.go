// Package biometeo provides stateless unit conversions and biometeorological
// comfort indexes: saturation and actual vapor pressure, dewpoint and
// relative-humidity conversions, apparent temperature, wind chill (Steadman
// and Environment Canada), the NWS heat index, Thom's discomfort index,
// humidex, and the relative strain index.
//
// All temperatures are degrees Celsius unless a function says otherwise;
// use the conversion helpers at call sites working in other units. Formulas
// follow the published sources cited on each function.
package biometeo

import (
	"errors"
	"math"
)

// ErrOutOfRange is returned when an index formula is applied outside the
// conditions it was fitted for.
var ErrOutOfRange = errors.New("biometeo: input outside the formula's valid range")

// CelsiusToFahrenheit converts °C to °F.
func CelsiusToFahrenheit(tc float64) float64 { return tc*9/5 + 32 }

// FahrenheitToCelsius converts °F to °C.
func FahrenheitToCelsius(tf float64) float64 { return (tf - 32) * 5 / 9 }

// CelsiusToKelvin converts °C to K.
func CelsiusToKelvin(tc float64) float64 { return tc + 273.15 }

// KelvinToCelsius converts K to °C.
func KelvinToCelsius(tk float64) float64 { return tk - 273.15 }

// FahrenheitToKelvin converts °F to K.
func FahrenheitToKelvin(tf float64) float64 { return FahrenheitToCelsius(tf) + 273.15 }

// KelvinToFahrenheit converts K to °F.
func KelvinToFahrenheit(tk float64) float64 { return CelsiusToFahrenheit(tk - 273.15) }

// SaturationVaporPressure returns the saturation vapor pressure in Pa for an
// air temperature in °C, using Huang's approximation with separate fits for
// water (T > 0) and ice.
//
// Huang, J. (2018). "A simple accurate formula for calculating saturation
// vapor pressure of water and ice." J. Appl. Meteor. Climatol. 57(6).
func SaturationVaporPressure(t float64) float64 {
	if t > 0 {
		return math.Exp(34.494-4924.99/(t+237.1)) / math.Pow(t+105, 1.57)
	}
	return math.Exp(43.494-6545.8/(t+278)) / math.Pow(t+868, 2)
}

// ActualVaporPressure returns the actual vapor pressure in Pa given air
// temperature in °C and relative humidity in percent.
func ActualVaporPressure(t, rh float64) float64 {
	return rh * SaturationVaporPressure(t) / 100
}

// DewpointFromRelativeHumidity converts relative humidity in percent at air
// temperature t (°C) to a dewpoint temperature in °C.
//
// Converted from the weathermetrics R package.
func DewpointFromRelativeHumidity(t, rh float64) float64 {
	return math.Pow(rh/100, 1.0/8)*(112+0.9*t) - 112 + 0.1*t
}

// RelativeHumidityFromDewpoint converts a dewpoint td (°C) at air
// temperature t (°C) to relative humidity in percent.
//
// Converted from the weathermetrics R package.
func RelativeHumidityFromDewpoint(t, td float64) float64 {
	x := (112 - 0.1*t + td) / (112 + 0.9*t)
	return 100 * math.Pow(x, 8)
}

// Condition selects the environment an apparent-temperature estimate
// applies to.
type Condition int

const (
	// Indoors is Steadman's indoor formulation, ignoring wind.
	Indoors Condition = iota
	// Shade is Steadman's outdoor-in-shade formulation, which includes a
	// wind-speed term.
	Shade
)

// ApparentTemperature returns Steadman's apparent temperature in °C from
// air temperature t (°C), vapor pressure p (kPa), and wind speed ws (m/s,
// measured about 10 m above ground; only used for Shade).
//
// Steadman, R.G. (1984). "A universal scale of apparent temperature."
// J. Climate Appl. Meteor. 23(12).
func ApparentTemperature(t, p, ws float64, condition Condition) (float64, error) {
	switch condition {
	case Indoors:
		return -1.3 + 0.92*t + 2.2*p, nil
	case Shade:
		return -2.7 + 1.04*t + 2*p - 0.65*ws, nil
	default:
		return 0, errors.New("biometeo: unknown apparent-temperature condition")
	}
}

// UnitSystem selects the measurement system for WindChill.
type UnitSystem int

const (
	// Metric takes °C and m/s and returns °C.
	Metric UnitSystem = iota
	// US takes °F and mph and returns °F.
	US
)

// WindChill returns the Steadman wind chill for air temperature t and wind
// speed ws at 10 m, in the chosen unit system.
//
// Quayle, R.G.; Steadman, R.G. (1998). "The Steadman wind chill: an
// improvement over present scales." Wea. Forecasting 13(4).
func WindChill(t, ws float64, units UnitSystem) (float64, error) {
	switch units {
	case Metric:
		return 1.41 - 1.162*ws + 0.98*t + 0.0124*ws*ws + 0.0185*t*ws, nil
	case US:
		return 3.16 - 1.2*ws + 0.98*t + 0.0044*ws*ws + 0.0083*t*ws, nil
	default:
		return 0, errors.New("biometeo: unknown wind-chill unit system")
	}
}

// WindChillCanada returns the Environment Canada wind chill in °C for air
// temperature t (°C, at or below 0) and wind speed ws (km/h, non-negative).
// A separate linear form applies for light winds below 5 km/h. Returns
// ErrOutOfRange outside those conditions.
func WindChillCanada(t, ws float64) (float64, error) {
	switch {
	case t <= 0 && ws >= 5:
		pow := math.Pow(ws, 0.16)
		return 13.12 + 0.6215*t - 11.37*pow + 0.3965*t*pow, nil
	case t <= 0 && ws >= 0:
		return t + ((-1.59+0.1345*t)/5)*ws, nil
	default:
		return 0, ErrOutOfRange
	}
}

// HeatIndex returns the NWS heat index in °C for air temperature t (°C) and
// relative humidity rh (percent). Below 40 °F the index is the temperature
// itself; above the simple-average threshold the full Rothfusz regression
// applies, with the NWS low-humidity and high-humidity adjustments.
//
// Converted from the weathermetrics R package, after the NWS formula.
func HeatIndex(t, rh float64) float64 {
	tf := CelsiusToFahrenheit(t)

	var hi float64
	switch {
	case tf <= 40:
		hi = tf
	default:
		alpha := 61 + (tf-68)*1.2 + rh*0.094
		hi = 0.5 * (alpha + tf)
		if hi > 79 {
			hi = -42.379 + 2.04901523*tf + 10.14333127*rh -
				0.22475541*tf*rh - 6.83783e-3*tf*tf -
				5.481717e-2*rh*rh + 1.22874e-3*tf*tf*rh +
				8.5282e-4*tf*rh*rh - 1.99e-6*tf*tf*rh*rh

			if rh <= 13 && tf >= 80 && tf <= 112 {
				hi -= (13 - rh) / 4 * math.Sqrt((17-math.Abs(tf-95))/17)
			} else if rh > 85 && tf >= 80 && tf <= 87 {
				hi += (rh - 85) / 10 * (87 - tf) / 5
			}
		}
	}
	return FahrenheitToCelsius(hi)
}

// DiscomfortIndex returns Thom's discomfort index in °C from air
// temperature t (°C) and relative humidity rh (percent).
//
// Vaneckova, P. et al. (2011). J. Appl. Meteor. Climatol. 50(6).
func DiscomfortIndex(t, rh float64) float64 {
	return t - (0.55-0.0055*rh)*(t-14.5)
}

// Humidex returns the Environment Canada humidex in °C from air temperature
// t (°C) and dewpoint td (°C).
func Humidex(t, td float64) float64 {
	e := 6.112 * math.Exp(5417.7530*(1/273.15-1/CelsiusToKelvin(td))) // hPa
	return t + 0.5555*(e-10)
}

// HumidexFromRelativeHumidity is Humidex with the moisture input given as
// relative humidity in percent instead of a dewpoint.
func HumidexFromRelativeHumidity(t, rh float64) float64 {
	return Humidex(t, DewpointFromRelativeHumidity(t, rh))
}

// RelativeStrainIndex returns the relative strain index from air
// temperature t (°C) and partial water vapor pressure pwvp (mmHg).
//
// de Garín, A.; Bejarán, R. (2003). Int. J. Biometeorol. 48(1).
func RelativeStrainIndex(t, pwvp float64) float64 {
	return (10.7 + 0.74*(t-35)) / (44 - pwvp)
}
