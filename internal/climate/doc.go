// Package climate detects extreme-climate events (heat waves, cold waves,
// and their humidity, pressure, range, and day-to-day-difference analogues)
// in daily meteorological series, calibrated against a long-term reference
// climatology (the "climatic normal").
//
// # Method
//
// Detection follows the percentile-climatology approach of Geirinhas et al.:
//
//  1. Both the climatic normal and the target series are normalized to a
//     365-day calendar: missing dates are gap-filled, February 29 is removed,
//     and every row carries a canonical day-of-year ordinal ("DAY365") in
//     [1, 365].
//  2. For each of the 365 canonical days, a percentile threshold is estimated
//     from the climatic normal using a centered window (default 15 days,
//     must be odd) whose occurrences across every reference year are pooled
//     into a single sample. Quantiles use linear interpolation between order
//     statistics.
//  3. Each target day is compared against its day-of-year threshold and
//     labeled exceeding (1) or not (0). The comparison policy depends on the
//     event kind: dual-bound for waves, single-bound for range events, and a
//     signed-agreement rule for day-to-day-difference events.
//  4. Maximal runs of at least three consecutive exceedance days become wave
//     events; every day of a qualifying run is marked "inside event".
//  5. Events aggregate into yearly and seasonal metrics (count N, maximum
//     duration D, total extreme days F) and per-event peak-anomaly
//     intensities.
//
// # DAY365 convention
//
// The leap day is removed outright and days dated March 1 or later in a leap
// year have their ordinal decremented by one, so day-of-year 60 is always
// March 1. Thresholds and comparisons are keyed by this canonical ordinal,
// which makes every year directly comparable against the 365-entry table.
//
// # Season convention
//
// Seasons are meteorological: Dec–Feb (1), Mar–May (2), Jun–Aug (3),
// Sep–Nov (4). For seasonal aggregation an event starting in December is
// attributed to the following year, reflecting a meteorological year that
// begins in December. Yearly aggregation uses the plain calendar year of the
// event's first day; the two attribution rules intentionally differ.
//
// # Purity
//
// Every function takes its inputs by value or clones before mutating and
// returns new data; caller-supplied series are never modified. The only
// impure touch point is the package clock used to stamp detection times,
// which tests can freeze via [SetClock].
package climate
