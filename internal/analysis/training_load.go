package analysis

import (
	"fmt"
	"math"
	"sort"
	"time"

	"cadence/internal/store"
)

// HRZones represents athlete's heart rate zones
type HRZones struct {
	RestingHR   float64
	MaxHR       float64
	ThresholdHR float64 // lactate threshold, the HRSS reference
}

// DefaultZones returns sensible defaults if not configured
func DefaultZones() HRZones {
	return HRZones{
		RestingHR:   50,
		MaxHR:       185,
		ThresholdHR: 165,
	}
}

// TRIMP calculates Training Impulse (Banister model) from the activity's
// average heart rate
// TRIMP = duration (min) * ΔHR ratio * e^(b * ΔHR ratio)
// where b = 1.92 for men, 1.67 for women (using male default)
func TRIMP(activity store.ActivitySummary, zones HRZones) float64 {
	if activity.AvgHR == nil || *activity.AvgHR <= 0 {
		return 0
	}

	// Heart rate reserve ratio
	hrReserve := zones.MaxHR - zones.RestingHR
	if hrReserve <= 0 {
		return 0
	}

	hrRatio := (*activity.AvgHR - zones.RestingHR) / hrReserve
	hrRatio = math.Max(0, math.Min(1, hrRatio))

	// Gender coefficient (using male default)
	b := 1.92

	return activity.MovingTimeMin * hrRatio * math.Exp(b*hrRatio)
}

// HRSS scales TRIMP so that one hour at threshold heart rate scores 100.
// It is 0 without heart rate data or a threshold inside the HR reserve.
func HRSS(activity store.ActivitySummary, zones HRZones) float64 {
	trimp := TRIMP(activity, zones)
	if trimp == 0 || zones.ThresholdHR <= zones.RestingHR || zones.ThresholdHR > zones.MaxHR {
		return 0
	}
	threshold := TRIMP(store.ActivitySummary{MovingTimeMin: 60, AvgHR: &zones.ThresholdHR}, zones)
	if threshold == 0 {
		return 0
	}
	return trimp / threshold * 100
}

// WeeklyHRSS sums HRSS over activities that started in the 7 days before
// asOf. ok is false when none of them carries heart rate data.
func WeeklyHRSS(activities []store.ActivitySummary, zones HRZones, asOf time.Time) (float64, bool) {
	from := asOf.Add(-7 * 24 * time.Hour)
	var total float64
	ok := false
	for _, a := range activities {
		start, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil || start.Before(from) || start.After(asOf) {
			continue
		}
		if hrss := HRSS(a, zones); hrss > 0 {
			total += hrss
			ok = true
		}
	}
	return total, ok
}

// DailyLoad represents training load for a single day
type DailyLoad struct {
	Date  time.Time
	TRIMP float64
}

// FitnessMetrics represents CTL/ATL/TSB for a day
type FitnessMetrics struct {
	Date time.Time
	CTL  float64 // Chronic Training Load (42-day EMA) - "Fitness"
	ATL  float64 // Acute Training Load (7-day EMA) - "Fatigue"
	TSB  float64 // Training Stress Balance (CTL - ATL) - "Form"
}

// DailyLoads converts mirrored activities into per-activity loads. Entries
// without a parseable start date or heart rate are skipped.
func DailyLoads(activities []store.ActivitySummary, zones HRZones) []DailyLoad {
	var loads []DailyLoad
	for _, a := range activities {
		start, err := time.Parse(time.RFC3339, a.StartDate)
		if err != nil {
			continue
		}
		trimp := TRIMP(a, zones)
		if trimp == 0 {
			continue
		}
		loads = append(loads, DailyLoad{Date: start.UTC(), TRIMP: trimp})
	}
	return loads
}

// CalculateFitnessTrend computes CTL/ATL/TSB from daily loads, one entry per
// day from the first load through the last
func CalculateFitnessTrend(dailyLoads []DailyLoad) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}
	last := dailyLoads[0].Date
	for _, dl := range dailyLoads {
		if dl.Date.After(last) {
			last = dl.Date
		}
	}
	return CalculateFitnessTrendUntil(dailyLoads, last)
}

// CalculateFitnessTrendUntil is CalculateFitnessTrend carried forward with
// rest days through end
func CalculateFitnessTrendUntil(dailyLoads []DailyLoad, end time.Time) []FitnessMetrics {
	if len(dailyLoads) == 0 {
		return nil
	}

	sorted := make([]DailyLoad, len(dailyLoads))
	copy(sorted, dailyLoads)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	// EMA decay constants
	ctlDecay := 2.0 / (42.0 + 1.0) // 42-day time constant
	atlDecay := 2.0 / (7.0 + 1.0)  // 7-day time constant

	// Sum multiple activities on the same day
	loadMap := make(map[string]float64)
	for _, dl := range sorted {
		loadMap[dl.Date.Format("2006-01-02")] += dl.TRIMP
	}

	startDate := sorted[0].Date.Truncate(24 * time.Hour)
	endDate := end.Truncate(24 * time.Hour)

	var metrics []FitnessMetrics
	var ctl, atl float64
	for d := startDate; !d.After(endDate); d = d.AddDate(0, 0, 1) {
		trimp := loadMap[d.Format("2006-01-02")] // 0 on rest days

		ctl += ctlDecay * (trimp - ctl)
		atl += atlDecay * (trimp - atl)

		metrics = append(metrics, FitnessMetrics{
			Date: d,
			CTL:  ctl,
			ATL:  atl,
			TSB:  ctl - atl,
		})
	}

	return metrics
}

// CurrentFitness returns CTL/ATL/TSB as of asOf for the mirrored activities.
// ok is false when no activity carries heart rate data.
func CurrentFitness(activities []store.ActivitySummary, zones HRZones, asOf time.Time) (FitnessMetrics, bool) {
	metrics := CalculateFitnessTrendUntil(DailyLoads(activities, zones), asOf.UTC())
	if len(metrics) == 0 {
		return FitnessMetrics{}, false
	}
	return metrics[len(metrics)-1], true
}

// FormDescription returns a human-readable description of TSB
func FormDescription(tsb float64) string {
	switch {
	case tsb > 25:
		return "Very fresh (possibly detrained)"
	case tsb > 10:
		return "Fresh and ready to race"
	case tsb > 0:
		return "Neutral - good for training"
	case tsb > -10:
		return "Slightly fatigued"
	case tsb > -25:
		return "Tired but building fitness"
	default:
		return "Very fatigued - rest needed"
	}
}

// Describe renders the metrics as one line of coach context
func (m FitnessMetrics) Describe() string {
	return fmt.Sprintf("Training load: fitness (CTL) %.0f, fatigue (ATL) %.0f, form (TSB) %+.0f - %s",
		m.CTL, m.ATL, m.TSB, FormDescription(m.TSB))
}
