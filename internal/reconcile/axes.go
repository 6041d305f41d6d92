package reconcile

import "readhub/pkg/models"

const percentDenominator = 100

// Snapshot projects a record onto its progress trackers. The percent
// tracker is always present and always enabled; the unit and time trackers
// are enabled only when the record carries enough data to express them.
func Snapshot(rec models.ReadableRecord) models.ProgressSnapshot {
	percent := clampInt(rec.ProgressPercent, 0, percentDenominator)

	pctCur := percent
	pctDen := percentDenominator
	trackers := []models.Tracker{{
		Axis:        models.AxisPercent,
		Enabled:     true,
		Current:     &pctCur,
		Denominator: &pctDen,
	}}

	switch rec.Kind {
	case models.KindBook:
		trackers = append(trackers, models.Tracker{
			Axis:        models.AxisUnit,
			Enabled:     rec.PageCount != nil || rec.CurrentPage != nil,
			Current:     rec.CurrentPage,
			Denominator: rec.PageCount,
		})
	case models.KindSerial:
		den := serialDenominator(rec)
		trackers = append(trackers, models.Tracker{
			Axis:        models.AxisUnit,
			Enabled:     den != nil || rec.CurrentUnit != nil,
			Current:     rec.CurrentUnit,
			Denominator: den,
		})
	}

	trackers = append(trackers, models.Tracker{
		Axis:        models.AxisTime,
		Enabled:     rec.CurrentSeconds != nil && rec.TotalSeconds != nil,
		Current:     rec.CurrentSeconds,
		Denominator: rec.TotalSeconds,
	})

	return models.ProgressSnapshot{Percent: percent, Trackers: trackers}
}

// ApplyUpdate folds one axis edit into the record and keeps the other axes
// consistent. It never fails: an update the record cannot express is a
// caller contract violation and returns the record unchanged.
func ApplyUpdate(rec models.ReadableRecord, upd models.ProgressUpdate) models.ReadableRecord {
	if !models.ValidKind(rec.Kind) {
		return rec
	}

	switch u := upd.(type) {
	case models.PercentUpdate:
		return applyPercent(rec, u)
	case models.UnitUpdate:
		return applyUnit(rec, u)
	case models.TimeUpdate:
		return applyTime(rec, u)
	default:
		return rec
	}
}

func applyPercent(rec models.ReadableRecord, u models.PercentUpdate) models.ReadableRecord {
	percent := clampInt(u.Percent, 0, percentDenominator)
	rec.ProgressPercent = percent
	rec.ProgressMode = models.ModePercent

	// Keep the unit view roughly in sync when a denominator exists;
	// with no denominator the unit is left where it was.
	if den := unitDenominator(rec); den != nil && *den > 0 {
		unit := unitsFromPercent(percent, *den)
		setCurrentUnit(&rec, unit)
	}
	return rec
}

func applyUnit(rec models.ReadableRecord, u models.UnitUpdate) models.ReadableRecord {
	value := u.Value
	if value < 0 {
		value = 0
	}

	den := unitDenominator(rec)
	if den != nil && *den > 0 {
		value = clampInt(value, 0, *den)
	}

	setCurrentUnit(&rec, value)
	rec.ProgressMode = models.ModeUnits

	// A ratio needs a positive denominator; without one the canonical
	// percent stays untouched.
	if den != nil && *den > 0 {
		rec.ProgressPercent = percentFromRatio(value, *den)
	}
	return rec
}

func applyTime(rec models.ReadableRecord, u models.TimeUpdate) models.ReadableRecord {
	if u.Total <= 0 {
		return rec
	}

	current := clampInt(u.Current, 0, u.Total)
	total := u.Total
	rec.CurrentSeconds = &current
	rec.TotalSeconds = &total
	rec.ProgressMode = models.ModeTime
	rec.ProgressPercent = percentFromRatio(current, total)
	return rec
}

// unitDenominator picks the number a current unit is expressed against.
// Books use the page count; serials prefer the planned total, then the
// published count, then the legacy field. A value of zero counts as
// unknown and is never a division target.
func unitDenominator(rec models.ReadableRecord) *int {
	switch rec.Kind {
	case models.KindBook:
		return rec.PageCount
	case models.KindSerial:
		return serialDenominator(rec)
	}
	return nil
}

func serialDenominator(rec models.ReadableRecord) *int {
	switch {
	case rec.TotalUnits != nil:
		return rec.TotalUnits
	case rec.AvailableUnits != nil:
		return rec.AvailableUnits
	default:
		return rec.LegacyUnitCount
	}
}

func setCurrentUnit(rec *models.ReadableRecord, value int) {
	v := value
	switch rec.Kind {
	case models.KindBook:
		rec.CurrentPage = &v
	case models.KindSerial:
		rec.CurrentUnit = &v
	}
}

// percentFromRatio computes round-half-away-from-zero of value*100/den.
// Inputs are non-negative by the time this is called, so half-away equals
// half-up in integer form.
func percentFromRatio(value, den int) int {
	if den <= 0 {
		return 0
	}
	return clampInt((value*percentDenominator*2+den)/(den*2), 0, percentDenominator)
}

// unitsFromPercent is the reverse projection: round(percent/100 * den).
func unitsFromPercent(percent, den int) int {
	if den <= 0 {
		return 0
	}
	return (percent*den*2 + percentDenominator) / (2 * percentDenominator)
}

func clampInt(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
