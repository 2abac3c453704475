package usecase

import (
	"CrossAlert/internal/domain/models"
	"CrossAlert/pkg/util"
)

const (
	// maPeriod is the trailing window of the moving average.
	maPeriod = 10
	// detectWindow is how many of the most recent days DetectLatest scans.
	detectWindow = 3
	// minBars is the minimum series length for one confirmed boundary with
	// a defined predecessor: 10 for the predecessor's MA plus one more day.
	minBars = maPeriod + 1
)

const (
	reasonBuy  = "가격이 10일 이동평균선을 상향 돌파"
	reasonSell = "가격이 10일 이동평균선을 하향 돌파"
)

// ComputeIndicator augments bars with the trailing 10-day moving average of
// close. Pure function; MA10 is defined only from index 9 onward.
func ComputeIndicator(bars []models.Bar) []models.IndicatorPoint {
	series := make([]models.IndicatorPoint, len(bars))
	var sum float64
	for i, b := range bars {
		series[i] = models.IndicatorPoint{Bar: b}
		sum += b.Close
		if i >= maPeriod {
			sum -= bars[i-maPeriod].Close
		}
		if i >= maPeriod-1 {
			series[i].MA10 = util.Round2(sum / maPeriod)
			series[i].HasMA = true
		}
	}
	return series
}

// DetectLatest scans the last 3 days of the series from most recent
// backward and returns the first crossover found, or nil. A day is a BUY
// boundary when the previous close was at or below its ma10 and the current
// close is strictly above; SELL is the inverse. Days where either side
// lacks a defined ma10 are skipped. Fewer than 11 bars yields nil.
func DetectLatest(series []models.IndicatorPoint) *models.Signal {
	if len(series) < minBars {
		return nil
	}

	lo := len(series) - detectWindow
	if lo < 1 {
		lo = 1
	}
	for i := len(series) - 1; i >= lo; i-- {
		if sig := classifyBoundary(series, i); sig != nil {
			return sig
		}
	}
	return nil
}

// DetectAll returns every crossover across the full series in chronological
// order, for historical/chart display.
func DetectAll(series []models.IndicatorPoint) []models.Signal {
	if len(series) < minBars {
		return nil
	}

	var signals []models.Signal
	for i := 1; i < len(series); i++ {
		if sig := classifyBoundary(series, i); sig != nil {
			signals = append(signals, *sig)
		}
	}
	return signals
}

// classifyBoundary evaluates the day-over-day transition ending at index i.
// Comparison is strict on the "above" side and uses close only.
func classifyBoundary(series []models.IndicatorPoint, i int) *models.Signal {
	cur, prev := series[i], series[i-1]
	if !cur.HasMA || !prev.HasMA {
		return nil
	}

	prevAbove := prev.Close > prev.MA10
	currAbove := cur.Close > cur.MA10

	switch {
	case !prevAbove && currAbove:
		return &models.Signal{
			Date:   cur.Date,
			Type:   models.SignalBuy,
			Price:  cur.Close,
			MA10:   cur.MA10,
			Reason: reasonBuy,
		}
	case prevAbove && !currAbove:
		return &models.Signal{
			Date:   cur.Date,
			Type:   models.SignalSell,
			Price:  cur.Close,
			MA10:   cur.MA10,
			Reason: reasonSell,
		}
	}
	return nil
}
