package indicators

import (
	"time"

	"FinGauge/internal/domain/models"
	"FinGauge/pkg/timeseries"
)

// SentimentWindow is the trailing span the percentile ranks are taken
// over, five years of calendar days.
const SentimentWindow = 1825 * 24 * time.Hour

// Sentiment builds the greed proxy from volatility, put/call and high
// yield spread levels. The three series are forward filled onto the
// union of their dates, cut to the trailing five year window (or all
// available data if shorter) and percentile ranked; the mean rank is
// the fear quantile and the score is (1 − fear) × 100, high meaning
// greed. All three inputs are required.
func (e *Engine) Sentiment(vix, putCall, hyOAS timeseries.Series) models.IndicatorResult {
	if vix.Empty() || putCall.Empty() || hyOAS.Empty() {
		return models.GreyIndicator(models.IndicatorSentiment, sourceSentiment)
	}

	union := timeseries.UnionTimes(vix, putCall, hyOAS)
	filled := []timeseries.Series{
		timeseries.ForwardFillTo(vix, union),
		timeseries.ForwardFillTo(putCall, union),
		timeseries.ForwardFillTo(hyOAS, union),
	}
	ranks := make([]timeseries.Series, len(filled))
	for i, s := range filled {
		ranks[i] = timeseries.PercentileRank(s.TailWindow(SentimentWindow))
	}

	// The ranked series share one index; dates where any component is
	// still absent stay absent in the score.
	base := ranks[0]
	pts := make([]timeseries.Point, base.Len())
	for i := range pts {
		p := base.At(i)
		fear := p.Value
		for _, r := range ranks[1:] {
			fear += r.At(i).Value
		}
		fear /= float64(len(ranks))
		pts[i] = timeseries.Point{Time: p.Time, Value: (1 - fear) * 100}
	}
	return e.finish(models.IndicatorSentiment, timeseries.New(pts), sourceSentiment)
}
