package camera

import (
	"context"

	"github.com/golang/geo/r2"
	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/linescan/utils"
)

// RoundTripStats summarizes pixel -> point -> pixel errors in pixels.
type RoundTripStats struct {
	Count  int
	Failed int
	Mean   float64
	Max    float64
	P95    float64
}

type roundTrip struct {
	residual float64
	err      error
}

// CheckRoundTrip sends every pixel through the camera and back: the point at distance depth along the
// adjusted ray is projected with PointToPixel and compared with the pixel it came from. Statistics cover the
// pixels that made it back; the returned error combines the failures of the others.
func CheckRoundTrip(ctx context.Context, cam *AdjustedCamera, pixels []r2.Point, depth float64) (RoundTripStats, error) {
	if len(pixels) == 0 {
		return RoundTripStats{}, errors.New("no pixels to check")
	}
	if !(depth > 0) {
		return RoundTripStats{}, errors.Errorf("depth must be positive, got %g", depth)
	}

	results := make([]roundTrip, len(pixels))
	if err := utils.GroupWorkParallel(ctx, len(pixels), func(_, _, _, _ int) (utils.MemberWorkFunc, utils.GroupWorkDoneFunc) {
		return func(_, i int) {
			results[i] = roundTripPixel(cam, pixels[i], depth)
		}, nil
	}); err != nil {
		return RoundTripStats{}, err
	}

	failed := lo.Filter(results, func(r roundTrip, _ int) bool { return r.err != nil })
	residuals := lo.FilterMap(results, func(r roundTrip, _ int) (float64, bool) { return r.residual, r.err == nil })
	summary := RoundTripStats{Count: len(residuals), Failed: len(failed)}
	errs := multierr.Combine(lo.Map(failed, func(r roundTrip, _ int) error { return r.err })...)
	if len(residuals) == 0 {
		return summary, errs
	}

	data := stats.Float64Data(residuals)
	var err error
	if summary.Mean, err = data.Mean(); err != nil {
		return summary, multierr.Append(errs, err)
	}
	if summary.Max, err = data.Max(); err != nil {
		return summary, multierr.Append(errs, err)
	}
	// Percentile needs at least two values at 95.
	if len(data) == 1 {
		summary.P95 = summary.Max
		return summary, errs
	}
	if summary.P95, err = data.Percentile(95); err != nil {
		return summary, multierr.Append(errs, err)
	}
	return summary, errs
}

func roundTripPixel(cam *AdjustedCamera, pix r2.Point, depth float64) roundTrip {
	center, direction, err := cam.Ray(pix)
	if err != nil {
		return roundTrip{err: errors.Wrapf(err, "pixel %v", pix)}
	}
	back, err := cam.PointToPixel(center.Add(direction.Mul(depth)))
	if err != nil {
		return roundTrip{err: errors.Wrapf(err, "pixel %v", pix)}
	}
	return roundTrip{residual: back.Sub(pix).Norm()}
}
