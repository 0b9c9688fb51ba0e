package camera

import (
	"context"
	"testing"

	"github.com/golang/geo/r2"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/test"

	"go.viam.com/linescan/logging"
)

func TestCheckRoundTrip(t *testing.T) {
	base := newTestBase(t)
	position := newRPN(t, "t 2 * 100 / 99 +", "t .8 * 1000 -", "t .5 * 2000 +")
	pose := newRPN(t, ".005", "-.013 t *", "0")
	cam, err := NewAdjustedCamera("diag", base, position, pose, logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	summary, err := CheckRoundTrip(context.Background(), cam, randomPixels(7, 64), testDepth)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, summary.Count, test.ShouldEqual, 64)
	test.That(t, summary.Failed, test.ShouldEqual, 0)
	test.That(t, summary.Max, test.ShouldBeLessThan, 0.001)
	test.That(t, summary.Mean, test.ShouldBeLessThanOrEqualTo, summary.Max)
	test.That(t, summary.P95, test.ShouldBeLessThanOrEqualTo, summary.Max)

	single, err := CheckRoundTrip(context.Background(), cam, []r2.Point{{X: 500, Y: 1000}}, testDepth)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, single.Count, test.ShouldEqual, 1)
	test.That(t, single.P95, test.ShouldEqual, single.Max)
}

func TestCheckRoundTripFailures(t *testing.T) {
	base := newTestBase(t)
	cam, err := NewAdjustedCamera("diag", base, newZeroPoly(t, 0), newZeroPoly(t, 0), logging.NewTestLogger(t))
	test.That(t, err, test.ShouldBeNil)

	pixels := append(randomPixels(8, 10), r2.Point{X: 500, Y: 5000}, r2.Point{X: -300, Y: 10})
	summary, err := CheckRoundTrip(context.Background(), cam, pixels, testDepth)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, ErrConvergence), test.ShouldBeTrue)
	test.That(t, len(multierr.Errors(err)), test.ShouldEqual, 2)
	test.That(t, summary.Count, test.ShouldEqual, 10)
	test.That(t, summary.Failed, test.ShouldEqual, 2)
	test.That(t, summary.Max, test.ShouldBeLessThan, 0.001)

	_, err = CheckRoundTrip(context.Background(), cam, nil, testDepth)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = CheckRoundTrip(context.Background(), cam, pixels, 0)
	test.That(t, err, test.ShouldNotBeNil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = CheckRoundTrip(ctx, cam, pixels, testDepth)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}
