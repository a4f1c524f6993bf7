package apitrack

import (
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// newTestTracker pins the tracker clock so duration-based math is
// deterministic. Each call to the stub clock advances one minute.
func newTestTracker(start time.Time) (*Tracker, *time.Time) {
	current := start
	tracker := NewTracker(slog.New(slog.NewTextHandler(io.Discard, nil)))
	tracker.now = func() time.Time {
		return current
	}
	tracker.sessionStart = start
	return tracker, &current
}

func TestTrackCostExplorerCall(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	cost := tracker.TrackCostExplorerCall("GetCostAndUsage")
	assert.Equal(t, 0.01, cost)

	// Unknown operations fall back to the per-request rate.
	cost = tracker.TrackCostExplorerCall("GetSavingsPlansUtilization")
	assert.Equal(t, 0.01, cost)
}

func TestTrackEC2Call_FreeOperations(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	assert.Zero(t, tracker.TrackEC2Call("DescribeInstances", 12))
	assert.Zero(t, tracker.TrackS3Call("PutObject"))
}

func TestSessionSummary(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)

	tracker.TrackCostExplorerCall("GetCostAndUsage")
	tracker.TrackCostExplorerCall("GetCostAndUsage")
	tracker.TrackCostExplorerCall("GetDimensionValues")
	tracker.TrackEC2Call("DescribeInstances", 3)

	*clock = start.Add(30 * time.Minute)
	summary := tracker.SessionSummary()

	assert.Equal(t, 4, summary.TotalCalls)
	assert.InDelta(t, 0.03, summary.TotalCost, 1e-9)
	assert.Equal(t, 30*time.Minute, summary.SessionDuration)
	assert.InDelta(t, 0.001, summary.CostPerMinute, 1e-9)

	ce := summary.Services["Cost Explorer"]
	assert.Equal(t, 3, ce.TotalCalls)
	assert.InDelta(t, 0.03, ce.TotalCost, 1e-9)
	assert.Equal(t, 2, ce.Operations["GetCostAndUsage"])
	assert.Equal(t, 1, ce.Operations["GetDimensionValues"])

	ec2 := summary.Services["EC2"]
	assert.Equal(t, 1, ec2.TotalCalls)
	assert.Zero(t, ec2.TotalCost)
}

func TestSessionSummary_Empty(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))

	summary := tracker.SessionSummary()
	assert.Zero(t, summary.TotalCost)
	assert.Zero(t, summary.TotalCalls)
	assert.Empty(t, summary.Services)
	assert.Zero(t, summary.CostPerMinute)
}

func TestDetailedBreakdown_Chronological(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)

	tracker.TrackCostExplorerCall("GetCostAndUsage")
	*clock = start.Add(time.Minute)
	tracker.TrackEC2Call("DescribeVolumes", 5)

	calls := tracker.DetailedBreakdown()
	require.Len(t, calls, 2)
	assert.Equal(t, "Cost Explorer", calls[0].Service)
	assert.Equal(t, "EC2", calls[1].Service)
	assert.Equal(t, 5, calls[1].ResourceCount)
	assert.True(t, calls[0].Timestamp.Before(calls[1].Timestamp))
}

func TestEstimateMonthlyCost(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)

	// Six billable calls over one hour: $0.06/hour.
	for i := 0; i < 6; i++ {
		tracker.TrackCostExplorerCall("GetCostAndUsage")
	}
	*clock = start.Add(time.Hour)

	estimate := tracker.EstimateMonthlyCost(1.0)
	assert.InDelta(t, 0.06, estimate.CostPerHour, 1e-9)
	assert.InDelta(t, 1.44, estimate.DailyCost, 1e-9)
	assert.InDelta(t, 43.2, estimate.MonthlyCost, 1e-9)

	ce := estimate.Breakdown["Cost Explorer"]
	assert.InDelta(t, 43.2, ce.MonthlyCost, 1e-9)
	assert.InDelta(t, 6.0, ce.CallsPerHour, 1e-9)

	// A half-usage multiplier halves the projection.
	half := tracker.EstimateMonthlyCost(0.5)
	assert.InDelta(t, 21.6, half.MonthlyCost, 1e-9)
}

func TestEstimateMonthlyCost_ZeroDuration(t *testing.T) {
	tracker, _ := newTestTracker(time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC))
	tracker.TrackCostExplorerCall("GetCostAndUsage")

	estimate := tracker.EstimateMonthlyCost(1.0)
	assert.Zero(t, estimate.MonthlyCost)
	assert.Empty(t, estimate.Breakdown)
}

func TestReset(t *testing.T) {
	start := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	tracker, clock := newTestTracker(start)

	tracker.TrackCostExplorerCall("GetCostAndUsage")
	*clock = start.Add(time.Hour)
	tracker.Reset()

	summary := tracker.SessionSummary()
	assert.Zero(t, summary.TotalCalls)
	assert.Equal(t, start.Add(time.Hour), summary.SessionStart)
}
