// Package apitrack estimates the metered cost of the cloud API calls this
// application itself makes, so the dashboard can report what it costs to run.
package apitrack

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Approximate AWS API pricing. Cost Explorer bills per request; the EC2 and
// S3 read operations used here are free.
var costExplorerPricing = map[string]float64{
	"GetCostAndUsage":           0.01,
	"GetDimensionValues":        0.01,
	"GetCostForecast":           0.01,
	"GetReservationUtilization": 0.01,
}

var ec2Pricing = map[string]float64{
	"DescribeInstances": 0,
	"DescribeVolumes":   0,
	"StopInstances":     0,
}

const defaultCostExplorerPrice = 0.01

// Call records a single tracked API call.
type Call struct {
	Service       string    `json:"service"`
	Operation     string    `json:"operation"`
	Timestamp     time.Time `json:"timestamp"`
	EstimatedCost float64   `json:"estimated_cost"`
	ResourceCount int       `json:"resource_count,omitempty"`
}

// ServiceUsage aggregates tracked calls for one service.
type ServiceUsage struct {
	ServiceName string         `json:"service_name"`
	TotalCalls  int            `json:"total_calls"`
	TotalCost   float64        `json:"total_cost"`
	Operations  map[string]int `json:"operations"`
}

// Summary reports session totals across all tracked services.
type Summary struct {
	TotalCost       float64                 `json:"total_cost"`
	TotalCalls      int                     `json:"total_calls"`
	Services        map[string]ServiceUsage `json:"services"`
	SessionStart    time.Time               `json:"session_start"`
	SessionDuration time.Duration           `json:"session_duration"`
	CostPerMinute   float64                 `json:"cost_per_minute"`
}

// MonthlyEstimate extrapolates session usage to a 30-day month.
type MonthlyEstimate struct {
	MonthlyCost float64                    `json:"estimated_monthly_cost"`
	DailyCost   float64                    `json:"estimated_daily_cost"`
	CostPerHour float64                    `json:"cost_per_hour"`
	Breakdown   map[string]ServiceEstimate `json:"breakdown"`
}

// ServiceEstimate is the per-service slice of a MonthlyEstimate.
type ServiceEstimate struct {
	MonthlyCost  float64 `json:"monthly_cost"`
	CallsPerHour float64 `json:"calls_per_hour"`
	MonthlyCalls float64 `json:"estimated_monthly_calls"`
}

// Tracker accumulates API call costs for the current session. It is safe for
// concurrent use and is injected wherever tracking is needed rather than
// shared as package state.
type Tracker struct {
	logger *slog.Logger
	now    func() time.Time

	mu           sync.Mutex
	calls        []Call
	sessionStart time.Time
}

// NewTracker creates a tracker with the session clock started.
func NewTracker(logger *slog.Logger) *Tracker {
	t := &Tracker{
		logger: logger,
		now:    time.Now,
	}
	t.sessionStart = t.now()
	return t
}

// TrackCostExplorerCall records a Cost Explorer request and returns its
// estimated cost. Unknown operations are billed at the per-request rate.
func (t *Tracker) TrackCostExplorerCall(operation string) float64 {
	cost, ok := costExplorerPricing[operation]
	if !ok {
		cost = defaultCostExplorerPrice
	}
	t.record(Call{
		Service:       "Cost Explorer",
		Operation:     operation,
		EstimatedCost: cost,
	})
	t.logger.Debug("tracked Cost Explorer call", "operation", operation, "cost", cost)
	return cost
}

// TrackEC2Call records an EC2 request and returns its estimated cost.
func (t *Tracker) TrackEC2Call(operation string, resourceCount int) float64 {
	cost := ec2Pricing[operation]
	t.record(Call{
		Service:       "EC2",
		Operation:     operation,
		EstimatedCost: cost,
		ResourceCount: resourceCount,
	})
	return cost
}

// TrackS3Call records an S3 request. Request pricing is negligible at this
// volume so calls are tracked at zero cost for visibility only.
func (t *Tracker) TrackS3Call(operation string) float64 {
	t.record(Call{
		Service:   "S3",
		Operation: operation,
	})
	return 0
}

func (t *Tracker) record(call Call) {
	call.Timestamp = t.now().UTC()
	t.mu.Lock()
	t.calls = append(t.calls, call)
	t.mu.Unlock()
}

// SessionSummary aggregates all calls tracked since the session started.
func (t *Tracker) SessionSummary() Summary {
	t.mu.Lock()
	defer t.mu.Unlock()

	summary := Summary{
		Services:        make(map[string]ServiceUsage),
		SessionStart:    t.sessionStart,
		SessionDuration: t.now().Sub(t.sessionStart),
	}

	for _, call := range t.calls {
		usage, ok := summary.Services[call.Service]
		if !ok {
			usage = ServiceUsage{
				ServiceName: call.Service,
				Operations:  make(map[string]int),
			}
		}
		usage.TotalCalls++
		usage.TotalCost += call.EstimatedCost
		usage.Operations[call.Operation]++
		summary.Services[call.Service] = usage

		summary.TotalCost += call.EstimatedCost
	}
	summary.TotalCalls = len(t.calls)

	if minutes := summary.SessionDuration.Minutes(); minutes > 0 {
		summary.CostPerMinute = summary.TotalCost / minutes
	}
	return summary
}

// DetailedBreakdown returns every tracked call in chronological order.
func (t *Tracker) DetailedBreakdown() []Call {
	t.mu.Lock()
	defer t.mu.Unlock()

	calls := make([]Call, len(t.calls))
	copy(calls, t.calls)
	sort.SliceStable(calls, func(i, j int) bool {
		return calls[i].Timestamp.Before(calls[j].Timestamp)
	})
	return calls
}

// EstimateMonthlyCost extrapolates the session's hourly rate to a 30-day
// month. The multiplier scales for expected daily usage relative to this
// session.
func (t *Tracker) EstimateMonthlyCost(dailyUsageMultiplier float64) MonthlyEstimate {
	summary := t.SessionSummary()

	hours := summary.SessionDuration.Hours()
	if hours <= 0 {
		return MonthlyEstimate{Breakdown: map[string]ServiceEstimate{}}
	}

	estimate := MonthlyEstimate{
		CostPerHour: summary.TotalCost / hours,
		Breakdown:   make(map[string]ServiceEstimate, len(summary.Services)),
	}
	estimate.DailyCost = estimate.CostPerHour * 24 * dailyUsageMultiplier
	estimate.MonthlyCost = estimate.DailyCost * 30

	for name, usage := range summary.Services {
		hourlyCost := usage.TotalCost / hours
		callsPerHour := float64(usage.TotalCalls) / hours
		estimate.Breakdown[name] = ServiceEstimate{
			MonthlyCost:  hourlyCost * 24 * 30 * dailyUsageMultiplier,
			CallsPerHour: callsPerHour,
			MonthlyCalls: callsPerHour * 24 * 30 * dailyUsageMultiplier,
		}
	}
	return estimate
}

// Reset clears tracked calls and restarts the session clock.
func (t *Tracker) Reset() {
	t.mu.Lock()
	t.calls = nil
	t.sessionStart = t.now()
	t.mu.Unlock()
	t.logger.Info("api cost tracking session reset")
}
