package kpi

import "math"

// Fixed weekly targets per indicator. All are "higher is better" except
// complaints.
const (
	TargetCommendations       = 2.0
	TargetComplaints          = 1.0
	TargetOrderScore          = 90.0
	TargetClientResponseScore = 95.0
	TargetAutonomyScore       = 85.0
)

// Indicators are the five per-person weekly measurements. Four are entered
// manually; autonomy is derived from task completion.
type Indicators struct {
	Commendations       float64
	Complaints          float64
	OrderScore          float64
	ClientResponseScore float64
	AutonomyScore       float64
}

// higherBetter scores an indicator where exceeding the target is full
// compliance and anything below scales linearly.
func higherBetter(value, target float64) float64 {
	if value >= target {
		return 100
	}
	return value / target * 100
}

// lowerBetter scores complaints: at or under target is full compliance,
// every unit over costs 50 points, floored at zero.
func lowerBetter(value, target float64) float64 {
	if value <= target {
		return 100
	}
	return math.Max(0, 100-(value-target)*50)
}

// IndicatorScores returns the five per-indicator compliance percentages.
func IndicatorScores(in Indicators) map[string]float64 {
	return map[string]float64{
		"commendations":       higherBetter(in.Commendations, TargetCommendations),
		"complaints":          lowerBetter(in.Complaints, TargetComplaints),
		"orderScore":          higherBetter(in.OrderScore, TargetOrderScore),
		"clientResponseScore": higherBetter(in.ClientResponseScore, TargetClientResponseScore),
		"autonomyScore":       higherBetter(in.AutonomyScore, TargetAutonomyScore),
	}
}

// ComputeCompliance is the arithmetic mean of the five per-indicator
// percentages, rounded to two decimals. Deterministic: the same input
// always yields the identical rounded value.
func ComputeCompliance(in Indicators) float64 {
	sum := higherBetter(in.Commendations, TargetCommendations) +
		lowerBetter(in.Complaints, TargetComplaints) +
		higherBetter(in.OrderScore, TargetOrderScore) +
		higherBetter(in.ClientResponseScore, TargetClientResponseScore) +
		higherBetter(in.AutonomyScore, TargetAutonomyScore)
	return round2(sum / 5)
}

func round2(x float64) float64 {
	return math.Round(x*100) / 100
}
