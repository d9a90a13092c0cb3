package budget

import (
	"context"
	"fmt"
	"math"
	"sort"

	"marketPulse/domain"
	"marketPulse/pkg/stats"
)

const (
	OptimizeRevenue  = "revenue"
	OptimizeRoas     = "roas"
	OptimizeBalanced = "balanced"
)

// objective weights: roas score, volume score, ctr score
var objectiveWeights = map[string][3]float64{
	OptimizeRevenue:  {0.3, 0.5, 0.2},
	OptimizeRoas:     {0.6, 0.2, 0.2},
	OptimizeBalanced: {0.4, 0.35, 0.25},
}

type Options struct {
	TotalBudget              float64
	TargetRoas               float64
	MinCampaignBudget        float64
	MaxCampaignBudgetPercent float64
	OptimizeFor              string
}

func DefaultOptions(totalBudget float64) Options {
	return Options{
		TotalBudget:              totalBudget,
		TargetRoas:               3,
		MinCampaignBudget:        10,
		MaxCampaignBudgetPercent: 0.4,
		OptimizeFor:              OptimizeBalanced,
	}
}

func (o Options) withDefaults() Options {
	if o.TargetRoas <= 0 {
		o.TargetRoas = 3
	}
	if o.MinCampaignBudget <= 0 {
		o.MinCampaignBudget = 10
	}
	if o.MaxCampaignBudgetPercent <= 0 || o.MaxCampaignBudgetPercent > 1 {
		o.MaxCampaignBudgetPercent = 0.4
	}
	if _, ok := objectiveWeights[o.OptimizeFor]; !ok {
		o.OptimizeFor = OptimizeBalanced
	}
	return o
}

// ---- Repository interface ----

type CampaignRepository interface {
	FindPerformance(ctx context.Context) ([]domain.CampaignPerformance, error)
}

// ---- Usecase / Service ----

type BudgetService struct {
	campaignRepo CampaignRepository
}

func NewBudgetService(campaignRepo CampaignRepository) *BudgetService {
	return &BudgetService{campaignRepo: campaignRepo}
}

func (s *BudgetService) OptimizeBudget(ctx context.Context, opts Options) (domain.BudgetOptimizationResult, error) {
	if err := ctx.Err(); err != nil {
		return domain.BudgetOptimizationResult{}, fmt.Errorf("context error: %w", err)
	}

	campaigns, err := s.campaignRepo.FindPerformance(ctx)
	if err != nil {
		return domain.BudgetOptimizationResult{}, fmt.Errorf("load campaign performance: %w", err)
	}

	return Optimize(campaigns, opts), nil
}

func (s *BudgetService) RecommendBidAdjustments(ctx context.Context, targetCPA float64) ([]domain.BidAdjustment, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("context error: %w", err)
	}

	campaigns, err := s.campaignRepo.FindPerformance(ctx)
	if err != nil {
		return nil, fmt.Errorf("load campaign performance: %w", err)
	}

	return BidAdjustments(campaigns, targetCPA), nil
}

// ---- Pure optimization ----

type scoredCampaign struct {
	domain.CampaignPerformance
	efficiency float64
}

// Optimize distributes the budget across campaigns in proportion to an
// objective-weighted efficiency score, with priority overrides for
// clearly failing or clearly winning campaigns. Allocations draw from a
// shared remaining-budget counter in efficiency order, so the sum never
// exceeds the total budget.
func Optimize(campaigns []domain.CampaignPerformance, opts Options) domain.BudgetOptimizationResult {
	opts = opts.withDefaults()

	if len(campaigns) == 0 || opts.TotalBudget <= 0 {
		return domain.BudgetOptimizationResult{
			Allocations: []domain.BudgetAllocation{},
			Platforms:   []domain.PlatformBudget{},
			Insights:    []string{},
		}
	}

	weights := objectiveWeights[opts.OptimizeFor]

	scored := make([]scoredCampaign, 0, len(campaigns))
	totalEfficiency := 0.0
	for _, c := range campaigns {
		e := efficiencyScore(c, opts.TargetRoas, weights)
		totalEfficiency += e
		scored = append(scored, scoredCampaign{CampaignPerformance: c, efficiency: e})
	}

	// most efficient campaigns claim budget first
	sort.SliceStable(scored, func(i, j int) bool {
		if scored[i].efficiency != scored[j].efficiency {
			return scored[i].efficiency > scored[j].efficiency
		}
		return scored[i].CampaignID < scored[j].CampaignID
	})

	maxPerCampaign := opts.TotalBudget * opts.MaxCampaignBudgetPercent
	remaining := opts.TotalBudget

	allocations := make([]domain.BudgetAllocation, 0, len(scored))
	for _, sc := range scored {
		alloc := allocate(sc, opts, totalEfficiency, maxPerCampaign, remaining)
		remaining -= alloc.RecommendedSpend
		allocations = append(allocations, alloc)
	}

	summary := buildSummary(campaigns, allocations, opts)
	platforms := platformBudgets(allocations)

	return domain.BudgetOptimizationResult{
		Allocations: allocations,
		Summary:     summary,
		Platforms:   platforms,
		Insights:    insights(allocations, summary, platforms, opts),
	}
}

func efficiencyScore(c domain.CampaignPerformance, targetRoas float64, weights [3]float64) float64 {
	roasScore := math.Min(c.Roas/targetRoas, 2)
	volumeScore := math.Min(float64(c.Conversions)/10, 2)
	ctrScore := math.Min(c.CTR/2, 1)
	return weights[0]*roasScore + weights[1]*volumeScore + weights[2]*ctrScore
}

func allocate(sc scoredCampaign, opts Options, totalEfficiency, maxPerCampaign, remaining float64) domain.BudgetAllocation {
	proportional := 0.0
	if totalEfficiency > 0 {
		proportional = opts.TotalBudget * sc.efficiency / totalEfficiency
	}
	recommended := stats.Clamp(proportional, opts.MinCampaignBudget, maxPerCampaign)

	priority := domain.PriorityMaintain
	reason := "performance in line with target, keep current allocation"
	switch {
	case sc.Roas < 0.25*opts.TargetRoas:
		priority = domain.PriorityPause
		reason = "ROAS far below target, pause and reassess"
		recommended = 0
	case sc.Roas < 0.5*opts.TargetRoas:
		priority = domain.PriorityDecrease
		reason = "ROAS below half of target, reduce spend"
		recommended = math.Min(recommended, 0.5*sc.Spend)
	case sc.Roas >= 1.5*opts.TargetRoas:
		priority = domain.PriorityIncrease
		reason = "ROAS well above target, scale up"
		recommended = math.Min(recommended*1.3, maxPerCampaign)
	}

	if recommended > remaining {
		recommended = remaining
	}
	if recommended < 0 {
		recommended = 0
	}
	recommended = stats.Round2(recommended)

	change := recommended - sc.Spend
	changePct := 0.0
	if sc.Spend > 0 {
		changePct = change / sc.Spend * 100
	}

	expectedRoas := expectedRoasFor(sc.CampaignPerformance, change)

	return domain.BudgetAllocation{
		CampaignID:         sc.CampaignID,
		Platform:           sc.Platform,
		CurrentSpend:       stats.Round2(sc.Spend),
		RecommendedSpend:   recommended,
		SpendChange:        stats.Round2(change),
		SpendChangePercent: stats.Round1(changePct),
		ExpectedRoas:       expectedRoas,
		ExpectedRevenue:    stats.Round2(recommended * expectedRoas),
		Priority:           priority,
		Reason:             reason,
		Confidence:         confidenceFor(sc.CampaignPerformance),
	}
}

// expectedRoasFor dampens the observed ROAS in proportion to how much the
// spend moves, since efficiency rarely survives a large budget shift.
func expectedRoasFor(c domain.CampaignPerformance, change float64) float64 {
	if c.Spend <= 0 {
		return stats.Round2(c.Roas)
	}
	dampening := 0.1 * math.Min(1, math.Abs(change)/c.Spend)
	return stats.Round2(c.Roas * (1 - dampening))
}

func confidenceFor(c domain.CampaignPerformance) float64 {
	roasSanity := 0.5
	if c.Roas > 0.5 && c.Roas < 20 {
		roasSanity = 1
	}
	confidence := 0.5*math.Min(1, float64(c.Conversions)/30) +
		0.3*math.Min(1, float64(c.Clicks)/100) +
		0.2*roasSanity
	return stats.Round2(confidence)
}

func buildSummary(campaigns []domain.CampaignPerformance, allocations []domain.BudgetAllocation, opts Options) domain.BudgetSummary {
	currentSpend := 0.0
	currentRevenue := 0.0
	for _, c := range campaigns {
		currentSpend += c.Spend
		currentRevenue += c.Revenue
	}

	recommendedSpend := 0.0
	expectedRevenue := 0.0
	for _, a := range allocations {
		recommendedSpend += a.RecommendedSpend
		expectedRevenue += a.ExpectedRevenue
	}

	currentRoas := 0.0
	if currentSpend > 0 {
		currentRoas = currentRevenue / currentSpend
	}

	expectedRoas := 0.0
	if recommendedSpend > 0 {
		expectedRoas = expectedRevenue / recommendedSpend
	}

	score := 50.0
	if currentRoas > 0 {
		score = stats.Clamp(50+100*(expectedRoas-currentRoas)/currentRoas, 0, 100)
	}

	return domain.BudgetSummary{
		TotalBudget:       stats.Round2(opts.TotalBudget),
		CurrentSpend:      stats.Round2(currentSpend),
		RecommendedSpend:  stats.Round2(recommendedSpend),
		CurrentRoas:       stats.Round2(currentRoas),
		ExpectedRoas:      stats.Round2(expectedRoas),
		OptimizationScore: stats.Round2(score),
	}
}

func platformBudgets(allocations []domain.BudgetAllocation) []domain.PlatformBudget {
	totals := make(map[string]float64)
	total := 0.0
	for _, a := range allocations {
		totals[a.Platform] += a.RecommendedSpend
		total += a.RecommendedSpend
	}

	platforms := make([]domain.PlatformBudget, 0, len(totals))
	for platform, budget := range totals {
		pct := 0.0
		if total > 0 {
			pct = budget / total * 100
		}
		platforms = append(platforms, domain.PlatformBudget{
			Platform:   platform,
			Budget:     stats.Round2(budget),
			Percentage: stats.Round1(pct),
		})
	}

	sort.SliceStable(platforms, func(i, j int) bool {
		if platforms[i].Budget != platforms[j].Budget {
			return platforms[i].Budget > platforms[j].Budget
		}
		return platforms[i].Platform < platforms[j].Platform
	})
	return platforms
}

func insights(allocations []domain.BudgetAllocation, summary domain.BudgetSummary, platforms []domain.PlatformBudget, opts Options) []string {
	out := []string{}

	if summary.CurrentRoas >= opts.TargetRoas {
		out = append(out, fmt.Sprintf("overall ROAS %.2f meets the %.2f target", summary.CurrentRoas, opts.TargetRoas))
	} else {
		out = append(out, fmt.Sprintf("overall ROAS %.2f is below the %.2f target", summary.CurrentRoas, opts.TargetRoas))
	}

	if len(platforms) > 0 && platforms[0].Percentage > 60 {
		out = append(out, fmt.Sprintf("%s takes %.1f%% of the recommended budget, consider diversifying", platforms[0].Platform, platforms[0].Percentage))
	}

	increases := 0
	pauses := 0
	lowConfidence := 0
	for _, a := range allocations {
		switch a.Priority {
		case domain.PriorityIncrease:
			increases++
		case domain.PriorityPause:
			pauses++
		}
		if a.Confidence < 0.5 {
			lowConfidence++
		}
	}
	if increases > 0 {
		out = append(out, fmt.Sprintf("%d campaign(s) recommended for scaling", increases))
	}
	if pauses > 0 {
		out = append(out, fmt.Sprintf("%d campaign(s) recommended for pausing", pauses))
	}
	if lowConfidence > 0 {
		out = append(out, fmt.Sprintf("%d recommendation(s) carry low confidence, gather more data before acting", lowConfidence))
	}

	return out
}
