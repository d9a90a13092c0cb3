package budget

import (
	"testing"

	"marketPulse/domain"
)

func campaign(id, platform string, spend, revenue float64, conversions, clicks, impressions int) domain.CampaignPerformance {
	c := domain.CampaignPerformance{
		CampaignID:  id,
		Platform:    platform,
		Spend:       spend,
		Revenue:     revenue,
		Conversions: conversions,
		Clicks:      clicks,
		Impressions: impressions,
	}
	if spend > 0 {
		c.Roas = revenue / spend
	}
	if conversions > 0 {
		c.CPA = spend / float64(conversions)
	}
	if impressions > 0 {
		c.CTR = float64(clicks) / float64(impressions) * 100
	}
	if clicks > 0 {
		c.ConversionRate = float64(conversions) / float64(clicks) * 100
	}
	return c
}

func sampleCampaigns() []domain.CampaignPerformance {
	return []domain.CampaignPerformance{
		campaign("winner", "google", 1000, 6000, 60, 2000, 50000),
		campaign("steady", "meta", 800, 2400, 25, 1200, 40000),
		campaign("weak", "meta", 500, 600, 5, 400, 20000),
		campaign("loser", "tiktok", 300, 150, 2, 200, 15000),
	}
}

func TestOptimizeBudgetConservation(t *testing.T) {
	for _, objective := range []string{OptimizeRevenue, OptimizeRoas, OptimizeBalanced} {
		opts := DefaultOptions(2000)
		opts.OptimizeFor = objective

		result := Optimize(sampleCampaigns(), opts)
		sum := 0.0
		for _, a := range result.Allocations {
			if a.RecommendedSpend < 0 {
				t.Fatalf("%s: negative allocation for %s", objective, a.CampaignID)
			}
			sum += a.RecommendedSpend
		}
		if sum > opts.TotalBudget+0.01 {
			t.Fatalf("%s: allocations sum to %v, budget is %v", objective, sum, opts.TotalBudget)
		}
	}
}

func TestOptimizePauseOverride(t *testing.T) {
	// roas 0.5 < 0.25 * target 3
	campaigns := []domain.CampaignPerformance{
		campaign("failing", "google", 1000, 500, 3, 500, 20000),
	}

	result := Optimize(campaigns, DefaultOptions(5000))
	if len(result.Allocations) != 1 {
		t.Fatalf("expected one allocation, got %d", len(result.Allocations))
	}
	a := result.Allocations[0]
	if a.Priority != domain.PriorityPause {
		t.Fatalf("priority: got %q, want pause", a.Priority)
	}
	if a.RecommendedSpend != 0 {
		t.Fatalf("recommended spend: got %v, want 0", a.RecommendedSpend)
	}
}

func TestOptimizePriorities(t *testing.T) {
	result := Optimize(sampleCampaigns(), DefaultOptions(2000))

	byID := make(map[string]domain.BudgetAllocation)
	for _, a := range result.Allocations {
		byID[a.CampaignID] = a
	}

	// roas 6 >= 1.5*3
	if byID["winner"].Priority != domain.PriorityIncrease {
		t.Fatalf("winner priority: got %q", byID["winner"].Priority)
	}
	// roas 3 sits between 1.5 and 4.5
	if byID["steady"].Priority != domain.PriorityMaintain {
		t.Fatalf("steady priority: got %q", byID["steady"].Priority)
	}
	// roas 1.2 < 0.5*3
	if byID["weak"].Priority != domain.PriorityDecrease {
		t.Fatalf("weak priority: got %q", byID["weak"].Priority)
	}
	if byID["weak"].RecommendedSpend > 250 {
		t.Fatalf("decrease must cap at half of current spend, got %v", byID["weak"].RecommendedSpend)
	}
	// roas 0.5 < 0.25*3
	if byID["loser"].Priority != domain.PriorityPause || byID["loser"].RecommendedSpend != 0 {
		t.Fatalf("loser allocation: %+v", byID["loser"])
	}
}

func TestOptimizeMaxPerCampaignClamp(t *testing.T) {
	result := Optimize(sampleCampaigns(), DefaultOptions(2000))
	maxPer := 2000 * 0.4
	for _, a := range result.Allocations {
		if a.RecommendedSpend > maxPer+0.01 {
			t.Fatalf("%s: allocation %v exceeds per-campaign max %v", a.CampaignID, a.RecommendedSpend, maxPer)
		}
	}
}

func TestOptimizeEmptyInput(t *testing.T) {
	result := Optimize(nil, DefaultOptions(1000))
	if len(result.Allocations) != 0 || len(result.Platforms) != 0 {
		t.Fatalf("expected empty result, got %+v", result)
	}
}

func TestOptimizeConfidenceBounds(t *testing.T) {
	result := Optimize(sampleCampaigns(), DefaultOptions(2000))
	for _, a := range result.Allocations {
		if a.Confidence < 0 || a.Confidence > 1 {
			t.Fatalf("%s: confidence %v out of [0,1]", a.CampaignID, a.Confidence)
		}
	}
}

func TestOptimizeDeterministic(t *testing.T) {
	a := Optimize(sampleCampaigns(), DefaultOptions(2000))
	b := Optimize(sampleCampaigns(), DefaultOptions(2000))

	if len(a.Allocations) != len(b.Allocations) {
		t.Fatal("allocation counts differ between identical runs")
	}
	for i := range a.Allocations {
		if a.Allocations[i] != b.Allocations[i] {
			t.Fatalf("allocation %d differs between identical runs", i)
		}
	}
	if a.Summary != b.Summary {
		t.Fatal("summaries differ between identical runs")
	}
}

func TestOptimizePlatformAggregation(t *testing.T) {
	result := Optimize(sampleCampaigns(), DefaultOptions(2000))

	total := 0.0
	for _, a := range result.Allocations {
		total += a.RecommendedSpend
	}
	platformTotal := 0.0
	for _, p := range result.Platforms {
		platformTotal += p.Budget
	}
	if diff := total - platformTotal; diff > 0.01 || diff < -0.01 {
		t.Fatalf("platform budgets %v do not match allocation total %v", platformTotal, total)
	}

	for i := 1; i < len(result.Platforms); i++ {
		if result.Platforms[i].Budget > result.Platforms[i-1].Budget {
			t.Fatal("platforms not sorted by budget descending")
		}
	}
}

func TestOptimizeInsights(t *testing.T) {
	result := Optimize(sampleCampaigns(), DefaultOptions(2000))
	if len(result.Insights) == 0 {
		t.Fatal("expected at least the overall ROAS insight")
	}
}

func TestBidAdjustments(t *testing.T) {
	campaigns := []domain.CampaignPerformance{
		campaign("scale-me", "google", 1000, 6000, 80, 2000, 50000), // roas 6, conv rate 4%
		campaign("bleeding", "meta", 500, 250, 2, 400, 20000),       // roas 0.5
		campaign("no-clicks", "meta", 100, 0, 0, 0, 1000),           // skipped
	}

	adjustments := BidAdjustments(campaigns, 50)
	if len(adjustments) != 2 {
		t.Fatalf("expected 2 adjustments, got %d", len(adjustments))
	}

	byID := make(map[string]domain.BidAdjustment)
	for _, adj := range adjustments {
		byID[adj.CampaignID] = adj
	}

	if byID["scale-me"].AdjustmentPercent != 20 {
		t.Fatalf("scale-me: got %v, want +20", byID["scale-me"].AdjustmentPercent)
	}
	if byID["bleeding"].AdjustmentPercent != -30 {
		t.Fatalf("bleeding: got %v, want -30", byID["bleeding"].AdjustmentPercent)
	}

	if byID["scale-me"].CurrentCPC != 0.5 {
		t.Fatalf("scale-me cpc: got %v, want 0.5", byID["scale-me"].CurrentCPC)
	}

	// efficient campaign earns audience bid-ups
	found := false
	for _, b := range byID["scale-me"].Audiences {
		if b.Audience == "past_purchasers" && b.DeltaPercent == 25 {
			found = true
		}
	}
	if !found {
		t.Fatalf("scale-me missing past_purchasers bid-up: %+v", byID["scale-me"].Audiences)
	}

	// weak campaign cuts broad traffic
	found = false
	for _, b := range byID["bleeding"].Audiences {
		if b.Audience == "broad_interest" && b.DeltaPercent == -20 {
			found = true
		}
	}
	if !found {
		t.Fatalf("bleeding missing broad_interest cut: %+v", byID["bleeding"].Audiences)
	}
}
