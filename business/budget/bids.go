package budget

import (
	"fmt"
	"sort"

	"marketPulse/domain"
	"marketPulse/pkg/stats"
)

// ideal CPC leaves headroom under the target CPA
const idealCPCFraction = 0.8

// BidAdjustments derives an ideal CPC from the target CPA and each
// campaign's conversion rate, then proposes a bid delta from fixed rules.
// Rules are evaluated in order; the first match wins.
func BidAdjustments(campaigns []domain.CampaignPerformance, targetCPA float64) []domain.BidAdjustment {
	if targetCPA <= 0 {
		targetCPA = 50
	}

	adjustments := make([]domain.BidAdjustment, 0, len(campaigns))
	for _, c := range campaigns {
		if c.Clicks == 0 {
			continue
		}

		currentCPC := c.Spend / float64(c.Clicks)
		idealCPC := targetCPA * (c.ConversionRate / 100) * idealCPCFraction

		pct, reason := bidRule(c, currentCPC, idealCPC)

		adjustments = append(adjustments, domain.BidAdjustment{
			CampaignID:        c.CampaignID,
			CurrentCPC:        stats.Round2(currentCPC),
			IdealCPC:          stats.Round2(idealCPC),
			AdjustmentPercent: pct,
			Reason:            reason,
			Audiences:         audienceBids(c),
		})
	}

	sort.SliceStable(adjustments, func(i, j int) bool {
		return adjustments[i].CampaignID < adjustments[j].CampaignID
	})
	return adjustments
}

func bidRule(c domain.CampaignPerformance, currentCPC, idealCPC float64) (float64, string) {
	switch {
	case c.Roas >= 5 && c.ConversionRate >= 3:
		return 20, "strong ROAS and conversion rate, bid up to win more volume"
	case c.Roas < 1:
		return -30, "spending more than it returns, bid down sharply"
	case currentCPC > idealCPC*1.5:
		return -20, fmt.Sprintf("CPC %.2f far above the %.2f ideal", currentCPC, idealCPC)
	case currentCPC > idealCPC*1.2:
		return -15, fmt.Sprintf("CPC %.2f above the %.2f ideal", currentCPC, idealCPC)
	case c.ConversionRate >= 5:
		return 10, "high conversion rate supports a modest bid increase"
	default:
		return 0, "bids are in a healthy range"
	}
}

func audienceBids(c domain.CampaignPerformance) []domain.AudienceBid {
	bids := []domain.AudienceBid{}
	if c.Roas >= 4 {
		bids = append(bids, domain.AudienceBid{
			Audience:     "past_purchasers",
			DeltaPercent: 25,
			Reason:       "retargeting converts best on efficient campaigns",
		})
	}
	if c.ConversionRate >= 3 {
		bids = append(bids, domain.AudienceBid{
			Audience:     "lookalike_1pct",
			DeltaPercent: 15,
			Reason:       "high conversion rate justifies expanding similar audiences",
		})
	}
	if c.Roas < 1.5 {
		bids = append(bids, domain.AudienceBid{
			Audience:     "broad_interest",
			DeltaPercent: -20,
			Reason:       "weak efficiency, cut the least qualified traffic first",
		})
	}
	return bids
}
