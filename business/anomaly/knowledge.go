package anomaly

import (
	"fmt"

	"marketPulse/domain"
)

// metricKnowledge holds the canned explanations shown with a flagged
// metric, split by anomaly direction.
type metricKnowledge struct {
	increaseCauses  []string
	decreaseCauses  []string
	increaseActions []string
	decreaseActions []string
}

var knowledgeBase = map[string]metricKnowledge{
	"revenue": {
		increaseCauses: []string{
			"viral content or press coverage driving traffic",
			"a promotion or discount converting above plan",
			"seasonal demand peak",
		},
		decreaseCauses: []string{
			"checkout or payment provider failure",
			"a paused or exhausted ad campaign",
			"stock-outs on top selling products",
		},
		increaseActions: []string{
			"verify order data is not duplicated",
			"check inventory can cover the demand spike",
			"scale the channels driving the lift",
		},
		decreaseActions: []string{
			"run a test order through checkout",
			"review ad account status and budgets",
			"check stock levels on best sellers",
		},
	},
	"orders": {
		increaseCauses: []string{
			"flash sale or coupon code circulating",
			"marketing email or push campaign landing",
			"marketplace or referral spike",
		},
		decreaseCauses: []string{
			"site outage or severe slowdown",
			"broken product or landing pages",
			"tracking pixel dropped from the storefront",
		},
		increaseActions: []string{
			"confirm fulfillment capacity",
			"watch for fraud patterns in the new orders",
		},
		decreaseActions: []string{
			"check uptime monitoring and error rates",
			"validate the order tracking integration",
		},
	},
	"conversion_rate": {
		increaseCauses: []string{
			"landing page or pricing test winning",
			"higher-intent traffic mix",
		},
		decreaseCauses: []string{
			"broken checkout step or form",
			"low-quality traffic from a new campaign",
			"price or shipping cost change deterring buyers",
		},
		increaseActions: []string{
			"lock in the winning variant",
			"shift budget toward the converting traffic source",
		},
		decreaseActions: []string{
			"replay the funnel on mobile and desktop",
			"segment conversion by traffic source to isolate the drop",
		},
	},
	"ad_spend": {
		increaseCauses: []string{
			"automated bidding escalating CPCs",
			"a budget cap removed or raised",
			"new campaign launched without a limit",
		},
		decreaseCauses: []string{
			"billing failure pausing delivery",
			"ads disapproved by the platform",
			"budget exhausted early in the day",
		},
		increaseActions: []string{
			"review bid caps and daily budgets",
			"confirm the extra spend is converting",
		},
		decreaseActions: []string{
			"check ad account billing and policy status",
			"verify campaigns are active on every platform",
		},
	},
	"roas": {
		increaseCauses: []string{
			"creative refresh outperforming",
			"audience targeting improvement",
		},
		decreaseCauses: []string{
			"creative fatigue on long-running ads",
			"rising auction competition",
			"conversion tracking undercounting",
		},
		increaseActions: []string{
			"scale budget while efficiency holds",
			"document what changed for reuse",
		},
		decreaseActions: []string{
			"rotate in fresh creatives",
			"audit conversion tracking end to end",
		},
	},
}

var genericKnowledge = metricKnowledge{
	increaseCauses: []string{
		"upstream data source reporting inflated values",
		"genuine demand or activity spike",
	},
	decreaseCauses: []string{
		"data pipeline gap or delayed sync",
		"genuine drop in activity",
	},
	increaseActions: []string{
		"verify the data source for this metric",
		"compare against adjacent metrics for the same day",
	},
	decreaseActions: []string{
		"check the sync job for missing data",
		"compare against adjacent metrics for the same day",
	},
}

// detailCount returns how many causes/actions a severity level surfaces.
func detailCount(severity string) int {
	switch severity {
	case domain.SeverityCritical:
		return 3
	case domain.SeverityWarning:
		return 2
	default:
		return 1
	}
}

func trimTo(items []string, n int) []string {
	if len(items) <= n {
		return items
	}
	return items[:n]
}

// explain fills the human-readable fields of a flagged anomaly from the
// per-metric knowledge table, falling back to the generic entry.
func explain(a *domain.Anomaly) {
	kb, ok := knowledgeBase[a.Metric]
	if !ok {
		kb = genericKnowledge
	}

	n := detailCount(a.Severity)
	if a.Direction == domain.DirectionIncrease {
		a.Description = fmt.Sprintf("%s spiked to %.2f, %.1f%% above the expected %.2f",
			a.Metric, a.Value, a.PercentageChange, a.ExpectedValue)
		a.PossibleCauses = trimTo(kb.increaseCauses, n)
		a.SuggestedActions = trimTo(kb.increaseActions, n)
		return
	}
	a.Description = fmt.Sprintf("%s dropped to %.2f, %.1f%% below the expected %.2f",
		a.Metric, a.Value, -a.PercentageChange, a.ExpectedValue)
	a.PossibleCauses = trimTo(kb.decreaseCauses, n)
	a.SuggestedActions = trimTo(kb.decreaseActions, n)
}
