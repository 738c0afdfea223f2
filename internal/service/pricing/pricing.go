// Package pricing selects a subscription tier from extracted requirements.
package pricing

import (
	"fmt"
	"net/url"
	"sort"

	"pricing-chat/internal/extract"
	"pricing-chat/internal/repository/db"
)

// PaymentCTA is the payment-initiation payload attached to a recommendation.
type PaymentCTA struct {
	Provider          string `json:"provider"`
	TierName          string `json:"tier_name"`
	DisplayName       string `json:"display_name"`
	PriceMonthlyCents int64  `json:"price_monthly_cents"`
	PriceYearlyCents  *int64 `json:"price_yearly_cents"`
	CheckoutPath      string `json:"checkout_path"`
}

// Recommendation is the outcome of evaluating the tier rules.
type Recommendation struct {
	Tier             db.PricingTier
	Summary          string
	Benefits         []string
	PaymentCTA       PaymentCTA
	SelectionReasons []string
}

// unlimitedRequests is the sentinel meaning "no monthly volume limit".
const unlimitedRequests = -1

// capability is the normalized view of a tier's open limits map.
type capability struct {
	supportsArchive  bool
	supportedGeos    []string
	requestsPerMonth *int64
}

// checkResult is pass, or fail with the rejection reason.
type checkResult struct {
	ok     bool
	reason string
}

func pass() checkResult              { return checkResult{ok: true} }
func fail(reason string) checkResult { return checkResult{reason: reason} }

// tierCheck is one qualification rule. Checks run in order and the first
// failure disqualifies the tier with its reason.
type tierCheck func(answers extract.Answers, tier db.PricingTier, caps capability) checkResult

var qualificationChecks = []tierCheck{
	checkArchive,
	checkGeo,
	checkVolume,
	checkBudget,
}

// Recommend deterministically selects exactly one tier for the given answers.
// It fails only when no tiers are supplied; otherwise a recommendation is
// always produced, falling back to the cheapest tier.
func Recommend(answers extract.Answers, tiers []db.PricingTier) (*Recommendation, error) {
	if len(tiers) == 0 {
		return nil, fmt.Errorf("no pricing tiers configured")
	}

	sorted := make([]db.PricingTier, len(tiers))
	copy(sorted, tiers)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].PriceMonthlyCents < sorted[j].PriceMonthlyCents
	})

	chosen := sorted[0]
	reasons := []string{"Best available option"}

	for _, tier := range sorted {
		if ok, accepted := qualifies(answers, tier); ok {
			chosen = tier
			reasons = accepted
			break
		}
	}

	return buildRecommendation(chosen, reasons), nil
}

// qualifies runs the ordered checks; on success it returns the acceptance
// reasons for each user-provided field, in check order.
func qualifies(answers extract.Answers, tier db.PricingTier) (bool, []string) {
	caps := tierCapability(tier)

	for _, check := range qualificationChecks {
		if result := check(answers, tier, caps); !result.ok {
			return false, []string{result.reason}
		}
	}

	var reasons []string
	if needsArchive(answers) {
		reasons = append(reasons, "Includes archive data support")
	}
	if v := requestedVolume(answers); v > 0 {
		reasons = append(reasons, fmt.Sprintf("Fits estimated volume (~%d requests/month)", v))
	}
	if answers.BudgetMonthlyCents != nil {
		reasons = append(reasons, fmt.Sprintf("Fits budget (<= $%d/mo)", *answers.BudgetMonthlyCents/100))
	}

	return true, reasons
}

func checkArchive(answers extract.Answers, _ db.PricingTier, caps capability) checkResult {
	if needsArchive(answers) && !caps.supportsArchive {
		return fail("Does not support archive data")
	}
	return pass()
}

func checkGeo(answers extract.Answers, _ db.PricingTier, caps capability) checkResult {
	if answers.GeoPreference == nil || len(caps.supportedGeos) == 0 {
		return pass()
	}
	for _, geo := range caps.supportedGeos {
		if geo == *answers.GeoPreference {
			return pass()
		}
	}
	return fail(fmt.Sprintf("Not available in preferred region (%s)", *answers.GeoPreference))
}

func checkVolume(answers extract.Answers, _ db.PricingTier, caps capability) checkResult {
	if caps.requestsPerMonth == nil || *caps.requestsPerMonth == unlimitedRequests {
		return pass()
	}
	if requestedVolume(answers) > *caps.requestsPerMonth {
		return fail("Does not meet requested volume")
	}
	return pass()
}

func checkBudget(answers extract.Answers, tier db.PricingTier, _ capability) checkResult {
	if answers.BudgetMonthlyCents != nil && tier.PriceMonthlyCents > *answers.BudgetMonthlyCents {
		return fail("Above stated budget")
	}
	return pass()
}

func needsArchive(answers extract.Answers) bool {
	return answers.ArchiveNeeds != nil &&
		(*answers.ArchiveNeeds == extract.ArchivePartial || *answers.ArchiveNeeds == extract.ArchiveFull)
}

func requestedVolume(answers extract.Answers) int64 {
	if answers.RequestVolumePerMonth == nil {
		return 0
	}
	return *answers.RequestVolumePerMonth
}

// tierCapability reads the open limits map, tolerating absent or mistyped
// entries. requests_per_month has legacy fallback keys from earlier tier data.
func tierCapability(tier db.PricingTier) capability {
	caps := capability{}

	if v, ok := tier.Limits["supports_archive"].(bool); ok {
		caps.supportsArchive = v
	}

	if values, ok := tier.Limits["supported_geos"].([]interface{}); ok {
		for _, v := range values {
			if s, ok := v.(string); ok {
				caps.supportedGeos = append(caps.supportedGeos, s)
			}
		}
	}

	for _, key := range []string{"requests_per_month", "messages_per_month", "conversations_per_month"} {
		if f, ok := tier.Limits[key].(float64); ok {
			limit := int64(f)
			caps.requestsPerMonth = &limit
			break
		}
	}

	return caps
}

func buildRecommendation(tier db.PricingTier, reasons []string) *Recommendation {
	benefits := []string(tier.Features)
	if benefits == nil {
		benefits = []string{}
	}

	return &Recommendation{
		Tier:     tier,
		Summary:  fmt.Sprintf("Recommended: %s — $%d/mo", tier.DisplayName, tier.PriceMonthlyCents/100),
		Benefits: benefits,
		PaymentCTA: PaymentCTA{
			Provider:          "stripe",
			TierName:          tier.TierName,
			DisplayName:       tier.DisplayName,
			PriceMonthlyCents: tier.PriceMonthlyCents,
			PriceYearlyCents:  tier.PriceYearlyCents,
			CheckoutPath:      "/api/payments/link?tier=" + url.QueryEscape(tier.TierName),
		},
		SelectionReasons: reasons,
	}
}
