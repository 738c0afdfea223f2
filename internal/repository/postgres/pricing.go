package postgres

import (
	"database/sql"
	"fmt"

	"pricing-chat/internal/repository/db"
)

// GetActivePricingTiers retrieves active tiers ordered cheapest first.
func (p *PostgresDB) GetActivePricingTiers() ([]db.PricingTier, error) {
	query := `
	SELECT id, tier_name, display_name, COALESCE(description, ''), price_monthly_cents,
	       price_yearly_cents, features, limits, is_active, created_at
	FROM pricing_tiers
	WHERE is_active = TRUE
	ORDER BY price_monthly_cents ASC
	`

	rows, err := p.conn.Query(query)
	if err != nil {
		return nil, fmt.Errorf("error querying pricing tiers: %w", err)
	}
	defer rows.Close()

	var tiers []db.PricingTier
	for rows.Next() {
		var tier db.PricingTier
		if err := rows.Scan(
			&tier.ID, &tier.TierName, &tier.DisplayName, &tier.Description, &tier.PriceMonthlyCents,
			&tier.PriceYearlyCents, &tier.Features, &tier.Limits, &tier.IsActive, &tier.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("error scanning pricing tier: %w", err)
		}
		tiers = append(tiers, tier)
	}

	return tiers, rows.Err()
}

// GetPricingTierByName retrieves one active tier by its tier_name.
func (p *PostgresDB) GetPricingTierByName(tierName string) (*db.PricingTier, error) {
	var tier db.PricingTier
	query := `
	SELECT id, tier_name, display_name, COALESCE(description, ''), price_monthly_cents,
	       price_yearly_cents, features, limits, is_active, created_at
	FROM pricing_tiers
	WHERE tier_name = $1 AND is_active = TRUE
	`

	err := p.conn.QueryRow(query, tierName).Scan(
		&tier.ID, &tier.TierName, &tier.DisplayName, &tier.Description, &tier.PriceMonthlyCents,
		&tier.PriceYearlyCents, &tier.Features, &tier.Limits, &tier.IsActive, &tier.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, fmt.Errorf("pricing tier not found")
		}
		return nil, fmt.Errorf("error retrieving pricing tier: %w", err)
	}

	return &tier, nil
}
