package plancatalog_adapter

import (
	"bytes"
	"fmt"
	"os"

	"findar-backend/internal/core/domain"

	"gopkg.in/yaml.v3"
)

type planEntry struct {
	PlanType       string  `yaml:"plan_type"`
	TargetAudience string  `yaml:"target_audience"`
	CreditCost     float64 `yaml:"credit_cost"`
	DurationMonths int     `yaml:"duration_months"`
}

type catalogFile struct {
	Plans []planEntry `yaml:"plans"`
}

// LoadFile reads the boosting plan catalog from path.
func LoadFile(path string) ([]domain.BoostingPlan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read plan catalog %s: %w", path, err)
	}
	plans, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("plan catalog %s: %w", path, err)
	}
	return plans, nil
}

// Parse rejects unknown keys, invalid plans and duplicate plan type/audience pairs.
func Parse(data []byte) ([]domain.BoostingPlan, error) {
	var file catalogFile
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&file); err != nil {
		return nil, fmt.Errorf("failed to decode yaml: %w", err)
	}

	seen := make(map[string]bool, len(file.Plans))
	plans := make([]domain.BoostingPlan, 0, len(file.Plans))
	for i, entry := range file.Plans {
		plan := domain.BoostingPlan{
			PlanType:       entry.PlanType,
			TargetAudience: domain.TargetAudience(entry.TargetAudience),
			CreditCost:     entry.CreditCost,
			DurationMonths: entry.DurationMonths,
		}
		if err := plan.Validate(); err != nil {
			return nil, fmt.Errorf("plan #%d: %w", i+1, err)
		}
		key := plan.PlanType + "/" + string(plan.TargetAudience)
		if seen[key] {
			return nil, fmt.Errorf("plan #%d: duplicate %s", i+1, key)
		}
		seen[key] = true
		plans = append(plans, plan)
	}
	return plans, nil
}
