package commission

// RuleTier is one band of the commissioning table. MaxSales is nil on the
// open-ended top tier.
type RuleTier struct {
	Tier           int     `json:"tier"`
	Name           string  `json:"name"`
	MinSales       int     `json:"minSales"`
	MaxSales       *int    `json:"maxSales"`
	CommissionRate float64 `json:"commissionRate"`
	Bonus          string  `json:"bonus,omitempty"`
}

type Rules struct {
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Tiers       []RuleTier `json:"tiers"`
}

func intPtr(v int) *int { return &v }

// DefaultRules is the static commissioning table shown to strategists.
func DefaultRules() Rules {
	return Rules{
		Title:       "Commissioning Rules",
		Description: "Reward system for high-performance strategists.",
		Tiers: []RuleTier{
			{Tier: 1, Name: "Rookie Operator", MinSales: 0, MaxSales: intPtr(5), CommissionRate: 10},
			{Tier: 2, Name: "Tactical Operator", MinSales: 6, MaxSales: intPtr(15), CommissionRate: 12,
				Bonus: "R$ 500 bonus at 10 sales"},
			{Tier: 3, Name: "Elite Operator", MinSales: 16, MaxSales: intPtr(30), CommissionRate: 15,
				Bonus: "R$ 1,500 bonus at 20 sales"},
			{Tier: 4, Name: "Commander", MinSales: 31, MaxSales: nil, CommissionRate: 18,
				Bonus: "R$ 5,000 bonus at 50 sales plus an exclusive trip"},
		},
	}
}
