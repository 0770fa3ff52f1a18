package econ

import (
	"errors"
	"fmt"
)

// Params holds the coefficients of the club economy. Money amounts are in
// whole yen.
type Params struct {
	Fanbase       FanbaseParams       `yaml:"fanbase"`
	Sales         SalesParams         `yaml:"sales"`
	Sponsor       SponsorParams       `yaml:"sponsor"`
	Staff         StaffParams         `yaml:"staff"`
	Academy       AcademyParams       `yaml:"academy"`
	Reinforcement ReinforcementParams `yaml:"reinforcement"`
	Revenue       RevenueParams       `yaml:"revenue"`
}

type FanbaseParams struct {
	Population     int     `yaml:"population"`
	InitialRate    float64 `yaml:"initial_rate"`
	MaxRate        float64 `yaml:"max_rate"`
	Lambda         float64 `yaml:"lambda"`
	Phi            float64 `yaml:"phi"`
	G0             float64 `yaml:"g0"`
	A1             float64 `yaml:"a1"`
	A2             float64 `yaml:"a2"`
	A3             float64 `yaml:"a3"`
	A4             float64 `yaml:"a4"`
	SpendScale     float64 `yaml:"spend_scale"`
	FollowersSigma float64 `yaml:"followers_sigma"`
}

type SalesParams struct {
	StaffWeightRet  float64 `yaml:"staff_weight_ret"`
	MoneyWeightRet  float64 `yaml:"money_weight_ret"`
	StaffWeightNew  float64 `yaml:"staff_weight_new"`
	MoneyWeightNew  float64 `yaml:"money_weight_new"`
	LambdaRet       float64 `yaml:"lambda_ret"`
	LambdaNew       float64 `yaml:"lambda_new"`
	DefaultRhoNew   float64 `yaml:"default_rho_new"`
	DefaultSalesFTE int     `yaml:"default_sales_fte"`
}

type SponsorParams struct {
	InitialCount int   `yaml:"initial_count"`
	UnitPrice    int64 `yaml:"unit_price"`

	ChurnBase    float64 `yaml:"churn_base"`
	ChurnRet     float64 `yaml:"churn_ret"`
	ChurnPerf    float64 `yaml:"churn_perf"`
	ChurnHist    float64 `yaml:"churn_hist"`
	ChurnMin     float64 `yaml:"churn_min"`
	ChurnMax     float64 `yaml:"churn_max"`
	LeadsBase    float64 `yaml:"leads_base"`
	LeadsNew     float64 `yaml:"leads_new"`
	LeadsFanbase float64 `yaml:"leads_fanbase"`
	LeadsPerf    float64 `yaml:"leads_perf"`
	LeadsHist    float64 `yaml:"leads_hist"`
	ConvBase     float64 `yaml:"conv_base"`
	ConvNew      float64 `yaml:"conv_new"`
	ConvPerf     float64 `yaml:"conv_perf"`
	ConvFanbase  float64 `yaml:"conv_fanbase"`
	FanbaseRef   float64 `yaml:"fanbase_ref"`

	// Per-month confirmation probabilities for pipeline months 9, 10 and 11.
	ExistingConfirm [3]float64 `yaml:"existing_confirm"`
	NewConfirm      [3]float64 `yaml:"new_confirm"`
}

type StaffParams struct {
	InitialCount    int     `yaml:"initial_count"`
	AnnualSalary    int64   `yaml:"annual_salary"`
	SeveranceFactor float64 `yaml:"severance_factor"`
}

type AcademyParams struct {
	ProbabilityCap   float64 `yaml:"probability_cap"`
	ProbabilityScale int64   `yaml:"probability_scale"`
	ProbabilityRate  float64 `yaml:"probability_rate"`
	TransferMin      int64   `yaml:"transfer_min"`
	TransferMax      int64   `yaml:"transfer_max"`
}

type ReinforcementParams struct {
	// Months over which an additional budget is spread, inclusive.
	AdditionalFrom   int     `yaml:"additional_from"`
	AdditionalTo     int     `yaml:"additional_to"`
	TeamOperationPct float64 `yaml:"team_operation_pct"`
}

type RevenueParams struct {
	Distribution      int64   `yaml:"distribution"`
	MerchPerPerson    int64   `yaml:"merch_per_person"`
	MerchCostRate     float64 `yaml:"merch_cost_rate"`
	MatchOperation    int64   `yaml:"match_operation"`
	Prizes            []int64 `yaml:"prizes"`
	TaxRate           float64 `yaml:"tax_rate"`
	DefaultTicketYen  int64   `yaml:"default_ticket_price"`
	DistributionMonth int     `yaml:"distribution_month"`
	PrizeMonth        int     `yaml:"prize_month"`
	TaxMonth          int     `yaml:"tax_month"`
}

func DefaultParams() Params {
	return Params{
		Fanbase: FanbaseParams{
			Population:     1_000_000,
			InitialRate:    0.06,
			MaxRate:        0.25,
			Lambda:         0.10,
			Phi:            0.00002,
			G0:             -0.0005,
			A1:             0.006,
			A2:             0.006,
			A3:             0.010,
			A4:             0.006,
			SpendScale:     10_000_000,
			FollowersSigma: 0.15,
		},
		Sales: SalesParams{
			StaffWeightRet:  1.4,
			MoneyWeightRet:  0.12,
			StaffWeightNew:  1.6,
			MoneyWeightNew:  0.08,
			LambdaRet:       0.12,
			LambdaNew:       0.05,
			DefaultRhoNew:   0.5,
			DefaultSalesFTE: 1,
		},
		Sponsor: SponsorParams{
			InitialCount:    5,
			UnitPrice:       5_000_000,
			ChurnBase:       0.22,
			ChurnRet:        0.05,
			ChurnPerf:       0.06,
			ChurnHist:       0.04,
			ChurnMin:        0.05,
			ChurnMax:        0.45,
			LeadsBase:       8,
			LeadsNew:        4,
			LeadsFanbase:    1.2,
			LeadsPerf:       2,
			LeadsHist:       0.8,
			ConvBase:        -2,
			ConvNew:         0.55,
			ConvPerf:        0.45,
			ConvFanbase:     0.10,
			FanbaseRef:      60000,
			ExistingConfirm: [3]float64{0.40, 0.35, 0.30},
			NewConfirm:      [3]float64{0.15, 0.25, 0.35},
		},
		Staff: StaffParams{
			InitialCount:    1,
			AnnualSalary:    5_000_000,
			SeveranceFactor: 0.75,
		},
		Academy: AcademyParams{
			ProbabilityCap:   0.5,
			ProbabilityScale: 10_000_000,
			ProbabilityRate:  0.01,
			TransferMin:      50_000_000,
			TransferMax:      200_000_000,
		},
		Reinforcement: ReinforcementParams{
			AdditionalFrom:   6,
			AdditionalTo:     12,
			TeamOperationPct: 0.10,
		},
		Revenue: RevenueParams{
			Distribution:      50_000_000,
			MerchPerPerson:    800,
			MerchCostRate:     0.6,
			MatchOperation:    3_000_000,
			Prizes:            []int64{300_000_000, 150_000_000, 100_000_000, 50_000_000, 30_000_000},
			TaxRate:           0.33,
			DefaultTicketYen:  2500,
			DistributionMonth: 1,
			PrizeMonth:        11,
			TaxMonth:          2,
		},
	}
}

func (p Params) Validate() error {
	var errs []error
	if p.Fanbase.Population <= 0 {
		errs = append(errs, errors.New("fanbase.population must be positive"))
	}
	if p.Fanbase.MaxRate <= 0 || p.Fanbase.MaxRate > 1 {
		errs = append(errs, fmt.Errorf("fanbase.max_rate %v out of (0,1]", p.Fanbase.MaxRate))
	}
	if p.Fanbase.InitialRate < 0 || p.Fanbase.InitialRate > p.Fanbase.MaxRate {
		errs = append(errs, fmt.Errorf("fanbase.initial_rate %v out of [0,max_rate]", p.Fanbase.InitialRate))
	}
	if p.Fanbase.SpendScale <= 0 {
		errs = append(errs, errors.New("fanbase.spend_scale must be positive"))
	}
	if p.Sales.DefaultRhoNew < 0 || p.Sales.DefaultRhoNew > 1 {
		errs = append(errs, fmt.Errorf("sales.default_rho_new %v out of [0,1]", p.Sales.DefaultRhoNew))
	}
	for i := range 3 {
		for _, v := range []float64{p.Sponsor.ExistingConfirm[i], p.Sponsor.NewConfirm[i]} {
			if v < 0 || v > 1 {
				errs = append(errs, fmt.Errorf("sponsor confirmation probability %v out of [0,1]", v))
			}
		}
	}
	if p.Sponsor.FanbaseRef <= 0 {
		errs = append(errs, errors.New("sponsor.fanbase_ref must be positive"))
	}
	if p.Academy.TransferMin < 0 || p.Academy.TransferMax < p.Academy.TransferMin {
		errs = append(errs, errors.New("academy transfer range is empty"))
	}
	if p.Academy.ProbabilityScale <= 0 {
		errs = append(errs, errors.New("academy.probability_scale must be positive"))
	}
	r := p.Reinforcement
	if r.AdditionalFrom < 1 || r.AdditionalTo > 12 || r.AdditionalFrom > r.AdditionalTo {
		errs = append(errs, fmt.Errorf("reinforcement months %d..%d invalid", r.AdditionalFrom, r.AdditionalTo))
	}
	if p.Revenue.DefaultTicketYen < 0 {
		errs = append(errs, errors.New("revenue.default_ticket_price must not be negative"))
	}
	return errors.Join(errs...)
}
