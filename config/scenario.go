package config

import (
	"bytes"
	"fmt"
	"math/rand/v2"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/account"
	"github.com/etnz/endgame/benefit"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/security"
	"github.com/etnz/endgame/sim"
	"github.com/etnz/endgame/survival"
	"github.com/etnz/endgame/tax"
	"github.com/etnz/endgame/tax/provincial"
	"github.com/sirupsen/logrus"
)

// tables are the parts of a scenario read once and shared by every
// iteration. None of them changes during a simulation.
type tables struct {
	sex        survival.Sex
	mortality  *survival.Table
	gis        *benefit.GISTable
	federal    tax.FederalConfig
	provincial provincial.Fields
	minima     *account.Minima
	history    []byte
	maxima     *account.Maxima
}

// Builder returns a builder of fresh scenarios, one per iteration.
func (f *File) Builder() (sim.Builder, error) {
	t, err := f.tables()
	if err != nil {
		return nil, err
	}
	return func(_ int, rng *rand.Rand) (*sim.Scenario, error) {
		return f.scenario(t, rng)
	}, nil
}

// Runner returns a runner of the scenario, set up as the file says.
func (f *File) Runner(log logrus.FieldLogger, m *sim.Metrics) (*sim.Runner, error) {
	b, err := f.Builder()
	if err != nil {
		return nil, err
	}
	return &sim.Runner{
		Build:      b,
		Iterations: max(f.Iterations, 1),
		Isolate:    f.Isolate,
		Seed:       f.Seed,
		Log:        log,
		Metrics:    m,
	}, nil
}

// Check builds the scenario of the first iteration and validates it,
// without running it.
func (f *File) Check() (*sim.Scenario, error) {
	b, err := f.Builder()
	if err != nil {
		return nil, err
	}
	sc, err := b(1, rand.New(rand.NewPCG(f.Seed, 1)))
	if err != nil {
		return nil, err
	}
	return sc, sc.Validate()
}

func (f *File) tables() (*tables, error) {
	if f.Birth.IsZero() {
		return nil, fmt.Errorf("%w: missing birth date", endgame.ErrConfig)
	}
	t := &tables{}
	var err error
	if f.Sex != "" {
		if t.sex, err = survival.ParseSex(f.Sex); err != nil {
			return nil, err
		}
	}
	if m := f.Mortality; m != nil {
		switch {
		case m.Table != "":
			t.mortality, err = survival.Load(f.path(m.Table))
		case m.Dir != "" && t.sex != 0:
			t.mortality, err = survival.LoadFor(f.path(m.Dir), t.sex)
		default:
			err = fmt.Errorf("%w: mortality needs a table, or a dir and the sex", endgame.ErrConfig)
		}
		if err != nil {
			return nil, err
		}
	}
	if f.OAS != nil && f.OAS.GISTable != "" {
		if t.gis, err = benefit.LoadGIS(f.path(f.OAS.GISTable)); err != nil {
			return nil, err
		}
	}
	if t.federal, err = f.Federal.config(f.Birth); err != nil {
		return nil, err
	}
	if f.Provincial != nil {
		if t.provincial, err = f.Provincial.fields(); err != nil {
			return nil, err
		}
	}
	if f.PriceHistory != "" {
		if t.history, err = os.ReadFile(f.path(f.PriceHistory)); err != nil {
			return nil, err
		}
	}
	if len(f.RifMinima) > 0 {
		rows := make(map[int]endgame.Rate, len(f.RifMinima))
		for age, r := range f.RifMinima {
			n, err := strconv.Atoi(age)
			if err != nil {
				return nil, fmt.Errorf("%w: rif-minima: invalid age %q", endgame.ErrConfig, age)
			}
			rows[n] = r
		}
		t.minima = account.NewMinima(rows)
	}
	if len(f.LifMaxima) > 0 {
		t.maxima = account.NewMaxima()
		for group, rows := range f.LifMaxima {
			for age, r := range rows {
				n, err := strconv.Atoi(age)
				if err != nil {
					return nil, fmt.Errorf("%w: lif-maxima: invalid age %q", endgame.ErrConfig, age)
				}
				if err := t.maxima.Add(strings.ToUpper(group), n, r); err != nil {
					return nil, err
				}
			}
		}
	}
	return t, nil
}

// scenario builds the scenario of an iteration.
func (f *File) scenario(t *tables, rng *rand.Rand) (*sim.Scenario, error) {
	if f.StartYear == 0 || f.EndYear == 0 {
		return nil, fmt.Errorf("%w: missing start-year or end-year", endgame.ErrConfig)
	}
	start := date.New(f.StartYear, time.January, 1)
	gains := tax.NewCapitalGains()
	fed, err := tax.NewFederalReturn(f.StartYear, t.federal, gains)
	if err != nil {
		return nil, err
	}
	sc := &sim.Scenario{
		Description:  f.Description,
		Birth:        f.Birth,
		Sex:          t.sex,
		Period:       date.Range{From: start, To: date.New(f.EndYear, time.December, 31)},
		Survival:     t.mortality,
		SurvivalTest: f.Mortality != nil && f.Mortality.Test,
		Bank:         account.NewBank(cad(f.Bank.Cash), cad(f.Bank.SmallBalanceLimit), nil),
		Stocks:       security.New(),
		Gains:        gains,
		Federal:      fed,
		YearZero: tax.YearZero{
			NetIncomeBeforeAdjustments: cad(f.YearZero.NetIncomeBeforeAdjustments),
			NetIncome:                  cad(f.YearZero.NetIncome),
			OAS:                        cad(f.YearZero.OAS),
			EmploymentIncome:           cad(f.YearZero.EmploymentIncome),
		},
	}
	for _, s := range f.Stocks {
		if sc.Stocks.Has(s.Symbol) {
			return nil, fmt.Errorf("%w: stock %s is declared twice", endgame.ErrConfig, s.Symbol)
		}
		var d *security.Dividend
		if s.Dividend != nil {
			d = &security.Dividend{Amount: cad(s.Dividend.Amount), When: s.Dividend.When, Growth: s.Dividend.Growth}
		}
		sc.Stocks.Add(security.NewStock(s.Symbol, cad(s.Price), d, start))
	}
	if t.history != nil {
		if err := sc.Stocks.Import(bytes.NewReader(t.history)); err != nil {
			return nil, err
		}
	}
	if err := f.accounts(sc, t); err != nil {
		return nil, err
	}
	if f.Provincial != nil {
		if sc.Provincial, err = provincial.New(f.Provincial.Jurisdiction, t.provincial, fed); err != nil {
			return nil, err
		}
	}
	if sc.Commission, err = f.Commission.policy(); err != nil {
		return nil, err
	}
	if f.Prices != nil {
		if sc.Prices, err = f.Prices.policy(rng); err != nil {
			return nil, err
		}
	}

	// Income first, so that the configured transactions of a day see it.
	sc.Transactions = sc.InitialGicTransactions()
	if f.CPP != nil {
		cpp, err := f.CPP.pension(f.Birth)
		if err != nil {
			return nil, err
		}
		sc.Transactions = append(sc.Transactions, sim.CppTransaction(cpp))
	}
	if f.OAS != nil {
		oas, err := f.OAS.pension(f.Birth, t.gis)
		if err != nil {
			return nil, err
		}
		sc.Transactions = append(sc.Transactions, sim.OasTransaction(oas))
	}
	for s := range sc.Stocks.All() {
		if tx, ok := sim.DividendTransaction(s); ok {
			sc.Transactions = append(sc.Transactions, tx)
		}
	}
	for i, tx := range f.Transactions {
		txs, err := tx.transactions(start)
		if err != nil {
			return nil, fmt.Errorf("transaction %d: %w", i+1, err)
		}
		sc.Transactions = append(sc.Transactions, txs...)
	}
	return sc, nil
}

func (f *File) accounts(sc *sim.Scenario, t *tables) error {
	if f.RIF != nil {
		h, _, err := f.RIF.holdings(sc.Stocks)
		if err != nil {
			return err
		}
		sc.RIF, err = account.NewRIF(h, account.RegisteredConfig{
			Birth:      f.Birth,
			Conversion: f.RIF.Conversion,
			Minima:     t.minima,
			Tax:        sc.Federal,
		})
		if err != nil {
			return err
		}
	}
	if f.LIF != nil {
		h, _, err := f.LIF.holdings(sc.Stocks)
		if err != nil {
			return err
		}
		sc.LIF, err = account.NewLIF(h, account.RegisteredConfig{
			Birth:        f.Birth,
			Conversion:   f.LIF.Conversion,
			Jurisdiction: f.LIF.Jurisdiction,
			Minima:       t.minima,
			Maxima:       t.maxima,
			Tax:          sc.Federal,
		})
		if err != nil {
			return err
		}
	}
	if f.TFSA != nil {
		h, _, err := f.TFSA.holdings(sc.Stocks)
		if err != nil {
			return err
		}
		sc.Room = account.NewTfsaRoom(cad(f.TFSA.Room), cad(f.TFSA.YearlyRoom))
		sc.TFSA = account.NewTFSA(h, sc.Room)
	}
	if f.NRA != nil {
		h, bvs, err := f.NRA.holdings(sc.Stocks)
		if err != nil {
			return err
		}
		sc.NRA = account.NewNRA(h, bvs, sc.Federal, sc.Gains)
	}
	return nil
}

// holdings returns the assets of an account, with the book values of its
// positions.
func (h Holdings) holdings(stocks *security.Securities) (account.Holdings, []account.BookValue, error) {
	res := account.Holdings{Cash: cad(h.Cash)}
	var bvs []account.BookValue
	for _, p := range h.Positions {
		s, err := stocks.Get(p.Symbol)
		if err != nil {
			return res, nil, fmt.Errorf("%w: position in an undeclared stock: %w", endgame.ErrConfig, err)
		}
		if p.Shares <= 0 {
			return res, nil, fmt.Errorf("%w: position of %d %s", endgame.ErrConfig, p.Shares, p.Symbol)
		}
		res.Positions = append(res.Positions, account.Position{Stock: s, Shares: p.Shares})
		bvs = append(bvs, account.BookValue{Symbol: s.Symbol(), Amount: cad(p.BookValue)})
	}
	for _, g := range h.GICs {
		gic, err := g.gic()
		if err != nil {
			return res, nil, err
		}
		res.GICs = append(res.GICs, gic)
	}
	return res, bvs, nil
}

func (g GIC) gic() (security.GIC, error) {
	switch {
	case !g.Maturity.IsZero() && !g.Purchase.IsZero():
		return security.GIC{}, fmt.Errorf("%w: GIC from %s has both a purchase and a maturity date", endgame.ErrConfig, g.SoldBy)
	case !g.Maturity.IsZero():
		return security.NewGICMaturingOn(cad(g.Principal), g.SoldBy, g.Rate, g.Maturity, g.Term)
	case !g.Purchase.IsZero():
		return security.NewGIC(cad(g.Principal), g.SoldBy, g.Rate, g.Purchase, g.Term)
	}
	return security.GIC{}, fmt.Errorf("%w: GIC from %s has neither a purchase nor a maturity date", endgame.ErrConfig, g.SoldBy)
}

func (c Commission) policy() (security.Commission, error) {
	switch {
	case !c.Amount.IsZero() && !c.Percent.IsZero():
		return nil, fmt.Errorf("%w: a commission is either an amount or a percent", endgame.ErrConfig)
	case !c.Amount.IsZero():
		return security.FixedAmount{Amount: cad(c.Amount)}, nil
	case !c.Percent.IsZero():
		return security.FixedPercent{Rate: c.Percent}, nil
	}
	return security.NoCommission{}, nil
}

// policy returns the price policy of an iteration. Random policies draw
// from rng.
func (p Prices) policy(rng *rand.Rand) (security.PricePolicy, error) {
	switch strings.ToLower(p.Policy) {
	case "fixed":
		return security.FixedGrowth{Rate: p.Rate}, nil
	case "ranged":
		if !p.Low.Decimal().LessThan(p.High.Decimal()) {
			return nil, fmt.Errorf("%w: ranged growth needs low below high", endgame.ErrConfig)
		}
		return security.RangedGrowth{Low: p.Low, High: p.High, Rand: rng}, nil
	case "gaussian":
		return security.GaussianGrowth{Mean: p.Mean, StdDev: p.StdDev, Rand: rng}, nil
	case "explicit":
		return security.NewExplicitGrowth(p.Rates...)
	}
	return nil, fmt.Errorf("%w: unknown stock price policy %q, expecting fixed, ranged, gaussian or explicit", endgame.ErrConfig, p.Policy)
}

func (f Federal) config(birth date.Date) (tax.FederalConfig, error) {
	cfg := tax.FederalConfig{
		Birth:                    birth,
		PersonalAmount:           cad(f.PersonalAmount),
		PersonalAmountAdditional: cad(f.PersonalAmountAdditional),
		AgeAmount:                cad(f.AgeAmount),
		AgeAmountThreshold:       cad(f.AgeAmountThreshold),
		PensionAmount:            cad(f.PensionAmount),
		RetirementAge:            orInt(f.RetirementAge, 65),
		CapitalGainFraction:      orRate(f.CapitalGainFraction, endgame.R(0.5)),
		DividendGrossUp:          orRate(f.DividendGrossUp, endgame.R(0.38)),
		DividendCreditNum:        orInt(f.DividendCreditNum, 6),
		DividendCreditDenom:      orInt(f.DividendCreditDenom, 11),
	}
	var err error
	if f.PersonalAmountClawback != "" {
		if cfg.PersonalAmountClawback, err = tax.ParseRange(f.PersonalAmountClawback); err != nil {
			return cfg, err
		}
	} else if !f.PersonalAmountAdditional.IsZero() {
		return cfg, fmt.Errorf("%w: the additional personal amount needs a personal-amount-clawback range", endgame.ErrConfig)
	}
	if cfg.Brackets, err = brackets("federal", f.Brackets); err != nil {
		return cfg, err
	}
	if cfg.Withholding, err = brackets("withholding", f.Withholding); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

func brackets(name string, rows []Bracket) (*tax.Brackets, error) {
	bs := make([]tax.Bracket, 0, len(rows))
	for _, r := range rows {
		bs = append(bs, tax.Bracket{Rate: r.Rate, Max: cad(r.Max)})
	}
	b, err := tax.NewBrackets(bs...)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", name, err)
	}
	return b, nil
}

func (p Provincial) fields() (provincial.Fields, error) {
	f := provincial.Fields{
		PersonalAmount:               p.PersonalAmount,
		PersonalAmountSupplement:     p.PersonalAmountSupplement,
		PersonalAmountThreshold:      p.PersonalAmountThreshold,
		PersonalAmountRate:           p.PersonalAmountRate,
		AgeAmount:                    p.AgeAmount,
		AgeAmountThreshold:           p.AgeAmountThreshold,
		AgeAmountSupplement:          p.AgeAmountSupplement,
		AgeAmountSupplementThreshold: p.AgeAmountSupplementThreshold,
		AgeAmountSupplementRate:      p.AgeAmountSupplementRate,
		AgeTaxCredit:                 p.AgeTaxCredit,
		AgeTaxCreditThreshold:        p.AgeTaxCreditThreshold,
		PensionIncomeMax:             p.PensionIncomeMax,
		PensionIncomeRate:            p.PensionIncomeRate,
		DividendMultiplier:           p.DividendMultiplier,
		LowIncomeBasic:               p.LowIncomeBasic,
		LowIncomeAge:                 p.LowIncomeAge,
		LowIncomeThreshold:           p.LowIncomeThreshold,
		LowIncomeRate:                p.LowIncomeRate,
		SurtaxThreshold1:             p.SurtaxThreshold1,
		SurtaxRate1:                  p.SurtaxRate1,
		SurtaxThreshold2:             p.SurtaxThreshold2,
		SurtaxRate2:                  p.SurtaxRate2,
		ScheduleBThreshold:           p.ScheduleBThreshold,
		ScheduleBRate:                p.ScheduleBRate,
		LiveAloneAmount:              p.LiveAloneAmount,
	}
	var err error
	if len(p.Brackets) > 0 {
		if f.Brackets, err = brackets(p.Jurisdiction, p.Brackets); err != nil {
			return f, err
		}
	}
	if len(p.HealthPremium) > 0 {
		if f.HealthPremium, err = brackets(p.Jurisdiction+" health premium", p.HealthPremium); err != nil {
			return f, err
		}
	}
	return f, f.Validate(strings.ToUpper(p.Jurisdiction))
}

func (c CPP) pension(birth date.Date) (*benefit.CPP, error) {
	return benefit.NewCPP(benefit.CPPConfig{
		Birth:          birth,
		Start:          c.Start,
		Nominal:        cad(c.Nominal),
		PaymentDay:     orInt(c.PaymentDay, 1),
		MonthlyReward:  c.MonthlyReward,
		MonthlyPenalty: c.MonthlyPenalty,
		NominalAge:     orInt(c.NominalAge, 65),
		EarliestAge:    orInt(c.EarliestAge, 60),
		LatestAge:      orInt(c.LatestAge, 70),
		SurvivorAmount: cad(c.SurvivorAmount),
		SurvivorStart:  c.SurvivorStart,
	})
}

func (o OAS) pension(birth date.Date, gis *benefit.GISTable) (*benefit.OAS, error) {
	return benefit.NewOAS(benefit.OASConfig{
		Birth:             birth,
		Start:             o.Start,
		AtNominal:         cad(o.AtNominal),
		PaymentDay:        orInt(o.PaymentDay, 1),
		MonthlyReward:     o.MonthlyReward,
		BoostAge:          orInt(o.BoostAge, 75),
		Boost:             o.Boost,
		ClawbackThreshold: cad(o.ClawbackThreshold),
		ClawbackRate:      o.ClawbackRate,
		EarliestAge:       orInt(o.EarliestAge, 65),
		LatestAge:         orInt(o.LatestAge, 70),
		GIS:               gis,
		GISExempt:         cad(o.GISExempt),
	})
}

// cad gives a currency to amounts left out of the file.
func cad(m endgame.Money) endgame.Money { return m.Add(endgame.Zero(endgame.DefaultCurrency)) }

func orInt(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func orRate(r, fallback endgame.Rate) endgame.Rate {
	if r.IsZero() {
		return fallback
	}
	return r
}
