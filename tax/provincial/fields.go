package provincial

import (
	"fmt"
	"slices"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/tax"
)

// Fields holds the provincial amounts and rates of the tax year. Each
// jurisdiction uses a subset of them, nil means not set.
type Fields struct {
	PersonalAmount           *endgame.Money
	PersonalAmountSupplement *endgame.Money
	PersonalAmountThreshold  *endgame.Money
	PersonalAmountRate       *endgame.Rate

	AgeAmount                    *endgame.Money
	AgeAmountThreshold           *endgame.Money
	AgeAmountSupplement          *endgame.Money
	AgeAmountSupplementThreshold *endgame.Money
	AgeAmountSupplementRate      *endgame.Rate
	AgeTaxCredit                 *endgame.Money
	AgeTaxCreditThreshold        *endgame.Money

	PensionIncomeMax  *endgame.Money
	PensionIncomeRate *endgame.Rate

	DividendMultiplier *endgame.Rate // credit as a fraction of the grossed-up dividends

	Brackets *tax.Brackets

	LowIncomeBasic     *endgame.Money
	LowIncomeAge       *endgame.Money
	LowIncomeThreshold *endgame.Money
	LowIncomeRate      *endgame.Rate

	SurtaxThreshold1 *endgame.Money
	SurtaxRate1      *endgame.Rate
	SurtaxThreshold2 *endgame.Money
	SurtaxRate2      *endgame.Rate
	HealthPremium    *tax.Brackets

	ScheduleBThreshold *endgame.Money
	ScheduleBRate      *endgame.Rate
	LiveAloneAmount    *endgame.Money
}

// Field names, as used in scenario files and error messages.
const (
	personalAmt               = "personal_amt"
	personalAmtSupplement     = "personal_amt_supplement"
	personalAmtThreshold      = "personal_amt_threshold"
	personalAmtRate           = "personal_amt_rate"
	ageAmt                    = "age_amt"
	ageAmtThreshold           = "age_amt_threshold"
	ageAmtSupplement          = "age_amt_supplement"
	ageAmtSupplementThreshold = "age_amt_supplement_threshold"
	ageAmtSupplementRate      = "age_amt_supplement_rate"
	ageTaxCredit              = "age_tax_credit"
	ageTaxCreditThreshold     = "age_tax_credit_threshold"
	pensionIncomeMax          = "pension_income_max"
	pensionIncomeRate         = "pension_income_rate"
	dvdGrossUpMult            = "dvd_gross_up_mult"
	taxBrackets               = "tax_brackets"
	lowIncomeBasic            = "low_income_basic"
	lowIncomeAge              = "low_income_age"
	lowIncomeThreshold        = "low_income_threshold"
	lowIncomeRate             = "low_income_rate"
	surtaxThreshold1          = "surtax_threshold1"
	surtaxRate1               = "surtax_rate1"
	surtaxThreshold2          = "surtax_threshold2"
	surtaxRate2               = "surtax_rate2"
	healthPremium             = "health_premium_tax_brackets"
	scheduleBThreshold        = "schedule_b_threshold"
	scheduleBRate             = "schedule_b_rate"
	liveAloneAmt              = "live_alone_amt"
)

// present returns the names of the fields that are set.
func (f *Fields) present() []string {
	set := map[string]bool{
		personalAmt:               f.PersonalAmount != nil,
		personalAmtSupplement:     f.PersonalAmountSupplement != nil,
		personalAmtThreshold:      f.PersonalAmountThreshold != nil,
		personalAmtRate:           f.PersonalAmountRate != nil,
		ageAmt:                    f.AgeAmount != nil,
		ageAmtThreshold:           f.AgeAmountThreshold != nil,
		ageAmtSupplement:          f.AgeAmountSupplement != nil,
		ageAmtSupplementThreshold: f.AgeAmountSupplementThreshold != nil,
		ageAmtSupplementRate:      f.AgeAmountSupplementRate != nil,
		ageTaxCredit:              f.AgeTaxCredit != nil,
		ageTaxCreditThreshold:     f.AgeTaxCreditThreshold != nil,
		pensionIncomeMax:          f.PensionIncomeMax != nil,
		pensionIncomeRate:         f.PensionIncomeRate != nil,
		dvdGrossUpMult:            f.DividendMultiplier != nil,
		taxBrackets:               f.Brackets != nil,
		lowIncomeBasic:            f.LowIncomeBasic != nil,
		lowIncomeAge:              f.LowIncomeAge != nil,
		lowIncomeThreshold:        f.LowIncomeThreshold != nil,
		lowIncomeRate:             f.LowIncomeRate != nil,
		surtaxThreshold1:          f.SurtaxThreshold1 != nil,
		surtaxRate1:               f.SurtaxRate1 != nil,
		surtaxThreshold2:          f.SurtaxThreshold2 != nil,
		surtaxRate2:               f.SurtaxRate2 != nil,
		healthPremium:             f.HealthPremium != nil,
		scheduleBThreshold:        f.ScheduleBThreshold != nil,
		scheduleBRate:             f.ScheduleBRate != nil,
		liveAloneAmt:              f.LiveAloneAmount != nil,
	}
	var names []string
	for name, ok := range set {
		if ok {
			names = append(names, name)
		}
	}
	slices.Sort(names)
	return names
}

var (
	core      = []string{taxBrackets, personalAmt, ageAmt, ageAmtThreshold, pensionIncomeMax, dvdGrossUpMult}
	lowIncome = []string{lowIncomeBasic, lowIncomeThreshold, lowIncomeRate}
)

// required returns the fields a jurisdiction needs, and only those.
func required(jurisdiction string) ([]string, bool) {
	switch jurisdiction {
	case "MB", "SK", "AB", "YT", "NT", "NU":
		return core, true
	case "NB", "BC", "NL":
		return concat(core, lowIncome), true
	case "PE":
		return concat(core, lowIncome, []string{lowIncomeAge}), true
	case "NS":
		return concat(core, lowIncome, []string{
			personalAmtThreshold, personalAmtSupplement, personalAmtRate,
			ageAmtSupplement, ageAmtSupplementRate, ageAmtSupplementThreshold,
			ageTaxCredit, ageTaxCreditThreshold,
		}), true
	case "ON":
		return concat(core, []string{lowIncomeBasic, surtaxThreshold1, surtaxRate1, surtaxThreshold2, surtaxRate2, healthPremium}), true
	case "QC":
		return []string{taxBrackets, scheduleBThreshold, scheduleBRate, personalAmt, ageAmt, liveAloneAmt, pensionIncomeMax, pensionIncomeRate, dvdGrossUpMult}, true
	}
	return nil, false
}

func concat(lists ...[]string) []string {
	var res []string
	for _, l := range lists {
		res = append(res, l...)
	}
	return res
}

// Validate checks that exactly the fields required by jurisdiction are set.
func (f *Fields) Validate(jurisdiction string) error {
	want, ok := required(jurisdiction)
	if !ok {
		return fmt.Errorf("%w: unknown jurisdiction %q", endgame.ErrConfig, jurisdiction)
	}
	got := f.present()
	var missing, unexpected []string
	for _, name := range want {
		if !slices.Contains(got, name) {
			missing = append(missing, name)
		}
	}
	for _, name := range got {
		if !slices.Contains(want, name) {
			unexpected = append(unexpected, name)
		}
	}
	switch {
	case len(missing) > 0:
		return fmt.Errorf("%w: %s provincial tax is missing %s", endgame.ErrConfig, jurisdiction, strings.Join(missing, ", "))
	case len(unexpected) > 0:
		return fmt.Errorf("%w: %s provincial tax does not use %s", endgame.ErrConfig, jurisdiction, strings.Join(unexpected, ", "))
	}
	return nil
}

// Jurisdictions lists the supported provinces and territories.
func Jurisdictions() []string {
	return []string{"AB", "BC", "MB", "NB", "NL", "NS", "NT", "NU", "ON", "PE", "QC", "SK", "YT"}
}

func money(m *endgame.Money) endgame.Money {
	if m == nil {
		return endgame.Zero(endgame.DefaultCurrency)
	}
	return *m
}

func rate(r *endgame.Rate) endgame.Rate {
	if r == nil {
		return endgame.R(0)
	}
	return *r
}
