// Package config reads scenario files.
//
// A scenario file is written in YAML or TOML, the format being chosen by
// the file extension. Both formats share the same keys:
//
//	syntax-version: "1"
//	description: retire at 65, no savings
//	birth: 1960-06-01
//	start-year: 2025
//	end-year: 2055
//	bank:
//	  cash: 5000
//	  small-balance-limit: 100
//	transactions:
//	  - kind: annuity
//	    when: on *-15
//	    amount: 1200
//
// Reference tables (GIS brackets, mortality) live in their own files, named
// relative to the scenario file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/etnz/endgame"
	"github.com/etnz/endgame/date"
	"github.com/etnz/endgame/schedule"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

// SyntaxVersion is the only version of the scenario syntax this package reads.
const SyntaxVersion = "1"

// File is the content of a scenario file.
type File struct {
	SyntaxVersion string    `yaml:"syntax-version" toml:"syntax-version"`
	Description   string    `yaml:"description" toml:"description"`
	Birth         date.Date `yaml:"birth" toml:"birth"`
	Sex           string    `yaml:"sex" toml:"sex"`
	StartYear     int       `yaml:"start-year" toml:"start-year"`
	EndYear       int       `yaml:"end-year" toml:"end-year"`

	Iterations int    `yaml:"iterations" toml:"iterations"`
	Seed       uint64 `yaml:"seed" toml:"seed"`
	Isolate    bool   `yaml:"isolate-failures" toml:"isolate-failures"`

	Mortality *Mortality `yaml:"mortality" toml:"mortality"`

	Bank Bank        `yaml:"bank" toml:"bank"`
	RIF  *Registered `yaml:"rif" toml:"rif"`
	LIF  *Registered `yaml:"lif" toml:"lif"`
	TFSA *TFSA       `yaml:"tfsa" toml:"tfsa"`
	NRA  *NRA        `yaml:"nra" toml:"nra"`

	// RifMinima overrides the minimum withdrawal rates, by age on Jan 1.
	RifMinima map[string]endgame.Rate `yaml:"rif-minima" toml:"rif-minima"`
	// LifMaxima are the maximum withdrawal rates by jurisdiction group
	// (CA-YT-NT-NU, MN-QC-NS or AB-BC-ON-NB-NL-SK) and age on Jan 1.
	LifMaxima map[string]map[string]endgame.Rate `yaml:"lif-maxima" toml:"lif-maxima"`

	Stocks []Stock `yaml:"stocks" toml:"stocks"`
	// PriceHistory names a JSON file of past prices by symbol and date,
	// looked at when liquidations avoid a downturn.
	PriceHistory string     `yaml:"price-history" toml:"price-history"`
	Commission   Commission `yaml:"commission" toml:"commission"`
	Prices       *Prices    `yaml:"stock-prices" toml:"stock-prices"`

	Federal    Federal     `yaml:"federal" toml:"federal"`
	Provincial *Provincial `yaml:"provincial" toml:"provincial"`
	YearZero   YearZero    `yaml:"year-zero" toml:"year-zero"`

	CPP *CPP `yaml:"cpp" toml:"cpp"`
	OAS *OAS `yaml:"oas" toml:"oas"`

	Transactions []Transaction `yaml:"transactions" toml:"transactions"`

	dir string // of the file, to resolve the reference tables
}

// Mortality names the lx table drawn against every December 31. Either
// Table is a file, or Dir holds one file per sex.
type Mortality struct {
	Table string `yaml:"table" toml:"table"`
	Dir   string `yaml:"dir" toml:"dir"`
	Test  bool   `yaml:"test" toml:"test"`
}

type Bank struct {
	Cash              endgame.Money `yaml:"cash" toml:"cash"`
	SmallBalanceLimit endgame.Money `yaml:"small-balance-limit" toml:"small-balance-limit"`
}

// Holdings are the assets of an investment account when the simulation
// starts.
type Holdings struct {
	Cash      endgame.Money `yaml:"cash" toml:"cash"`
	Positions []Position    `yaml:"positions" toml:"positions"`
	GICs      []GIC         `yaml:"gics" toml:"gics"`
}

type Position struct {
	Symbol string `yaml:"symbol" toml:"symbol"`
	Shares int    `yaml:"shares" toml:"shares"`
	// BookValue is the adjusted cost base of the position, NRA only.
	BookValue endgame.Money `yaml:"book-value" toml:"book-value"`
}

// GIC is dated either by its purchase or by its maturity.
type GIC struct {
	Principal endgame.Money `yaml:"principal" toml:"principal"`
	SoldBy    string        `yaml:"sold-by" toml:"sold-by"`
	Rate      endgame.Rate  `yaml:"rate" toml:"rate"`
	Purchase  date.Date     `yaml:"purchase" toml:"purchase"`
	Maturity  date.Date     `yaml:"maturity" toml:"maturity"`
	Term      int           `yaml:"term" toml:"term"`
}

// Registered is a RIF or a LIF.
type Registered struct {
	Holdings     `yaml:",inline" toml:",inline"`
	Conversion   date.Date `yaml:"conversion" toml:"conversion"`
	Jurisdiction string    `yaml:"jurisdiction" toml:"jurisdiction"` // LIF only
}

type TFSA struct {
	Holdings   `yaml:",inline" toml:",inline"`
	Room       endgame.Money `yaml:"room" toml:"room"`
	YearlyRoom endgame.Money `yaml:"yearly-room" toml:"yearly-room"`
}

type NRA struct {
	Holdings `yaml:",inline" toml:",inline"`
}

type Stock struct {
	Symbol   string        `yaml:"symbol" toml:"symbol"`
	Price    endgame.Money `yaml:"price" toml:"price"`
	Dividend *Dividend     `yaml:"dividend" toml:"dividend"`
}

type Dividend struct {
	Amount endgame.Money     `yaml:"amount" toml:"amount"`
	When   schedule.Schedule `yaml:"when" toml:"when"`
	Growth endgame.Rate      `yaml:"growth" toml:"growth"`
}

// Commission is charged on every trade. At most one is set, none means no
// commission.
type Commission struct {
	Amount  endgame.Money `yaml:"amount" toml:"amount"`
	Percent endgame.Rate  `yaml:"percent" toml:"percent"`
}

// Prices is the yearly growth of stock prices. Policy is one of fixed,
// ranged, gaussian or explicit.
type Prices struct {
	Policy string         `yaml:"policy" toml:"policy"`
	Rate   endgame.Rate   `yaml:"rate" toml:"rate"`
	Low    endgame.Rate   `yaml:"low" toml:"low"`
	High   endgame.Rate   `yaml:"high" toml:"high"`
	Mean   endgame.Rate   `yaml:"mean" toml:"mean"`
	StdDev endgame.Rate   `yaml:"std-dev" toml:"std-dev"`
	Rates  []endgame.Rate `yaml:"rates" toml:"rates"`
}

// Bracket is a row of a tax table.
type Bracket struct {
	Rate endgame.Rate  `yaml:"rate" toml:"rate"`
	Max  endgame.Money `yaml:"max" toml:"max"`
}

type Federal struct {
	PersonalAmount           endgame.Money `yaml:"personal-amount" toml:"personal-amount"`
	PersonalAmountAdditional endgame.Money `yaml:"personal-amount-additional" toml:"personal-amount-additional"`
	PersonalAmountClawback   string        `yaml:"personal-amount-clawback" toml:"personal-amount-clawback"` // min_max
	AgeAmount                endgame.Money `yaml:"age-amount" toml:"age-amount"`
	AgeAmountThreshold       endgame.Money `yaml:"age-amount-threshold" toml:"age-amount-threshold"`
	PensionAmount            endgame.Money `yaml:"pension-amount" toml:"pension-amount"`
	Brackets                 []Bracket     `yaml:"brackets" toml:"brackets"`
	Withholding              []Bracket     `yaml:"withholding" toml:"withholding"`

	// Defaults to 65, 50%, 38% and 6/11.
	RetirementAge       int          `yaml:"retirement-age" toml:"retirement-age"`
	CapitalGainFraction endgame.Rate `yaml:"capital-gain-fraction" toml:"capital-gain-fraction"`
	DividendGrossUp     endgame.Rate `yaml:"dividend-gross-up" toml:"dividend-gross-up"`
	DividendCreditNum   int          `yaml:"dividend-credit-num" toml:"dividend-credit-num"`
	DividendCreditDenom int          `yaml:"dividend-credit-denom" toml:"dividend-credit-denom"`
}

// Provincial holds the provincial amounts. Each jurisdiction needs exactly
// its own subset of them.
type Provincial struct {
	Jurisdiction string `yaml:"jurisdiction" toml:"jurisdiction"`

	PersonalAmount           *endgame.Money `yaml:"personal_amt" toml:"personal_amt"`
	PersonalAmountSupplement *endgame.Money `yaml:"personal_amt_supplement" toml:"personal_amt_supplement"`
	PersonalAmountThreshold  *endgame.Money `yaml:"personal_amt_threshold" toml:"personal_amt_threshold"`
	PersonalAmountRate       *endgame.Rate  `yaml:"personal_amt_rate" toml:"personal_amt_rate"`

	AgeAmount                    *endgame.Money `yaml:"age_amt" toml:"age_amt"`
	AgeAmountThreshold           *endgame.Money `yaml:"age_amt_threshold" toml:"age_amt_threshold"`
	AgeAmountSupplement          *endgame.Money `yaml:"age_amt_supplement" toml:"age_amt_supplement"`
	AgeAmountSupplementThreshold *endgame.Money `yaml:"age_amt_supplement_threshold" toml:"age_amt_supplement_threshold"`
	AgeAmountSupplementRate      *endgame.Rate  `yaml:"age_amt_supplement_rate" toml:"age_amt_supplement_rate"`
	AgeTaxCredit                 *endgame.Money `yaml:"age_tax_credit" toml:"age_tax_credit"`
	AgeTaxCreditThreshold        *endgame.Money `yaml:"age_tax_credit_threshold" toml:"age_tax_credit_threshold"`

	PensionIncomeMax  *endgame.Money `yaml:"pension_income_max" toml:"pension_income_max"`
	PensionIncomeRate *endgame.Rate  `yaml:"pension_income_rate" toml:"pension_income_rate"`

	DividendMultiplier *endgame.Rate `yaml:"dvd_gross_up_mult" toml:"dvd_gross_up_mult"`

	Brackets []Bracket `yaml:"tax_brackets" toml:"tax_brackets"`

	LowIncomeBasic     *endgame.Money `yaml:"low_income_basic" toml:"low_income_basic"`
	LowIncomeAge       *endgame.Money `yaml:"low_income_age" toml:"low_income_age"`
	LowIncomeThreshold *endgame.Money `yaml:"low_income_threshold" toml:"low_income_threshold"`
	LowIncomeRate      *endgame.Rate  `yaml:"low_income_rate" toml:"low_income_rate"`

	SurtaxThreshold1 *endgame.Money `yaml:"surtax_threshold1" toml:"surtax_threshold1"`
	SurtaxRate1      *endgame.Rate  `yaml:"surtax_rate1" toml:"surtax_rate1"`
	SurtaxThreshold2 *endgame.Money `yaml:"surtax_threshold2" toml:"surtax_threshold2"`
	SurtaxRate2      *endgame.Rate  `yaml:"surtax_rate2" toml:"surtax_rate2"`
	HealthPremium    []Bracket      `yaml:"health_premium_tax_brackets" toml:"health_premium_tax_brackets"`

	ScheduleBThreshold *endgame.Money `yaml:"schedule_b_threshold" toml:"schedule_b_threshold"`
	ScheduleBRate      *endgame.Rate  `yaml:"schedule_b_rate" toml:"schedule_b_rate"`
	LiveAloneAmount    *endgame.Money `yaml:"live_alone_amt" toml:"live_alone_amt"`
}

// YearZero holds the amounts of the year before the simulation starts.
type YearZero struct {
	NetIncomeBeforeAdjustments endgame.Money `yaml:"net-income-before-adjustments" toml:"net-income-before-adjustments"`
	NetIncome                  endgame.Money `yaml:"net-income" toml:"net-income"`
	OAS                        endgame.Money `yaml:"oas" toml:"oas"`
	EmploymentIncome           endgame.Money `yaml:"employment-income" toml:"employment-income"`
}

// CPP is the Canada Pension Plan. Ages default to 65, 60 and 70.
type CPP struct {
	Start          date.Date     `yaml:"start" toml:"start"`
	Nominal        endgame.Money `yaml:"nominal" toml:"nominal"`
	PaymentDay     int           `yaml:"payment-day" toml:"payment-day"`
	MonthlyReward  endgame.Rate  `yaml:"monthly-reward" toml:"monthly-reward"`
	MonthlyPenalty endgame.Rate  `yaml:"monthly-penalty" toml:"monthly-penalty"`
	NominalAge     int           `yaml:"nominal-age" toml:"nominal-age"`
	EarliestAge    int           `yaml:"earliest-age" toml:"earliest-age"`
	LatestAge      int           `yaml:"latest-age" toml:"latest-age"`
	SurvivorAmount endgame.Money `yaml:"survivor-amount" toml:"survivor-amount"`
	SurvivorStart  date.Date     `yaml:"survivor-start" toml:"survivor-start"`
}

// OAS is the Old Age Security pension, with the Guaranteed Income
// Supplement when GISTable names a GIS bracket file. Ages default to 65,
// 70 and 75.
type OAS struct {
	Start             date.Date     `yaml:"start" toml:"start"`
	AtNominal         endgame.Money `yaml:"at-nominal" toml:"at-nominal"`
	PaymentDay        int           `yaml:"payment-day" toml:"payment-day"`
	MonthlyReward     endgame.Rate  `yaml:"monthly-reward" toml:"monthly-reward"`
	BoostAge          int           `yaml:"boost-age" toml:"boost-age"`
	Boost             endgame.Rate  `yaml:"boost" toml:"boost"`
	ClawbackThreshold endgame.Money `yaml:"clawback-threshold" toml:"clawback-threshold"`
	ClawbackRate      endgame.Rate  `yaml:"clawback-rate" toml:"clawback-rate"`
	EarliestAge       int           `yaml:"earliest-age" toml:"earliest-age"`
	LatestAge         int           `yaml:"latest-age" toml:"latest-age"`
	GISTable          string        `yaml:"gis-table" toml:"gis-table"`
	GISExempt         endgame.Money `yaml:"gis-exempt" toml:"gis-exempt"`
}

// Format of a scenario file.
type Format int

const (
	YAML Format = iota
	TOML
)

// FormatOf returns the format of a file from its extension.
func FormatOf(path string) (Format, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return YAML, nil
	case ".toml":
		return TOML, nil
	}
	return 0, fmt.Errorf("%w: unsupported scenario file %q, expecting .yaml, .yml or .toml", endgame.ErrConfig, path)
}

// Load reads and checks a scenario file.
func Load(path string) (*File, error) {
	format, err := FormatOf(path)
	if err != nil {
		return nil, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	f, err := Parse(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	f.dir = filepath.Dir(path)
	return f, nil
}

// Parse decodes a scenario. Reference tables are resolved relative to the
// working directory.
func Parse(data []byte, format Format) (*File, error) {
	if err := checkVersion(data, format); err != nil {
		return nil, err
	}
	f := new(File)
	var err error
	switch format {
	case TOML:
		err = toml.NewDecoder(bytes.NewReader(data)).DisallowUnknownFields().Decode(f)
	default:
		dec := yaml.NewDecoder(bytes.NewReader(data))
		dec.KnownFields(true)
		err = dec.Decode(f)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", endgame.ErrConfig, err)
	}
	return f, nil
}

// checkVersion reads only the syntax version, so that a file written for
// another version fails on its version rather than on its first unknown key.
func checkVersion(data []byte, format Format) error {
	var v struct {
		SyntaxVersion string `yaml:"syntax-version" toml:"syntax-version"`
	}
	var err error
	switch format {
	case TOML:
		err = toml.Unmarshal(data, &v)
	default:
		err = yaml.Unmarshal(data, &v)
	}
	if err != nil {
		return fmt.Errorf("%w: %w", endgame.ErrConfig, err)
	}
	switch v.SyntaxVersion {
	case SyntaxVersion:
		return nil
	case "":
		return fmt.Errorf("%w: missing syntax-version, expecting %q", endgame.ErrConfig, SyntaxVersion)
	}
	return fmt.Errorf("%w: syntax-version %q is not supported, expecting %q", endgame.ErrConfig, v.SyntaxVersion, SyntaxVersion)
}

// path resolves a reference table name.
func (f *File) path(name string) string {
	if filepath.IsAbs(name) || f.dir == "" {
		return name
	}
	return filepath.Join(f.dir, name)
}

// Env holds the settings read from the environment.
type Env struct {
	Output   string // report directory
	LogLevel string
}

// LoadEnv reads ENDGAME_OUTPUT and LOG_LEVEL.
func LoadEnv() (Env, error) {
	env := Env{
		Output:   getenvDefault("ENDGAME_OUTPUT", "reports"),
		LogLevel: getenvDefault("LOG_LEVEL", "info"),
	}
	if strings.TrimSpace(env.Output) == "" {
		return env, errors.New("ENDGAME_OUTPUT is blank")
	}
	return env, nil
}

func getenvDefault(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
