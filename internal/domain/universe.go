package domain

import (
	"fmt"
	"sort"
	"strings"
)

type Sector string

const (
	Sector_Technology    Sector = "Technology"
	Sector_Financial     Sector = "Financial"
	Sector_Healthcare    Sector = "Healthcare"
	Sector_Consumer      Sector = "Consumer"
	Sector_Energy        Sector = "Energy"
	Sector_Industrial    Sector = "Industrial"
	Sector_Communication Sector = "Communication"
	Sector_Materials     Sector = "Materials"
)

// SectorSymbols is one sector of a reference universe, symbols in
// priority order
type SectorSymbols struct {
	Sector  Sector
	Symbols []string
}

// ReferenceUniverse is an ordered list of sectors. Order matters: the
// diversified selection walks sectors in this order
type ReferenceUniverse []SectorSymbols

var defaultReferenceUniverse = ReferenceUniverse{
	{Sector_Technology, []string{"AAPL", "MSFT", "GOOGL", "META", "NVDA", "AMD", "INTC", "CSCO", "ORCL", "CRM"}},
	{Sector_Financial, []string{"JPM", "BAC", "WFC", "GS", "MS", "C", "BLK", "SCHW", "AXP", "USB"}},
	{Sector_Healthcare, []string{"JNJ", "UNH", "PFE", "ABBV", "TMO", "MRK", "ABT", "DHR", "BMY", "LLY"}},
	{Sector_Consumer, []string{"AMZN", "TSLA", "WMT", "HD", "NKE", "MCD", "SBUX", "TGT", "LOW", "CVS"}},
	{Sector_Energy, []string{"XOM", "CVX", "COP", "SLB", "EOG", "MPC", "PSX", "VLO", "OXY", "HAL"}},
	{Sector_Industrial, []string{"BA", "CAT", "GE", "HON", "UPS", "RTX", "LMT", "MMM", "DE", "EMR"}},
	{Sector_Communication, []string{"DIS", "CMCSA", "NFLX", "T", "VZ", "TMUS", "CHTR", "EA", "ATVI", "TTWO"}},
	{Sector_Materials, []string{"LIN", "APD", "ECL", "SHW", "DD", "NEM", "FCX", "NUE", "VMC", "MLM"}},
}

// DefaultReferenceUniverse returns the built-in 80 symbol universe. The
// returned value is a copy so callers can't mutate the shared table
func DefaultReferenceUniverse() ReferenceUniverse {
	out := make(ReferenceUniverse, 0, len(defaultReferenceUniverse))
	for _, s := range defaultReferenceUniverse {
		symbols := make([]string, len(s.Symbols))
		copy(symbols, s.Symbols)
		out = append(out, SectorSymbols{Sector: s.Sector, Symbols: symbols})
	}
	return out
}

// Symbols flattens the universe sector by sector, dropping duplicates
func (u ReferenceUniverse) Symbols() []string {
	seen := map[string]bool{}
	out := []string{}
	for _, s := range u {
		for _, symbol := range s.Symbols {
			if !seen[symbol] {
				seen[symbol] = true
				out = append(out, symbol)
			}
		}
	}
	return out
}

func (u ReferenceUniverse) SectorOf(symbol string) (Sector, bool) {
	for _, s := range u {
		for _, x := range s.Symbols {
			if x == symbol {
				return s.Sector, true
			}
		}
	}
	return "", false
}

// SectorDistribution counts how many of the given symbols fall in each
// sector. Symbols outside the universe are ignored
func (u ReferenceUniverse) SectorDistribution(symbols []string) map[Sector]int {
	out := map[Sector]int{}
	for _, symbol := range symbols {
		if sector, ok := u.SectorOf(symbol); ok {
			out[sector]++
		}
	}
	return out
}

type SelectionMethod string

const (
	SelectionMethod_Diversified SelectionMethod = "diversified"
	SelectionMethod_HighVolume  SelectionMethod = "high_volume"
	SelectionMethod_TopGainers  SelectionMethod = "top_gainers"
	SelectionMethod_TopLosers   SelectionMethod = "top_losers"
	SelectionMethod_Mixed       SelectionMethod = "mixed"
	SelectionMethod_BrokerAll   SelectionMethod = "broker_all"
)

func (m SelectionMethod) Valid() bool {
	switch m {
	case SelectionMethod_Diversified,
		SelectionMethod_HighVolume,
		SelectionMethod_TopGainers,
		SelectionMethod_TopLosers,
		SelectionMethod_Mixed,
		SelectionMethod_BrokerAll:
		return true
	}
	return false
}

type UniverseSource string

const (
	UniverseSource_Static    UniverseSource = "static"
	UniverseSource_Reference UniverseSource = "reference"
	UniverseSource_Broker    UniverseSource = "broker"
)

// DefaultMinVolume is the average daily volume floor for high_volume
const DefaultMinVolume = 5_000_000

// SelectionCriteria is built once per run from config
type SelectionCriteria struct {
	Source  UniverseSource
	Method  SelectionMethod
	Limit   int
	Symbols []string // only used by the static source

	Exchanges           []string
	PerSectorCap        int // 0 means no cap
	MinVolume           float64
	RequireFractionable bool
	RequireShortable    bool
}

func (c SelectionCriteria) Validate() error {
	if c.Limit <= 0 {
		return fmt.Errorf("selection limit must be positive, got %d", c.Limit)
	}
	switch c.Source {
	case UniverseSource_Static:
		if len(c.Symbols) == 0 {
			return fmt.Errorf("static universe requires at least one symbol")
		}
		return nil
	case UniverseSource_Reference, UniverseSource_Broker:
	default:
		return fmt.Errorf("unknown universe source %q", c.Source)
	}
	if !c.Method.Valid() {
		return fmt.Errorf("unknown selection method %q", c.Method)
	}
	if c.PerSectorCap < 0 {
		return fmt.Errorf("per sector cap must be >= 0, got %d", c.PerSectorCap)
	}
	return nil
}

func (c SelectionCriteria) UsesBroker() bool {
	return c.Source == UniverseSource_Broker || c.Method == SelectionMethod_BrokerAll
}

// ExchangeKey is a normalized, order independent key for the exchange filter
func (c SelectionCriteria) ExchangeKey() string {
	return ExchangeKey(c.Exchanges)
}

func ExchangeKey(exchanges []string) string {
	if len(exchanges) == 0 {
		return "*"
	}
	normalized := make([]string, 0, len(exchanges))
	for _, e := range exchanges {
		normalized = append(normalized, strings.ToUpper(strings.TrimSpace(e)))
	}
	sort.Strings(normalized)
	return strings.Join(normalized, ",")
}

// Asset is a broker listed instrument
type Asset struct {
	Symbol       string
	Exchange     string
	Tradable     bool
	Fractionable bool
	Shortable    bool
}
