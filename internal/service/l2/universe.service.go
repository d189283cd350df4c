package l2_service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"dailytrader/internal/domain"
	"dailytrader/internal/logger"
	"dailytrader/internal/repository"
)

// rankingWindow is how far back high_volume and the movers look
const rankingWindow = 7 * 24 * time.Hour

// assetCacheTTL bounds how long a broker asset list is reused. A warm
// lambda keeps the handler between daily runs, each run reloads
const assetCacheTTL = time.Hour

type UniverseService interface {
	// Select returns at most criteria.Limit unique symbols. A broker list
	// failure is returned, symbols that cannot be ranked are dropped
	Select(ctx context.Context, criteria domain.SelectionCriteria) ([]string, error)
}

type universeServiceHandler struct {
	ReferenceUniverse    domain.ReferenceUniverse
	AssetRepository      repository.AssetRepository
	MarketDataRepository repository.MarketDataRepository
	Now                  func() time.Time

	mu sync.Mutex
	// broker assets by exchange key
	assetCache map[string]cachedAssets
}

type cachedAssets struct {
	assets   []domain.Asset
	loadedAt time.Time
}

func NewUniverseService(
	referenceUniverse domain.ReferenceUniverse,
	assetRepository repository.AssetRepository,
	marketDataRepository repository.MarketDataRepository,
) UniverseService {
	return &universeServiceHandler{
		ReferenceUniverse:    referenceUniverse,
		AssetRepository:      assetRepository,
		MarketDataRepository: marketDataRepository,
		Now:                  time.Now,
		assetCache:           map[string]cachedAssets{},
	}
}

func (h *universeServiceHandler) Select(ctx context.Context, criteria domain.SelectionCriteria) ([]string, error) {
	if err := criteria.Validate(); err != nil {
		return nil, err
	}
	log := logger.FromContext(ctx)

	if criteria.Source == domain.UniverseSource_Static {
		return truncate(domain.Dedupe(criteria.Symbols), criteria.Limit), nil
	}

	groups, err := h.candidateGroups(criteria)
	if err != nil {
		return nil, err
	}

	var selected []string
	switch criteria.Method {
	case domain.SelectionMethod_BrokerAll:
		selected = truncate(flatten(groups), criteria.Limit)
	case domain.SelectionMethod_Diversified:
		selected = diversified(groups, sectorCap(criteria), criteria.Limit)
	case domain.SelectionMethod_HighVolume:
		selected = h.highVolume(ctx, flatten(groups), minVolume(criteria), criteria.Limit)
	case domain.SelectionMethod_TopGainers:
		selected = h.topMovers(ctx, flatten(groups), true, criteria.Limit)
	case domain.SelectionMethod_TopLosers:
		selected = h.topMovers(ctx, flatten(groups), false, criteria.Limit)
	case domain.SelectionMethod_Mixed:
		selected = h.mixed(ctx, groups, criteria)
	default:
		return nil, fmt.Errorf("unknown selection method %q", criteria.Method)
	}

	log.Infof("selected %d symbols via %s/%s: %s", len(selected), criteria.Source, criteria.Method, strings.Join(selected, ","))
	return selected, nil
}

// candidateGroups returns one group per sector for the reference universe
// and a single group for the broker list, which has no sector metadata
func (h *universeServiceHandler) candidateGroups(criteria domain.SelectionCriteria) ([][]string, error) {
	if criteria.UsesBroker() {
		symbols, err := h.brokerSymbols(criteria)
		if err != nil {
			return nil, err
		}
		return [][]string{symbols}, nil
	}

	seen := map[string]bool{}
	groups := make([][]string, 0, len(h.ReferenceUniverse))
	for _, sector := range h.ReferenceUniverse {
		group := []string{}
		for _, symbol := range sector.Symbols {
			if symbol == "" || seen[symbol] {
				continue
			}
			seen[symbol] = true
			group = append(group, symbol)
		}
		groups = append(groups, group)
	}
	return groups, nil
}

func (h *universeServiceHandler) brokerSymbols(criteria domain.SelectionCriteria) ([]string, error) {
	assets, err := h.brokerAssets(criteria)
	if err != nil {
		return nil, err
	}

	symbols := []string{}
	for _, asset := range assets {
		if criteria.RequireFractionable && !asset.Fractionable {
			continue
		}
		if criteria.RequireShortable && !asset.Shortable {
			continue
		}
		symbols = append(symbols, asset.Symbol)
	}
	return domain.Dedupe(symbols), nil
}

func (h *universeServiceHandler) brokerAssets(criteria domain.SelectionCriteria) ([]domain.Asset, error) {
	key := criteria.ExchangeKey()
	now := h.Now()

	h.mu.Lock()
	defer h.mu.Unlock()
	if cached, ok := h.assetCache[key]; ok && now.Sub(cached.loadedAt) < assetCacheTTL {
		return cached.assets, nil
	}

	all, err := h.AssetRepository.ListAssets()
	if err != nil {
		return nil, fmt.Errorf("failed to load broker universe: %w", err)
	}

	assets := []domain.Asset{}
	for _, asset := range all {
		if !asset.Tradable {
			continue
		}
		if !onExchange(asset, criteria.Exchanges) {
			continue
		}
		assets = append(assets, asset)
	}

	h.assetCache[key] = cachedAssets{assets: assets, loadedAt: now}
	return assets, nil
}

func onExchange(asset domain.Asset, exchanges []string) bool {
	if len(exchanges) == 0 {
		return true
	}
	for _, e := range exchanges {
		if strings.EqualFold(strings.TrimSpace(e), asset.Exchange) {
			return true
		}
	}
	return false
}

func sectorCap(criteria domain.SelectionCriteria) int {
	if criteria.UsesBroker() {
		return 0
	}
	return criteria.PerSectorCap
}

func minVolume(criteria domain.SelectionCriteria) float64 {
	if criteria.MinVolume <= 0 {
		return domain.DefaultMinVolume
	}
	return criteria.MinVolume
}

func truncate(symbols []string, limit int) []string {
	if len(symbols) > limit {
		return symbols[:limit]
	}
	return symbols
}

func flatten(groups [][]string) []string {
	out := []string{}
	for _, g := range groups {
		out = append(out, g...)
	}
	return domain.Dedupe(out)
}

// diversified takes one symbol per group per round so no group gets more
// than one ahead of another. perGroupCap of 0 means no cap
func diversified(groups [][]string, perGroupCap, limit int) []string {
	out := []string{}
	seen := map[string]bool{}
	for round := 0; perGroupCap == 0 || round < perGroupCap; round++ {
		progressed := false
		for _, group := range groups {
			if round >= len(group) {
				continue
			}
			progressed = true
			symbol := group[round]
			if seen[symbol] {
				continue
			}
			seen[symbol] = true
			out = append(out, symbol)
			if len(out) >= limit {
				return out
			}
		}
		if !progressed {
			break
		}
	}
	return out
}

type rankedSymbol struct {
	symbol string
	value  float64
}

// sortRanked orders by value, descending unless ascending is set, with
// ties broken by symbol
func sortRanked(ranked []rankedSymbol, ascending bool) {
	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].value != ranked[j].value {
			if ascending {
				return ranked[i].value < ranked[j].value
			}
			return ranked[i].value > ranked[j].value
		}
		return ranked[i].symbol < ranked[j].symbol
	})
}

func symbolsOf(ranked []rankedSymbol, limit int) []string {
	out := make([]string, 0, len(ranked))
	for _, r := range ranked {
		out = append(out, r.symbol)
	}
	return truncate(out, limit)
}

func (h *universeServiceHandler) recentBars(ctx context.Context, symbol string) (*domain.PriceSeries, bool) {
	end := h.Now()
	series, err := h.MarketDataRepository.GetBars(symbol, end.Add(-rankingWindow), end)
	if err != nil {
		logger.FromContext(ctx).Warnf("dropping %s from ranking: %v", symbol, err)
		return nil, false
	}
	return series, true
}

func (h *universeServiceHandler) highVolume(ctx context.Context, candidates []string, floor float64, limit int) []string {
	ranked := []rankedSymbol{}
	for _, symbol := range candidates {
		series, ok := h.recentBars(ctx, symbol)
		if !ok || series.Len() == 0 {
			continue
		}
		avg := mean(series.Volumes())
		if avg < floor {
			continue
		}
		ranked = append(ranked, rankedSymbol{symbol: symbol, value: avg})
	}
	sortRanked(ranked, false)
	return symbolsOf(ranked, limit)
}

func (h *universeServiceHandler) topMovers(ctx context.Context, candidates []string, gainers bool, limit int) []string {
	ranked := []rankedSymbol{}
	for _, symbol := range candidates {
		series, ok := h.recentBars(ctx, symbol)
		if !ok {
			continue
		}
		change, ok := series.LastChangePercent()
		if !ok {
			continue
		}
		ranked = append(ranked, rankedSymbol{symbol: symbol, value: change})
	}
	sortRanked(ranked, !gainers)
	return symbolsOf(ranked, limit)
}

// mixed fills half the slots from diversified and the rest from
// high_volume, backfilling from the diversified order when short
func (h *universeServiceHandler) mixed(ctx context.Context, groups [][]string, criteria domain.SelectionCriteria) []string {
	limit := criteria.Limit
	spread := diversified(groups, sectorCap(criteria), len(flatten(groups)))

	half := (limit + 1) / 2
	out := append([]string{}, truncate(spread, half)...)
	seen := map[string]bool{}
	for _, s := range out {
		seen[s] = true
	}

	add := func(symbols []string) {
		for _, s := range symbols {
			if len(out) >= limit {
				return
			}
			if seen[s] {
				continue
			}
			seen[s] = true
			out = append(out, s)
		}
	}

	add(h.highVolume(ctx, flatten(groups), minVolume(criteria), limit))
	add(spread)
	return out
}
