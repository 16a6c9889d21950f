package backtest

import (
	"sort"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/audit"
	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Aggregate is one bucket of graded-bet statistics.
type Aggregate struct {
	Bets        int     `json:"bets"`
	Wins        int     `json:"wins"`
	Losses      int     `json:"losses"`
	Pushes      int     `json:"pushes"`
	NoBets      int     `json:"no_bets"`
	Wagered     float64 `json:"wagered"`
	Profit      float64 `json:"profit"`
	ROI         float64 `json:"roi"`
	WinRate     float64 `json:"win_rate"`
	AvgEdge     float64 `json:"avg_edge"`
	AvgCLV      float64 `json:"avg_clv"`
	CLVPositive float64 `json:"clv_positive_rate"`
}

// CLVConditional reports win rate conditioned on the sign of closing line
// value. A real edge shows up as beating the close and winning together.
type CLVConditional struct {
	PositiveCLVBets    int     `json:"positive_clv_bets"`
	PositiveCLVWinRate float64 `json:"positive_clv_win_rate"`
	NegativeCLVBets    int     `json:"negative_clv_bets"`
	NegativeCLVWinRate float64 `json:"negative_clv_win_rate"`
}

// Summary is the run-level rollup: overall, per market, per season, plus
// skip accounting and the CLV-conditioned win rates.
type Summary struct {
	Overall   Aggregate                   `json:"overall"`
	ByMarket  map[models.Market]Aggregate `json:"by_market"`
	BySeason  map[int]Aggregate           `json:"by_season"`
	CLV       CLVConditional              `json:"clv"`
	Games     int                         `json:"games"`
	Completed int                         `json:"completed"`
	Skipped   int                         `json:"skipped"`
	SkipByWhy map[string]int              `json:"skip_reasons"`
}

// Summarize rolls up graded bets and the audit log into the run summary.
func Summarize(bets []models.BetResult, log *audit.Log) Summary {
	summary := Summary{
		ByMarket:  make(map[models.Market]Aggregate),
		BySeason:  make(map[int]Aggregate),
		SkipByWhy: make(map[string]int),
	}

	var overall accumulator
	byMarket := make(map[models.Market]*accumulator)
	bySeason := make(map[int]*accumulator)

	for _, bet := range bets {
		overall.add(bet)
		if _, ok := byMarket[bet.Market]; !ok {
			byMarket[bet.Market] = &accumulator{}
		}
		byMarket[bet.Market].add(bet)
		if _, ok := bySeason[bet.Season]; !ok {
			bySeason[bet.Season] = &accumulator{}
		}
		bySeason[bet.Season].add(bet)

		if bet.Settled() {
			if bet.CLV > 0 {
				summary.CLV.PositiveCLVBets++
				if bet.Outcome == models.OutcomeWin {
					summary.CLV.PositiveCLVWinRate++
				}
			} else if bet.CLV < 0 {
				summary.CLV.NegativeCLVBets++
				if bet.Outcome == models.OutcomeWin {
					summary.CLV.NegativeCLVWinRate++
				}
			}
		}
	}
	if summary.CLV.PositiveCLVBets > 0 {
		summary.CLV.PositiveCLVWinRate /= float64(summary.CLV.PositiveCLVBets)
	}
	if summary.CLV.NegativeCLVBets > 0 {
		summary.CLV.NegativeCLVWinRate /= float64(summary.CLV.NegativeCLVBets)
	}

	summary.Overall = overall.aggregate()
	for market, acc := range byMarket {
		summary.ByMarket[market] = acc.aggregate()
	}
	for seasonYear, acc := range bySeason {
		summary.BySeason[seasonYear] = acc.aggregate()
	}

	if log != nil {
		summary.Games = log.Len()
		summary.SkipByWhy = log.SkipCounts()
		for _, count := range summary.SkipByWhy {
			summary.Skipped += count
		}
		summary.Completed = summary.Games - summary.Skipped
	}
	return summary
}

// Seasons returns the seasons present in the summary, ascending.
func (s Summary) Seasons() []int {
	seasons := make([]int, 0, len(s.BySeason))
	for seasonYear := range s.BySeason {
		seasons = append(seasons, seasonYear)
	}
	sort.Ints(seasons)
	return seasons
}

type accumulator struct {
	bets        int
	wins        int
	losses      int
	pushes      int
	noBets      int
	wagered     float64
	profit      float64
	edgeSum     float64
	clvSum      float64
	clvPositive int
	clvCounted  int
}

func (a *accumulator) add(bet models.BetResult) {
	if bet.NoBet {
		a.noBets++
		return
	}
	a.bets++
	a.wagered += bet.Wager
	a.profit += bet.Profit
	a.edgeSum += bet.Edge
	a.clvSum += bet.CLV
	a.clvCounted++
	if bet.CLV > 0 {
		a.clvPositive++
	}
	switch bet.Outcome {
	case models.OutcomeWin:
		a.wins++
	case models.OutcomeLoss:
		a.losses++
	case models.OutcomePush:
		a.pushes++
	}
}

func (a *accumulator) aggregate() Aggregate {
	agg := Aggregate{
		Bets:    a.bets,
		Wins:    a.wins,
		Losses:  a.losses,
		Pushes:  a.pushes,
		NoBets:  a.noBets,
		Wagered: a.wagered,
		Profit:  a.profit,
	}
	if a.wagered > 0 {
		agg.ROI = a.profit / a.wagered
	}
	if decided := a.wins + a.losses; decided > 0 {
		agg.WinRate = float64(a.wins) / float64(decided)
	}
	if a.bets > 0 {
		agg.AvgEdge = a.edgeSum / float64(a.bets)
	}
	if a.clvCounted > 0 {
		agg.AvgCLV = a.clvSum / float64(a.clvCounted)
		agg.CLVPositive = float64(a.clvPositive) / float64(a.clvCounted)
	}
	return agg
}
