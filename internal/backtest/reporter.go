package backtest

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// WriteSummaryText renders the run summary for the console.
func WriteSummaryText(w io.Writer, summary Summary) error {
	fmt.Fprintf(w, "Games: %d processed, %d complete, %d skipped\n",
		summary.Games, summary.Completed, summary.Skipped)
	for reason, count := range summary.SkipByWhy {
		fmt.Fprintf(w, "  skipped %-18s %d\n", reason+":", count)
	}

	fmt.Fprintf(w, "\n%-10s %6s %5s %5s %5s %8s %8s %8s %8s\n",
		"market", "bets", "W", "L", "P", "win%", "roi%", "edge", "clv")
	writeAggregateRow(w, "overall", summary.Overall)
	for _, market := range models.AllMarkets() {
		if agg, ok := summary.ByMarket[market]; ok {
			writeAggregateRow(w, string(market), agg)
		}
	}

	if len(summary.BySeason) > 0 {
		fmt.Fprintf(w, "\n%-10s %6s %8s %8s %8s\n", "season", "bets", "win%", "roi%", "clv+")
		for _, seasonYear := range summary.Seasons() {
			agg := summary.BySeason[seasonYear]
			fmt.Fprintf(w, "%-10d %6d %7.1f%% %7.2f%% %7.1f%%\n",
				seasonYear, agg.Bets, agg.WinRate*100, agg.ROI*100, agg.CLVPositive*100)
		}
	}

	fmt.Fprintf(w, "\nCLV+ bets: %d (win %.1f%%), CLV- bets: %d (win %.1f%%)\n",
		summary.CLV.PositiveCLVBets, summary.CLV.PositiveCLVWinRate*100,
		summary.CLV.NegativeCLVBets, summary.CLV.NegativeCLVWinRate*100)
	return nil
}

func writeAggregateRow(w io.Writer, label string, agg Aggregate) {
	fmt.Fprintf(w, "%-10s %6d %5d %5d %5d %7.1f%% %7.2f%% %8.2f %8.2f\n",
		label, agg.Bets, agg.Wins, agg.Losses, agg.Pushes,
		agg.WinRate*100, agg.ROI*100, agg.AvgEdge, agg.AvgCLV)
}

// WriteSummaryJSON writes the summary as indented JSON.
func WriteSummaryJSON(w io.Writer, summary Summary) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(summary)
}

// WriteWalkForwardText renders one console row per evaluated split.
func WriteWalkForwardText(w io.Writer, result *WalkForwardResult) error {
	fmt.Fprintf(w, "%-10s %-8s %6s %8s %8s %8s\n",
		"test", "train", "bets", "win%", "roi%", "skipped")
	for _, sr := range result.Splits {
		fmt.Fprintf(w, "%-10d %-8d %6d %7.1f%% %7.2f%% %8d\n",
			sr.Split.TestSeason, len(sr.Split.TrainSeasons),
			sr.Summary.Overall.Bets, sr.Summary.Overall.WinRate*100,
			sr.Summary.Overall.ROI*100, sr.Summary.Skipped)
	}
	if len(result.Excluded) > 0 {
		fmt.Fprintf(w, "excluded (insufficient training history): %v\n", result.Excluded)
	}
	return nil
}

// WriteWalkForwardJSON writes the per-split summaries as indented JSON.
func WriteWalkForwardJSON(w io.Writer, result *WalkForwardResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(struct {
		Splits   []SplitResult `json:"splits"`
		Excluded []int         `json:"excluded_seasons,omitempty"`
	}{Splits: result.Splits, Excluded: result.Excluded})
}

// WriteBetsCSV exports every bet decision, including no-bets, for external
// analysis.
func WriteBetsCSV(w io.Writer, bets []models.BetResult) error {
	writer := csv.NewWriter(w)
	header := []string{
		"game_id", "season", "market", "home", "away",
		"predicted_line", "opening_line", "closing_line", "edge",
		"pick_side", "price", "wager", "outcome", "profit", "clv", "clv_percent", "no_bet",
	}
	if err := writer.Write(header); err != nil {
		return fmt.Errorf("failed to write bets header: %w", err)
	}

	for _, bet := range bets {
		row := []string{
			bet.GameID,
			strconv.Itoa(bet.Season),
			string(bet.Market),
			bet.Home,
			bet.Away,
			formatFloat(bet.PredictedLine),
			formatFloat(bet.OpeningLine),
			formatFloat(bet.ClosingLine),
			formatFloat(bet.Edge),
			string(bet.PickSide),
			formatFloat(bet.Price),
			formatFloat(bet.Wager),
			string(bet.Outcome),
			formatFloat(bet.Profit),
			formatFloat(bet.CLV),
			formatFloat(bet.CLVPercent),
			strconv.FormatBool(bet.NoBet),
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write bet row: %w", err)
		}
	}
	writer.Flush()
	return writer.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
