package ratings

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/JDSB123/green-bier-sports-ncaam-model-sub000/internal/models"
)

// Barttorvik season exports are arrays of arrays, one row per team. Indices
// verified against the 2025_team_results.json structure:
// [0]=Rank, [1]=Team, [2]=Conf, [3]=Record, [4]=AdjOE, [6]=AdjDE,
// [8]=Barthag, [10]=EFG%, [11]=EFGD%, [12]=TOR, [13]=TORD, [14]=ORB,
// [15]=DRB, [16]=FTR, [17]=FTRD, [44]=AdjTempo, [45]=WAB.
const barttorvikMinColumns = 46

// ParseBarttorvik decodes a season export into rating snapshots. The season
// number comes from the filename or blob key, never from the payload itself.
// Incomplete rows are skipped; an empty result is an error because an empty
// season partition silently skips every game in that season.
func ParseBarttorvik(payload []byte, seasonYear int) ([]models.RatingSnapshot, error) {
	var rows [][]interface{}
	if err := json.Unmarshal(payload, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode barttorvik payload: %w", err)
	}

	snapshots := make([]models.RatingSnapshot, 0, len(rows))
	for _, row := range rows {
		if len(row) < barttorvikMinColumns {
			continue
		}
		name := strings.TrimSpace(toString(row[1]))
		if name == "" {
			continue
		}
		wins, losses := parseRecord(toString(row[3]))

		snapshots = append(snapshots, models.RatingSnapshot{
			Team:       models.CanonicalTeam{Name: name},
			Season:     seasonYear,
			Conference: toString(row[2]),
			Games:      wins + losses,
			AdjOffense: toFloat(row[4]),
			AdjDefense: toFloat(row[6]),
			Tempo:      toFloat(row[44]),
			FourFactors: models.FourFactors{
				EFG:  toFloat(row[10]),
				EFGD: toFloat(row[11]),
				TOR:  toFloat(row[12]),
				TORD: toFloat(row[13]),
				ORB:  toFloat(row[14]),
				DRB:  toFloat(row[15]),
				FTR:  toFloat(row[16]),
				FTRD: toFloat(row[17]),
			},
			Quality: models.QualityMetrics{
				Barthag: toFloat(row[8]),
				WAB:     toFloat(row[45]),
				Rank:    toInt(row[0]),
			},
		})
	}

	if len(snapshots) == 0 {
		return nil, fmt.Errorf("barttorvik payload for season %d contained no usable rows", seasonYear)
	}
	return snapshots, nil
}

func toInt(v interface{}) int {
	switch val := v.(type) {
	case float64:
		return int(val)
	case int:
		return val
	case string:
		i, _ := strconv.Atoi(val)
		return i
	}
	return 0
}

func toFloat(v interface{}) float64 {
	switch val := v.(type) {
	case float64:
		return val
	case int:
		return float64(val)
	case string:
		f, _ := strconv.ParseFloat(val, 64)
		return f
	}
	return 0
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case int:
		return strconv.Itoa(val)
	}
	return ""
}

func parseRecord(record string) (wins, losses int) {
	parts := strings.Split(record, "-")
	if len(parts) == 2 {
		wins, _ = strconv.Atoi(parts[0])
		losses, _ = strconv.Atoi(parts[1])
	}
	return wins, losses
}
