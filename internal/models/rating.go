package models

// FourFactors holds the offensive and defensive four-factor percentages for a
// team snapshot.
type FourFactors struct {
	EFG  float64 `json:"efg"`
	EFGD float64 `json:"efgd"`
	TOR  float64 `json:"tor"`
	TORD float64 `json:"tord"`
	ORB  float64 `json:"orb"`
	DRB  float64 `json:"drb"`
	FTR  float64 `json:"ftr"`
	FTRD float64 `json:"ftrd"`
}

// QualityMetrics holds the team-quality measures carried alongside the
// efficiency numbers.
type QualityMetrics struct {
	Barthag float64 `json:"barthag"`
	WAB     float64 `json:"wab"`
	Rank    int     `json:"rank"`
}

// RatingSnapshot is one team's performance metrics for one season. Exactly one
// snapshot exists per (team, season) and it is immutable once loaded.
type RatingSnapshot struct {
	Team        CanonicalTeam  `json:"team"`
	Season      int            `json:"season"`
	Conference  string         `json:"conference,omitempty"`
	Games       int            `json:"games,omitempty"`
	AdjOffense  float64        `json:"adj_offense"`
	AdjDefense  float64        `json:"adj_defense"`
	Tempo       float64        `json:"tempo"`
	FourFactors FourFactors    `json:"four_factors"`
	Quality     QualityMetrics `json:"quality"`
}

// NetRating is adjusted offensive efficiency minus adjusted defensive
// efficiency, in points per 100 possessions.
func (r RatingSnapshot) NetRating() float64 {
	return r.AdjOffense - r.AdjDefense
}
