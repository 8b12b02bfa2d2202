package engine

import "github.com/MRamiBalles/EchoesOfEternity/internal/domain/fragment"

// PatternSolved is reported when a subset of fragments settles into a pattern.
// It is both an action result and the PATTERN_SOLVED event payload.
type PatternSolved struct {
	Name        string `json:"name"`
	Points      int    `json:"points"`
	FragmentIDs []int  `json:"fragment_ids"`
}

// SpawnPayload lists fragments added to the board by a level start or a placement.
type SpawnPayload struct {
	Level       int   `json:"level"`
	FragmentIDs []int `json:"fragment_ids"`
}

// MovePayload records an accepted move.
type MovePayload struct {
	FragmentID int               `json:"fragment_id"`
	From       fragment.Position `json:"from"`
	To         fragment.Position `json:"to"`
	Cost       int               `json:"cost"`
}

// RotatePayload records an accepted rotation.
type RotatePayload struct {
	FragmentID int               `json:"fragment_id"`
	From       fragment.Rotation `json:"from"`
	To         fragment.Rotation `json:"to"`
	Cost       int               `json:"cost"`
}

// LevelPayload records a level transition.
type LevelPayload struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// SkipPayload records a paid puzzle skip.
type SkipPayload struct {
	Cost int `json:"cost"`
}

// RejectionPayload records why an action was refused.
type RejectionPayload struct {
	Op         string `json:"op"`
	FragmentID int    `json:"fragment_id"`
	Reason     string `json:"reason"`
}
