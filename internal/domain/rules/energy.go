// Package rules contains the pure calculation logic for game mechanics.
// This package is PURE and must NOT import any infrastructure packages.
package rules

import (
	"fmt"
	"math"
)

// Action identifies an energy-consuming player action.
type Action string

const (
	ActionMove         Action = "moveFragment"
	ActionRotate       Action = "rotateFragment"
	ActionSolvePattern Action = "solvePatternPuzzle"
	ActionSkipPuzzle   Action = "skipPuzzle"
)

const (
	// BaseCapacity is the Chrono-Energy capacity before level and upgrade bonuses.
	BaseCapacity = 100.0
	// BaseRegenRate is the regeneration in energy units per second before bonuses.
	BaseRegenRate = 1.0

	capacityPerLevel   = 10.0
	capacityPerUpgrade = 20.0
	regenPerLevel      = 0.1
	regenPerUpgrade    = 0.5

	// Discounts are tracked in whole percent so costs floor exactly.
	levelDiscountPct   = 2
	maxLevelDiscount   = 30
	upgradeDiscountPct = 5
)

var baseActionCost = map[Action]int{
	ActionMove:         2,
	ActionRotate:       1,
	ActionSolvePattern: 5,
	ActionSkipPuzzle:   25,
}

// LookupCost validates an action key and returns its undiscounted cost.
// Use it at input boundaries; the other functions assume a known action.
func LookupCost(action Action) (int, error) {
	cost, ok := baseActionCost[action]
	if !ok {
		return 0, fmt.Errorf("unknown action %q", action)
	}
	return cost, nil
}

// Capacity is the maximum energy a player can hold.
func Capacity(level, upgrades int) float64 {
	return BaseCapacity + float64(level)*capacityPerLevel + float64(upgrades)*capacityPerUpgrade
}

// RegenRate is the passive regeneration in energy units per second.
func RegenRate(level, upgrades int) float64 {
	return BaseRegenRate + float64(level)*regenPerLevel + float64(upgrades)*regenPerUpgrade
}

// ActionCost returns the discounted cost of an action, never less than 1.
// It panics on an unknown action: that is a caller bug, not a game state.
func ActionCost(action Action, level, upgrades int) int {
	base, err := LookupCost(action)
	if err != nil {
		panic(err)
	}

	discount := min(maxLevelDiscount, level*levelDiscountPct) + upgrades*upgradeDiscountPct
	cost := base * (100 - discount) / 100
	if cost < 1 {
		return 1
	}
	return cost
}

// HasEnough reports whether current energy covers the action.
func HasEnough(current float64, action Action, level, upgrades int) bool {
	return current >= float64(ActionCost(action, level, upgrades))
}

// Debit returns the energy left after paying for the action, floored at zero.
func Debit(current float64, action Action, level, upgrades int) float64 {
	return math.Max(0, current-float64(ActionCost(action, level, upgrades)))
}

// Credit adds amount to current without exceeding capacity.
// A capacityOverride <= 0 means "use Capacity(level, upgrades)".
func Credit(current, amount float64, level, upgrades int, capacityOverride float64) float64 {
	limit := capacityOverride
	if limit <= 0 {
		limit = Capacity(level, upgrades)
	}
	return math.Min(limit, current+amount)
}

// Accrue applies passive regeneration over elapsedSeconds.
// Any non-negative amount is applied exactly; batching small gains is the caller's policy.
func Accrue(current, elapsedSeconds float64, level, upgrades int, capacityOverride float64) float64 {
	if elapsedSeconds < 0 {
		panic(fmt.Sprintf("negative elapsed time %v", elapsedSeconds))
	}
	return Credit(current, RegenRate(level, upgrades)*elapsedSeconds, level, upgrades, capacityOverride)
}
