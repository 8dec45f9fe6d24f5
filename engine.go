package main

import (
	"fmt"
)

type HVACMode uint8

const (
	ModeOff HVACMode = iota
	ModeHeat
	ModeCool
)

type FanMode uint8

const (
	FanModeOff FanMode = iota
	FanModeLow
	FanModeMedium
	FanModeHigh
	FanModeAuto
)

// FanSpeed is a physical fan speed, as opposed to the requested FanMode.
type FanSpeed uint8

const (
	SpeedOff FanSpeed = iota
	SpeedLow
	SpeedMedium
	SpeedHigh
)

type Action uint8

const (
	ActionOff Action = iota
	ActionIdle
	ActionHeating
	ActionCooling
)

// Thresholds are the three ascending breakpoints on the absolute
// temperature error axis.
type Thresholds struct {
	Low    float64 `yaml:"low" json:"low"`
	Medium float64 `yaml:"medium" json:"medium"`
	High   float64 `yaml:"high" json:"high"`
}

var DefaultThresholds = Thresholds{Low: 0.5, Medium: 1.5, High: 2.5}

func (t Thresholds) validate() error {
	if t.Low <= 0 || !(t.Low < t.Medium && t.Medium < t.High) {
		return fmt.Errorf("thresholds must be positive and strictly ascending, got %.2f/%.2f/%.2f",
			t.Low, t.Medium, t.High)
	}
	return nil
}

// band maps a non-negative demand onto a speed tier. Boundary values
// belong to the higher band.
func (t Thresholds) band(diff float64) FanSpeed {
	switch {
	case diff < t.Low:
		return SpeedOff
	case diff < t.Medium:
		return SpeedLow
	case diff < t.High:
		return SpeedMedium
	default:
		return SpeedHigh
	}
}

// ControlPlan is the output of one decision cycle. A nil FanSpeed means the
// fan must be left alone. Noop plans carry no commands at all.
type ControlPlan struct {
	Noop      bool
	Action    Action
	FanSpeed  *FanSpeed
	CoolingOn bool
	HeatingOn bool
}

func (p ControlPlan) String() string {
	if p.Noop {
		return "noop"
	}
	fan := "-"
	if p.FanSpeed != nil {
		fan = fanSpeedToString(*p.FanSpeed)
	}
	return fmt.Sprintf("action=%s fan=%s cooling=%t heating=%t",
		actionToString(p.Action), fan, p.CoolingOn, p.HeatingOn)
}

func speedPtr(s FanSpeed) *FanSpeed { return &s }

// Equipment says which actuator groups an instance has. A group flag in a
// plan is only raised when the group exists; the action is reported either
// way so fan-only instances still show heating/cooling.
type Equipment struct {
	Cooling bool
	Heating bool
}

// ComputePlan is the decision engine. It is pure: the same inputs always
// yield the same plan.
func ComputePlan(mode HVACMode, current, target *float64, fanMode FanMode, th Thresholds, eq Equipment) ControlPlan {
	auto := fanMode == FanModeAuto

	if mode == ModeOff {
		plan := ControlPlan{Action: ActionOff}
		if auto {
			plan.FanSpeed = speedPtr(SpeedOff)
		}
		return plan
	}

	if current == nil || target == nil {
		return ControlPlan{Noop: true}
	}

	diff := *current - *target
	if mode == ModeHeat {
		// heating demand is positive when the room is colder than the target
		diff = -diff
	}

	speed := th.band(diff)
	plan := ControlPlan{Action: ActionIdle}
	if speed != SpeedOff {
		switch mode {
		case ModeCool:
			plan.Action = ActionCooling
			plan.CoolingOn = eq.Cooling
		case ModeHeat:
			plan.Action = ActionHeating
			plan.HeatingOn = eq.Heating
		}
	}
	if auto {
		plan.FanSpeed = speedPtr(speed)
	}
	return plan
}

// availableModes lists the HVAC modes an instance offers. An instance with
// no actuators at all offers both modes as fan-only operation.
func availableModes(cooling, heating []string) []HVACMode {
	modes := []HVACMode{ModeOff}
	none := len(cooling) == 0 && len(heating) == 0
	if len(heating) > 0 || none {
		modes = append(modes, ModeHeat)
	}
	if len(cooling) > 0 || none {
		modes = append(modes, ModeCool)
	}
	return modes
}

func modeOffered(modes []HVACMode, m HVACMode) bool {
	for _, o := range modes {
		if o == m {
			return true
		}
	}
	return false
}
