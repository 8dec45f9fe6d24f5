package main

func modeToString(mode HVACMode) string {
	switch mode {
	case ModeOff:
		return "off"
	case ModeHeat:
		return "heat"
	case ModeCool:
		return "cool"
	default:
		return "unknown"
	}
}

func stringToMode(mode string) (HVACMode, bool) {
	switch mode {
	case "off":
		return ModeOff, true
	case "heat":
		return ModeHeat, true
	case "cool":
		return ModeCool, true
	default:
		return ModeOff, false
	}
}

func fanModeToString(mode FanMode) string {
	switch mode {
	case FanModeOff:
		return "off"
	case FanModeLow:
		return "low"
	case FanModeMedium:
		return "medium"
	case FanModeHigh:
		return "high"
	case FanModeAuto:
		return "auto"
	default:
		return "unknown"
	}
}

func stringToFanMode(mode string) (FanMode, bool) {
	switch mode {
	case "off":
		return FanModeOff, true
	case "low":
		return FanModeLow, true
	case "medium", "med":
		return FanModeMedium, true
	case "high":
		return FanModeHigh, true
	case "auto":
		return FanModeAuto, true
	default:
		return FanModeAuto, false
	}
}

var fanModes = []string{"off", "low", "medium", "high", "auto"}

func fanSpeedToString(speed FanSpeed) string {
	switch speed {
	case SpeedOff:
		return "off"
	case SpeedLow:
		return "low"
	case SpeedMedium:
		return "medium"
	case SpeedHigh:
		return "high"
	default:
		return "unknown"
	}
}

// stringToFanSpeed parses a fan preset as reported by the device.
func stringToFanSpeed(speed string) (FanSpeed, bool) {
	switch speed {
	case "off":
		return SpeedOff, true
	case "low":
		return SpeedLow, true
	case "medium", "med":
		return SpeedMedium, true
	case "high":
		return SpeedHigh, true
	default:
		return SpeedLow, false
	}
}

// fanModeSpeed is the physical speed a pinned (non-auto) fan mode asks for.
func fanModeSpeed(mode FanMode) (FanSpeed, bool) {
	switch mode {
	case FanModeOff:
		return SpeedOff, true
	case FanModeLow:
		return SpeedLow, true
	case FanModeMedium:
		return SpeedMedium, true
	case FanModeHigh:
		return SpeedHigh, true
	default:
		return SpeedOff, false
	}
}

func actionToString(action Action) string {
	switch action {
	case ActionOff:
		return "off"
	case ActionIdle:
		return "idle"
	case ActionHeating:
		return "heating"
	case ActionCooling:
		return "cooling"
	default:
		return "unknown"
	}
}
