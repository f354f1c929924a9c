package weather

import "github.com/adegtyarev/skycast/internal/common"

// MapCondition normalizes a provider's free-text condition description into
// the six-value enumeration. Matching is case-insensitive substring with a
// fixed precedence: thunder/storm wins over everything so "patchy rain with
// thunder" is a Thunderstorm, clear/sun is checked next, and snow wins over
// rain so "snow showers" is Snow. Anything unmatched defaults to Clouds.
func MapCondition(text string) Condition {
	switch {
	case common.HasAny(text, "thunder", "storm"):
		return ConditionThunderstorm
	case common.HasAny(text, "clear", "sun"):
		return ConditionClear
	case common.HasAny(text, "snow", "sleet", "blizzard"):
		return ConditionSnow
	case common.HasAny(text, "rain", "drizzle", "shower"):
		return ConditionRain
	case common.HasAny(text, "mist", "fog", "haze"):
		return ConditionMist
	case common.HasAny(text, "cloud", "overcast"):
		return ConditionClouds
	default:
		return ConditionClouds
	}
}
