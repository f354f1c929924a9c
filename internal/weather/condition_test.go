package weather

import "testing"

func TestMapCondition(t *testing.T) {
	tests := []struct {
		text string
		want Condition
	}{
		{"Sunny", ConditionClear},
		{"Clear", ConditionClear},
		{"Partly cloudy", ConditionClouds},
		{"Overcast", ConditionClouds},
		{"Light rain", ConditionRain},
		{"Patchy light drizzle", ConditionRain},
		{"Light rain shower", ConditionRain},
		{"Thundery outbreaks possible", ConditionThunderstorm},
		{"Moderate or heavy rain with thunder", ConditionThunderstorm},
		{"STORM", ConditionThunderstorm},
		{"Blowing snow", ConditionSnow},
		{"Light sleet", ConditionSnow},
		{"Blizzard", ConditionSnow},
		{"Moderate or heavy snow showers", ConditionSnow},
		{"Clear with mist patches", ConditionClear},
		{"Sunny intervals with showers", ConditionClear},
		{"Mist", ConditionMist},
		{"Freezing fog", ConditionMist},
		{"Haze", ConditionMist},
		{"", ConditionClouds},
		{"Volcanic ash", ConditionClouds},
	}

	for _, tt := range tests {
		if got := MapCondition(tt.text); got != tt.want {
			t.Errorf("MapCondition(%q) = %q, want %q", tt.text, got, tt.want)
		}
	}
}

// Any text containing "thunder" or "storm" maps to Thunderstorm, even when
// rain words are present too.
func TestMapConditionThunderTotality(t *testing.T) {
	for _, text := range []string{
		"thunder",
		"storm",
		"Patchy light rain with thunder",
		"heavy rain and thunderstorm",
		"Tropical storm with showers",
	} {
		if got := MapCondition(text); got != ConditionThunderstorm {
			t.Errorf("MapCondition(%q) = %q, want Thunderstorm", text, got)
		}
	}
}
