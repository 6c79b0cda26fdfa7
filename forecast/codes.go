package forecast

// WMO weather interpretation codes as published by Open-Meteo.
var conditionDescriptions = map[int]string{
	0:  "Clear sky",
	1:  "Mainly clear",
	2:  "Partly cloudy",
	3:  "Overcast",
	45: "Foggy",
	48: "Depositing rime fog",
	51: "Light drizzle",
	53: "Moderate drizzle",
	55: "Dense drizzle",
	61: "Slight rain",
	63: "Moderate rain",
	65: "Heavy rain",
	71: "Slight snow",
	73: "Moderate snow",
	75: "Heavy snow",
	80: "Slight rain showers",
	81: "Moderate rain showers",
	82: "Violent rain showers",
	95: "Thunderstorm",
	96: "Thunderstorm with slight hail",
	99: "Thunderstorm with heavy hail",
}

// DescribeCondition translates a weather condition code to a human-readable
// description. Unrecognized codes render as "Unknown" rather than failing.
func DescribeCondition(code int) string {
	if desc, ok := conditionDescriptions[code]; ok {
		return desc
	}
	return "Unknown"
}
