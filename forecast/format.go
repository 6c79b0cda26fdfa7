package forecast

import (
	"fmt"
	"strconv"
	"strings"
)

// Format renders one block per date, in the order the service returned them.
// Temperatures carry the symbol of the requested unit; the service is
// trusted to have converted values already.
func Format(q Query, days []Day) string {
	unitSymbol := "°F"
	if q.TemperatureUnit == "celsius" {
		unitSymbol = "°C"
	}

	lines := []string{
		fmt.Sprintf("Weather Forecast for (%s, %s)", formatCoord(q.Latitude), formatCoord(q.Longitude)),
		fmt.Sprintf("Timezone: %s", q.Timezone),
		strings.Repeat("-", 50),
	}

	for _, day := range days {
		lines = append(lines, fmt.Sprintf(
			"\n%s:\n"+
				"  Condition: %s\n"+
				"  Temperature: %s%s - %s%s\n"+
				"  Precipitation: %smm (probability: %s%%)\n"+
				"  Max Wind: %s km/h",
			day.Date,
			DescribeCondition(day.Code),
			formatValue(day.TempMin), unitSymbol,
			formatValue(day.TempMax), unitSymbol,
			formatValue(day.PrecipitationMM),
			formatValue(day.PrecipitationProbability),
			formatValue(day.MaxWindKPH),
		))
	}

	return strings.Join(lines, "\n")
}

// formatValue prints numbers without a forced decimal point, so a mocked 22
// renders as "22" and a real 21.5 as "21.5".
func formatValue(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}
