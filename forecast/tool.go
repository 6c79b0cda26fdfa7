package forecast

import (
	"context"
	"fmt"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"skycast/tools"
)

// ToolName is the name the model uses to request a forecast.
const ToolName = "get_weather_forecast"

// Tool exposes the forecast client to the dialogue agent.
type Tool struct {
	client *Client
	log    *logrus.Entry
}

var _ tools.Executor = (*Tool)(nil)

// NewTool wraps a forecast client as a tool executor.
func NewTool(client *Client, log *logrus.Entry) *Tool {
	return &Tool{client: client, log: log}
}

// Definition implements tools.Executor.
func (t *Tool) Definition() mcptypes.Tool {
	return mcptypes.NewTool(ToolName,
		mcptypes.WithDescription("Fetch a daily weather forecast for a coordinate pair and date range from the Open-Meteo API."),
		mcptypes.WithNumber("latitude",
			mcptypes.Required(),
			mcptypes.Description("Latitude of the location (e.g., 40.7128 for New York)"),
		),
		mcptypes.WithNumber("longitude",
			mcptypes.Required(),
			mcptypes.Description("Longitude of the location (e.g., -74.0060 for New York)"),
		),
		mcptypes.WithString("start_date",
			mcptypes.Description("Start date in YYYY-MM-DD format (defaults to today)"),
		),
		mcptypes.WithString("end_date",
			mcptypes.Description("End date in YYYY-MM-DD format (defaults to 7 days from start)"),
		),
		mcptypes.WithString("temperature_unit",
			mcptypes.Description("Either 'celsius' or 'fahrenheit' (defaults to 'fahrenheit')"),
			mcptypes.Enum("celsius", "fahrenheit"),
		),
		mcptypes.WithString("timezone",
			mcptypes.Description("Timezone string (defaults to 'auto' which infers from coordinates)"),
		),
	)
}

// Execute implements tools.Executor. Date defaults are applied here, at
// invocation time, so user-supplied dates always override. Failures degrade
// to text results; the raw error is logged.
func (t *Tool) Execute(ctx context.Context, args map[string]any) tools.Result {
	lat, latOK := numberArg(args, "latitude")
	lon, lonOK := numberArg(args, "longitude")
	if !latOK || !lonOK {
		return tools.Failure("Error fetching weather data: latitude and longitude are required")
	}

	q := t.client.ApplyDefaults(Query{
		Latitude:        lat,
		Longitude:       lon,
		StartDate:       stringArg(args, "start_date"),
		EndDate:         stringArg(args, "end_date"),
		TemperatureUnit: stringArg(args, "temperature_unit"),
		Timezone:        stringArg(args, "timezone"),
	})

	if err := Validate(q); err != nil {
		return tools.Failure(fmt.Sprintf("Error fetching weather data: %v", err))
	}

	days, err := t.client.Fetch(ctx, q)
	if err != nil {
		t.log.WithError(err).WithFields(logrus.Fields{
			"latitude":  q.Latitude,
			"longitude": q.Longitude,
		}).Warn("forecast fetch failed")
		return tools.Failure(fmt.Sprintf("Error fetching weather data: %v", err))
	}

	return tools.Ok(Format(q, days))
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

func numberArg(args map[string]any, key string) (float64, bool) {
	switch v := args[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	case string:
		var f float64
		if _, err := fmt.Sscanf(v, "%g", &f); err == nil {
			return f, true
		}
	}
	return 0, false
}
