package geocode

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/sirupsen/logrus"

	"skycast/tools"
)

// ToolName is the name the model uses to request a geocoding lookup.
const ToolName = "geocode_address"

// Tool exposes the geocoding client to the dialogue agent.
type Tool struct {
	client *Client
	log    *logrus.Entry
}

var _ tools.Executor = (*Tool)(nil)

// NewTool wraps a geocoding client as a tool executor.
func NewTool(client *Client, log *logrus.Entry) *Tool {
	return &Tool{client: client, log: log}
}

// Definition implements tools.Executor.
func (t *Tool) Definition() mcptypes.Tool {
	return mcptypes.NewTool(ToolName,
		mcptypes.WithDescription("Convert an address, city name, or place to geographic coordinates. "+
			"Always use this tool when the user provides a location as text rather than coordinates."),
		mcptypes.WithString("address",
			mcptypes.Required(),
			mcptypes.Description(`The address or place name to look up (e.g. "Paris, France", "1600 Pennsylvania Ave, Washington DC")`),
		),
	)
}

// Execute implements tools.Executor. Failures degrade to text results; the
// raw error is logged so failures stay observable.
func (t *Tool) Execute(ctx context.Context, args map[string]any) tools.Result {
	address, _ := args["address"].(string)
	if address == "" {
		return tools.Failure("Geocoding error: address must not be empty")
	}

	place, err := t.client.Search(ctx, address)
	if errors.Is(err, ErrNoMatch) {
		return tools.NotFound(fmt.Sprintf("Could not find a location matching %q. Try a different search term.", address))
	}
	if err != nil {
		t.log.WithError(err).WithField("address", address).Warn("geocoding lookup failed")
		return tools.Failure(fmt.Sprintf("Geocoding error: %v", err))
	}

	return tools.Ok(fmt.Sprintf("Location: %q\nLatitude: %s\nLongitude: %s",
		place.DisplayName,
		strconv.FormatFloat(place.Latitude, 'f', -1, 64),
		strconv.FormatFloat(place.Longitude, 'f', -1, 64),
	))
}
