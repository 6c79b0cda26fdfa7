package geocode

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"

	"skycast/tools"
)

func testLog() *logrus.Entry {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return logrus.NewEntry(log)
}

func TestToolDefinition(t *testing.T) {
	tool := NewTool(NewClient(), testLog())
	def := tool.Definition()

	if def.Name != ToolName {
		t.Errorf("expected name %q, got %q", ToolName, def.Name)
	}
	if _, ok := def.InputSchema.Properties["address"]; !ok {
		t.Error("address parameter missing from schema")
	}
	if len(def.InputSchema.Required) != 1 || def.InputSchema.Required[0] != "address" {
		t.Errorf("expected address to be required, got %v", def.InputSchema.Required)
	}
}

func TestToolExecute(t *testing.T) {
	tests := []struct {
		name     string
		response string
		status   int
		args     map[string]any
		kind     tools.ResultKind
		contains string
	}{
		{
			name:     "successful lookup",
			response: `[{"lat":"48.8588897","lon":"2.3200410","display_name":"Paris, Ile-de-France, France"}]`,
			status:   http.StatusOK,
			args:     map[string]any{"address": "Paris"},
			kind:     tools.ResultOk,
			contains: "Latitude: 48.8588897",
		},
		{
			name:     "no match",
			response: `[]`,
			status:   http.StatusOK,
			args:     map[string]any{"address": "Nowhereland"},
			kind:     tools.ResultNotFound,
			contains: `Could not find a location matching "Nowhereland"`,
		},
		{
			name:     "service failure",
			response: `oops`,
			status:   http.StatusInternalServerError,
			args:     map[string]any{"address": "Paris"},
			kind:     tools.ResultFailure,
			contains: "Geocoding error",
		},
		{
			name:     "missing address argument",
			response: `[]`,
			status:   http.StatusOK,
			args:     map[string]any{},
			kind:     tools.ResultFailure,
			contains: "address must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.response))
			}))
			defer srv.Close()

			tool := NewTool(NewClient(WithBaseURL(srv.URL)), testLog())
			res := tool.Execute(context.Background(), tt.args)

			if res.Kind != tt.kind {
				t.Errorf("expected kind %v, got %v (text: %q)", tt.kind, res.Kind, res.Text())
			}
			if !strings.Contains(res.Text(), tt.contains) {
				t.Errorf("expected text to contain %q, got %q", tt.contains, res.Text())
			}
		})
	}
}

func TestToolExecuteSuccessFormat(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`[{"lat":"48.8588897","lon":"2.3200410","display_name":"Paris, Ile-de-France, France"}]`))
	}))
	defer srv.Close()

	tool := NewTool(NewClient(WithBaseURL(srv.URL)), testLog())
	res := tool.Execute(context.Background(), map[string]any{"address": "Paris"})

	want := "Location: \"Paris, Ile-de-France, France\"\nLatitude: 48.8588897\nLongitude: 2.320041"
	if res.Text() != want {
		t.Errorf("payload mismatch:\nwant %q\ngot  %q", want, res.Text())
	}
}
