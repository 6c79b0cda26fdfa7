package server

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v5"

	"skycast/geocode"
)

// reverseGeocode resolves map-pin coordinates to a display name so the page
// can label the pin before the user sends anything.
func (s *Server) reverseGeocode(c *echo.Context) error {
	lat, err := strconv.ParseFloat(c.QueryParam("lat"), 64)
	if err != nil || lat < -90 || lat > 90 {
		return echo.NewHTTPError(http.StatusBadRequest, "lat must be a number in [-90, 90]")
	}
	lon, err := strconv.ParseFloat(c.QueryParam("lon"), 64)
	if err != nil || lon < -180 || lon > 180 {
		return echo.NewHTTPError(http.StatusBadRequest, "lon must be a number in [-180, 180]")
	}

	name, err := s.geocoder.Reverse(c.Request().Context(), lat, lon)
	if err != nil {
		if errors.Is(err, geocode.ErrNoMatch) {
			return echo.NewHTTPError(http.StatusNotFound, "no location at these coordinates")
		}
		s.log.WithError(err).Warn("reverse geocoding failed")
		return echo.NewHTTPError(http.StatusBadGateway, "reverse geocoding unavailable")
	}
	return c.JSON(http.StatusOK, map[string]string{"displayName": name})
}
