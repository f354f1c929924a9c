package httpapi

import (
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"

	"github.com/adegtyarev/skycast/internal/geo"
	"github.com/adegtyarev/skycast/internal/weather"
)

var validate = validator.New()

// Controllers bundles the state the presentation layer consumes.
type Controllers struct {
	Weather  *weather.Controller[weather.CurrentConditions]
	Forecast *weather.Controller[weather.Forecast]
	Geo      *geo.Provider
}

// RegisterRoutes wires the HTTP handlers into the Fiber app. Each controller
// exposes exactly its snapshot (data, loading, error) and the operations
// search-by-city, search-by-coords, refresh, and clear; geolocation exposes
// its state and a retry.
func RegisterRoutes(app *fiber.App, ctl Controllers) {
	v1 := app.Group("/api/v1")

	v1.Get("/weather", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Weather.Snapshot())
	})

	v1.Post("/weather/search", func(c *fiber.Ctx) error {
		ctl.Weather.FetchByCity(c.UserContext(), c.Query("city"))
		return c.JSON(ctl.Weather.Snapshot())
	})

	v1.Post("/weather/coords", func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctl.Weather.FetchByCoords(c.UserContext(), lat, lon)
		return c.JSON(ctl.Weather.Snapshot())
	})

	v1.Post("/weather/refresh", func(c *fiber.Ctx) error {
		ctl.Weather.Refresh(c.UserContext())
		return c.JSON(ctl.Weather.Snapshot())
	})

	v1.Delete("/weather", func(c *fiber.Ctx) error {
		ctl.Weather.Clear()
		return c.JSON(ctl.Weather.Snapshot())
	})

	v1.Get("/forecast", func(c *fiber.Ctx) error {
		return c.JSON(ctl.Forecast.Snapshot())
	})

	v1.Post("/forecast/search", func(c *fiber.Ctx) error {
		ctl.Forecast.FetchByCity(c.UserContext(), c.Query("city"))
		return c.JSON(ctl.Forecast.Snapshot())
	})

	v1.Post("/forecast/coords", func(c *fiber.Ctx) error {
		lat, lon, err := parseCoordsQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		ctl.Forecast.FetchByCoords(c.UserContext(), lat, lon)
		return c.JSON(ctl.Forecast.Snapshot())
	})

	v1.Post("/forecast/refresh", func(c *fiber.Ctx) error {
		ctl.Forecast.Refresh(c.UserContext())
		return c.JSON(ctl.Forecast.Snapshot())
	})

	v1.Delete("/forecast", func(c *fiber.Ctx) error {
		ctl.Forecast.Clear()
		return c.JSON(ctl.Forecast.Snapshot())
	})

	if ctl.Geo != nil {
		v1.Get("/geo", func(c *fiber.Ctx) error {
			return c.JSON(ctl.Geo.Snapshot())
		})

		v1.Post("/geo/retry", func(c *fiber.Ctx) error {
			ctl.Geo.Retry(c.UserContext())
			return c.JSON(ctl.Geo.Snapshot())
		})
	}
}

// coordsQuery holds the raw coordinate query parameters.
type coordsQuery struct {
	Lat string `validate:"required,latitude"`
	Lon string `validate:"required,longitude"`
}

func parseCoordsQuery(c *fiber.Ctx) (float64, float64, error) {
	q := coordsQuery{
		Lat: c.Query("lat"),
		Lon: c.Query("lon"),
	}
	if err := validate.Struct(q); err != nil {
		return 0, 0, err
	}

	lat, err := strconv.ParseFloat(q.Lat, 64)
	if err != nil {
		return 0, 0, err
	}
	lon, err := strconv.ParseFloat(q.Lon, 64)
	if err != nil {
		return 0, 0, err
	}
	return lat, lon, nil
}
