package controller

import (
	"net/http"
	"time"

	"airquality-server/internal/modules/airquality/repository"
)

type AirQualityController interface {
	RegisterRoutes(mux *http.ServeMux)
}

type airQualityControllerImpl struct {
	connector repository.Connector
	lookback  time.Duration
}

func NewAirQualityController(connector repository.Connector, lookback time.Duration) AirQualityController {
	return &airQualityControllerImpl{connector: connector, lookback: lookback}
}

func (c *airQualityControllerImpl) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /airquality", c.handleLatestText)
	mux.HandleFunc("GET /cgi-bin/airquality.py", c.handleLatestText)
	mux.HandleFunc("GET /airquality/plot", c.handleChart)
	mux.HandleFunc("GET /cgi-bin/plot_airquality.py", c.handleChart)

	mux.HandleFunc("GET /api/v1/airquality/latest", c.handleLatestJSON)
	mux.HandleFunc("GET /api/v1/airquality/readings", c.handleReadingsJSON)
}
