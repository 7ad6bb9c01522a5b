package airquality

import (
	"net/http"
	"time"

	"airquality-server/internal/modules/airquality/controller"
	"airquality-server/internal/modules/airquality/repository"
)

func RegisterFeature(mux *http.ServeMux, connector repository.Connector, lookback time.Duration) {
	airQualityController := controller.NewAirQualityController(connector, lookback)
	airQualityController.RegisterRoutes(mux)
}
