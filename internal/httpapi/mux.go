package httpapi

import (
	"net/http"

	"airquality-server/internal/modules/airquality/repository"
)

func NewMux(connector repository.Connector) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, connector)
	return mux
}
