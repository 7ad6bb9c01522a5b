package controller

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"airquality-server/internal/db"
	"airquality-server/internal/modules/airquality/repository"
)

const (
	textContentType  = "text/html"
	chartContentType = "text/xml"
)

// errorResponse maps a data access failure to the status and message shown
// to the client.
func errorResponse(err error) (int, string) {
	var connErr *db.ConnectionError
	var queryErr *repository.QueryError
	var emptyErr *repository.EmptyResultError
	switch {
	case errors.As(err, &connErr):
		return http.StatusServiceUnavailable,
			fmt.Sprintf("unable to connect to database, wrong credentials or database %s does not exist?", connErr.Database)
	case errors.As(err, &queryErr):
		return http.StatusInternalServerError,
			fmt.Sprintf("unable to query database, table %s does not exist?", queryErr.Table)
	case errors.As(err, &emptyErr):
		return http.StatusNotFound, "no air quality data"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}

func logFailure(op string, err error) {
	var emptyErr *repository.EmptyResultError
	if errors.As(err, &emptyErr) {
		slog.Warn(op+": no data", "error", err)
		return
	}
	slog.Error(op+" failed", "error", err)
}

func closeRepository(op string, repo repository.AirQualityRepository) {
	if err := repo.Close(); err != nil {
		slog.Error(op+": close connection failed", "error", err)
	}
}
