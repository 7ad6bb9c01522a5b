package controller

import (
	"bytes"
	"log/slog"
	"net/http"
	"time"

	"airquality-server/internal/aqi"
	"airquality-server/internal/modules/airquality/views"
	"airquality-server/internal/utils"
)

type latestResponse struct {
	Time     time.Time    `json:"time"`
	Value    int          `json:"value"`
	Category aqi.Category `json:"category"`
}

func writeTextError(w http.ResponseWriter, err error) {
	status, msg := errorResponse(err)
	utils.WriteText(w, status, textContentType, []byte(msg))
}

func writeJSONError(w http.ResponseWriter, err error) {
	status, msg := errorResponse(err)
	utils.WriteError(w, status, msg)
}

func (c *airQualityControllerImpl) handleLatestText(w http.ResponseWriter, r *http.Request) {
	repo, err := c.connector.Connect(r.Context())
	if err != nil {
		logFailure("latest", err)
		writeTextError(w, err)
		return
	}
	defer closeRepository("latest", repo)

	latest, err := repo.FetchLatest(r.Context())
	if err != nil {
		logFailure("latest", err)
		writeTextError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderLatestText(&buf, latest); err != nil {
		slog.Error("latest: render failed", "error", err)
		writeTextError(w, err)
		return
	}
	utils.WriteText(w, http.StatusOK, textContentType, buf.Bytes())
}

func (c *airQualityControllerImpl) handleChart(w http.ResponseWriter, r *http.Request) {
	repo, err := c.connector.Connect(r.Context())
	if err != nil {
		logFailure("chart", err)
		writeTextError(w, err)
		return
	}
	defer closeRepository("chart", repo)

	readings, err := repo.FetchRecent(r.Context(), c.lookback)
	if err != nil {
		logFailure("chart", err)
		writeTextError(w, err)
		return
	}

	var buf bytes.Buffer
	if err := views.RenderChart(&buf, readings); err != nil {
		slog.Error("chart: render failed", "points", len(readings), "error", err)
		utils.WriteText(w, http.StatusInternalServerError, textContentType, []byte("unable to render chart"))
		return
	}
	utils.WriteText(w, http.StatusOK, chartContentType, buf.Bytes())
}

func (c *airQualityControllerImpl) handleLatestJSON(w http.ResponseWriter, r *http.Request) {
	repo, err := c.connector.Connect(r.Context())
	if err != nil {
		logFailure("latest json", err)
		writeJSONError(w, err)
		return
	}
	defer closeRepository("latest json", repo)

	latest, err := repo.FetchLatest(r.Context())
	if err != nil {
		logFailure("latest json", err)
		writeJSONError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, latestResponse{
		Time:     latest.Time,
		Value:    latest.Value,
		Category: aqi.CategoryOf(latest.Value),
	})
}

func (c *airQualityControllerImpl) handleReadingsJSON(w http.ResponseWriter, r *http.Request) {
	repo, err := c.connector.Connect(r.Context())
	if err != nil {
		logFailure("readings json", err)
		writeJSONError(w, err)
		return
	}
	defer closeRepository("readings json", repo)

	readings, err := repo.FetchRecent(r.Context(), c.lookback)
	if err != nil {
		logFailure("readings json", err)
		writeJSONError(w, err)
		return
	}
	utils.WriteJSON(w, http.StatusOK, readings)
}
