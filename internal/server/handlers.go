package server

import (
	"errors"
	"net/http"

	"servermonitor/api"
	"servermonitor/internal/monitor"

	"github.com/labstack/echo/v4"
)

// The status and logs endpoints always answer 200 and report provider
// failures through the success flag. Metrics and control answer with an
// error status instead.

func (s *Server) handleStatus(c echo.Context) error {
	records, err := s.monitor.Inventory(c.Request().Context())
	if err != nil {
		s.metrics.observeError(err)
		return c.JSON(http.StatusOK, api.FailureResponse{Success: false, ErrorMessage: err.Error()})
	}
	if records == nil {
		records = []api.InstanceRecord{}
	}
	return c.JSON(http.StatusOK, api.StatusResponse{Success: true, Instances: records})
}

func (s *Server) handleLogs(c echo.Context) error {
	instanceID := c.Param("instance_id")
	log, err := s.monitor.ConsoleLog(c.Request().Context(), instanceID)
	if err != nil {
		s.metrics.observeError(err)
		return c.JSON(http.StatusOK, api.FailureResponse{Success: false, ErrorMessage: err.Error()})
	}
	return c.JSON(http.StatusOK, api.LogResponse{Success: true, InstanceID: instanceID, Log: log})
}

func (s *Server) handleMetrics(c echo.Context) error {
	instanceID := c.Param("instance_id")
	m, err := s.monitor.Metrics(c.Request().Context(), instanceID)
	if err != nil {
		s.metrics.observeError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, api.MetricsResponse{
		Success:        true,
		InstanceID:     instanceID,
		CPUUtilization: nonNil(m.CPUUtilization),
		NetworkIn:      nonNil(m.NetworkIn),
		NetworkOut:     nonNil(m.NetworkOut),
	})
}

func (s *Server) handleControl(c echo.Context) error {
	result, err := s.monitor.Control(c.Request().Context(), c.Param("instance_id"), c.Param("action"))
	if err != nil {
		var ve *monitor.ValidationError
		if errors.As(err, &ve) {
			return echo.NewHTTPError(http.StatusBadRequest, ve.Message)
		}
		s.metrics.observeError(err)
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, result)
}

func nonNil(points []api.MetricPoint) []api.MetricPoint {
	if points == nil {
		return []api.MetricPoint{}
	}
	return points
}
