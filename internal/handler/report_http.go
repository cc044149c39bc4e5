package handler

import (
	"bytes"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strings"

	"github.com/labstack/echo/v4"
	log "github.com/sirupsen/logrus"

	"stoik.com/trawler/internal/core/domain"
	"stoik.com/trawler/internal/core/port"
)

const noJSONMessage = "No JSON found in request."

type ReportHTTPHandler struct {
	reportService port.ReportService
}

type ErrorResponse struct {
	Error string `json:"error"`
}

func NewReportHTTPHandler(reportService port.ReportService) *ReportHTTPHandler {
	return &ReportHTTPHandler{
		reportService: reportService,
	}
}

// Submit records a phishing report. There is no authentication on this
// endpoint; anyone who can reach it can file reports.
func (h *ReportHTTPHandler) Submit() echo.HandlerFunc {
	return func(c echo.Context) error {
		req := c.Request()

		if !isJSON(req.Header.Get(echo.HeaderContentType)) {
			return c.String(http.StatusUnsupportedMediaType, noJSONMessage)
		}

		body, err := io.ReadAll(req.Body)
		if err != nil {
			// BodyLimit reports an oversized body as a 413 HTTPError.
			var httpErr *echo.HTTPError
			if errors.As(err, &httpErr) {
				return httpErr
			}
			log.WithError(err).Error("Failed to read report body")
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Unable to read request body"})
		}
		if len(bytes.TrimSpace(body)) == 0 || bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
			return c.String(http.StatusUnsupportedMediaType, noJSONMessage)
		}

		report, err := h.reportService.Submit(req.Context(), body)
		if err != nil {
			if domain.IsClientError(err) {
				log.WithError(err).Warn("Rejected report")
				return c.JSON(http.StatusBadRequest, ErrorResponse{Error: err.Error()})
			}
			log.WithError(err).Error("Failed to record report")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to record report"})
		}

		c.Response().Header().Set("X-Report-ID", report.ID.String())
		return c.NoContent(http.StatusOK)
	}
}

func (h *ReportHTTPHandler) List() echo.HandlerFunc {
	return func(c echo.Context) error {
		reports, err := h.reportService.ListReports(c.Request().Context())
		if err != nil {
			log.WithError(err).Error("Failed to list reports")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to list reports"})
		}
		return c.JSON(http.StatusOK, reports)
	}
}

func (h *ReportHTTPHandler) GetEmail() echo.HandlerFunc {
	return func(c echo.Context) error {
		emailID, err := url.PathUnescape(c.Param("id"))
		if err != nil || emailID == "" {
			return c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Invalid email id"})
		}

		record, err := h.reportService.GetEmail(c.Request().Context(), emailID)
		if errors.Is(err, domain.ErrEmailNotFound) {
			return c.JSON(http.StatusNotFound, ErrorResponse{Error: "Email not found"})
		}
		if err != nil {
			log.WithError(err).WithField("emailID", emailID).Error("Failed to load email")
			return c.JSON(http.StatusInternalServerError, ErrorResponse{Error: "Failed to load email"})
		}

		return c.JSON(http.StatusOK, record)
	}
}

// isJSON accepts application/json and any +json media type.
func isJSON(contentType string) bool {
	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}
	return mediaType == echo.MIMEApplicationJSON || strings.HasSuffix(mediaType, "+json")
}
