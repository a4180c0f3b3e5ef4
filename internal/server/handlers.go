package server

import (
	"errors"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"

	"riskbot/internal/metrics"
	"riskbot/internal/models"
	"riskbot/internal/parser"
	"riskbot/internal/rag"
)

var unsupportedTypeMsg = "Unsupported file type. Allowed: " + strings.Join(parser.SupportedExtensions, ", ")

type askResponse struct {
	Answer string `json:"answer"`
}

// upload -> index -> extract
func (s *Server) handleUpload(c echo.Context) error {
	fh, err := c.FormFile("file")
	if err != nil {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, "file is required")
	}
	if !parser.IsSupported(filepath.Ext(fh.Filename)) {
		metrics.Uploads.WithLabelValues("rejected").Inc()
		return echo.NewHTTPError(http.StatusBadRequest, unsupportedTypeMsg)
	}

	src, err := fh.Open()
	if err != nil {
		metrics.Uploads.WithLabelValues("failed").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, "failed to read upload").SetInternal(err)
	}
	defer src.Close()

	res, err := s.pipeline.Ingest(c.Request().Context(), fh.Filename, src)
	if err != nil {
		if errors.Is(err, parser.ErrUnsupportedFormat) {
			metrics.Uploads.WithLabelValues("rejected").Inc()
			return echo.NewHTTPError(http.StatusBadRequest, unsupportedTypeMsg)
		}
		metrics.Uploads.WithLabelValues("failed").Inc()
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error()).SetInternal(err)
	}
	metrics.Uploads.WithLabelValues("ok").Inc()

	log.Info().Str("doc_id", res.DocID).Int("indexed_chunks", res.IndexedChunks).
		Int("findings", len(res.Findings)).Msg("Upload processed")
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleAsk(c echo.Context) error {
	docID := strings.TrimSpace(c.FormValue("doc_id"))
	question := strings.TrimSpace(c.FormValue("question"))
	if docID == "" || question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "doc_id and question are required")
	}
	source, err := rag.ParseSource(c.FormValue("source"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}

	answer, err := s.responder.Answer(c.Request().Context(), docID, question, source)
	switch {
	case errors.Is(err, rag.ErrNotFound):
		answer = models.NotFoundAnswer
	case err != nil:
		log.Error().Err(err).Str("doc_id", docID).Msg("Failed to answer question")
		answer = models.UnavailableAnswer
	}
	return c.JSON(http.StatusOK, askResponse{Answer: answer})
}
