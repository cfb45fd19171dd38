package handlers

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/serisow/ancrage/pipeline"
	"github.com/serisow/ancrage/rag_type"
	"github.com/serisow/ancrage/services/extract_service"
)

type UploadResponse struct {
	Success  bool                 `json:"success"`
	Stats    rag_type.IngestStats `json:"stats"`
	Metadata UploadMetadata       `json:"metadata"`
}

type UploadMetadata struct {
	ContentType       string  `json:"contentType"`
	WordCount         int     `json:"wordCount"`
	ContentPreview    string  `json:"contentPreview"`
	ExtractionSeconds float64 `json:"extractionSeconds"`
}

// UploadHandler accepts document files, extracts their text and feeds
// it through the same ingestion pipeline as raw text.
type UploadHandler struct {
	pipeline  IngestRunner
	logger    *slog.Logger
	extractor *extract_service.DocumentExtractor
}

func NewUploadHandler(pipeline IngestRunner, logger *slog.Logger) *UploadHandler {
	return &UploadHandler{
		pipeline:  pipeline,
		logger:    logger,
		extractor: extract_service.NewDocumentExtractor(logger),
	}
}

func (h *UploadHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.logger.Info("Received file upload request")

	if err := r.ParseMultipartForm(10 << 20); err != nil { // 10 MB limit
		writeJSONError(w, "Failed to parse multipart form", http.StatusBadRequest)
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		writeJSONError(w, "Failed to get file from form", http.StatusBadRequest)
		return
	}
	defer file.Close()

	var buf bytes.Buffer
	if _, err := io.Copy(&buf, file); err != nil {
		writeJSONError(w, "Failed to read file", http.StatusInternalServerError)
		return
	}

	h.logger.Debug("Starting text extraction",
		slog.String("filename", header.Filename),
		slog.String("content_type", header.Header.Get("Content-Type")),
		slog.Int64("size", header.Size))

	ext := strings.ToLower(filepath.Ext(header.Filename))
	extractStart := time.Now()

	var text string
	switch ext {
	case ".pdf":
		text, err = h.extractor.ExtractTextFromPDF(buf.Bytes())
	case ".doc", ".docx":
		text, err = h.extractor.ExtractTextFromWord(buf.Bytes())
	case ".html", ".htm":
		text, err = h.extractor.ExtractTextFromHTML(buf.Bytes())
	case ".txt", ".md":
		text = buf.String()
	default:
		h.logger.Error("Unsupported file type",
			slog.String("filename", header.Filename),
			slog.String("extension", ext))
		writeJSONError(w, "Unsupported file type", http.StatusBadRequest)
		return
	}

	if err != nil {
		h.logger.Error("Text extraction failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to extract text from document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	metadata := UploadMetadata{
		ContentType:       header.Header.Get("Content-Type"),
		WordCount:         len(strings.Fields(text)),
		ExtractionSeconds: time.Since(extractStart).Seconds(),
	}
	if len(text) > 250 {
		metadata.ContentPreview = text[:250] + "..."
	} else {
		metadata.ContentPreview = text
	}

	title := r.FormValue("title")
	stats, err := h.pipeline.Ingest(r.Context(), text, header.Filename, title)
	if err != nil {
		if errors.Is(err, pipeline.ErrNoChunks) {
			writeJSONError(w, "No valid chunks created from document", http.StatusBadRequest)
			return
		}
		h.logger.Error("Failed to ingest uploaded document",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		writeJSONError(w, "Failed to process document: "+err.Error(), http.StatusInternalServerError)
		return
	}

	if err := writeJSON(w, UploadResponse{Success: true, Stats: *stats, Metadata: metadata}); err != nil {
		h.logger.Error("Failed to write response",
			slog.String("error", err.Error()))
	}
}
