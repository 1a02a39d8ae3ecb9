// Package api exposes the analysis core over HTTP.
package api

import (
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/orderlens/orderlens/internal/core/domain"
	"github.com/orderlens/orderlens/internal/core/ports/driven"
	"github.com/orderlens/orderlens/internal/core/ports/driving"
	"github.com/orderlens/orderlens/internal/logger"
)

// maxUploadSize caps analyse uploads at 20 MiB.
const maxUploadSize = 20 << 20

// Server is the HTTP API server.
type Server struct {
	analysis driving.AnalysisService
	registry driven.NormaliserRegistry
	version  string
	engine   *gin.Engine
}

// mimeByExtension maps upload extensions to normaliser MIME types.
var mimeByExtension = map[string]string{
	".eml": "message/rfc822",
	".pdf": "application/pdf",
	".txt": "text/plain",
	".csv": "text/csv",
	".md":  "text/markdown",
}

// NewServer creates the API server with all routes registered.
func NewServer(analysis driving.AnalysisService, registry driven.NormaliserRegistry, version string) *Server {
	gin.SetMode(gin.ReleaseMode)

	engine := gin.New()
	engine.Use(gin.Recovery())
	engine.Use(requestLogger())

	s := &Server{
		analysis: analysis,
		registry: registry,
		version:  version,
		engine:   engine,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	s.engine.GET("/health", s.handleHealth)
	s.engine.GET("/version", s.handleVersion)
	s.engine.POST("/analyze", s.handleAnalyze)
}

// Router returns the underlying engine, mainly for tests.
func (s *Server) Router() *gin.Engine {
	return s.engine
}

// Run starts the server on the given address and blocks.
func (s *Server) Run(addr string) error {
	return s.engine.Run(addr)
}

func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		logger.Debug("%s %s -> %d", c.Request.Method, c.Request.URL.Path, c.Writer.Status())
	}
}

func (s *Server) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) handleVersion(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"version": s.version})
}

// analyzeRequest is the JSON body accepted by POST /analyze when no
// file is uploaded.
type analyzeRequest struct {
	Subject        string `json:"subject"`
	Body           string `json:"body"`
	From           string `json:"from"`
	Date           string `json:"date"`
	AttachmentText string `json:"attachment_text"`
}

// handleAnalyze analyses either an uploaded document file (multipart
// field "file") or a JSON payload of already-extracted text. The
// response is the wire-format record; nothing is stored.
func (s *Server) handleAnalyze(c *gin.Context) {
	contentType := c.ContentType()

	var (
		mail *domain.MailText
		err  error
	)
	if strings.HasPrefix(contentType, "multipart/form-data") {
		mail, err = s.mailFromUpload(c)
	} else {
		mail, err = mailFromJSON(c)
	}
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	analysis, err := s.analysis.Analyze(c.Request.Context(), *mail)
	if err != nil {
		logger.Warn("Analysis failed: %v", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "analysis failed"})
		return
	}

	c.JSON(http.StatusOK, analysis.Record())
}

func (s *Server) mailFromUpload(c *gin.Context) (*domain.MailText, error) {
	header, err := c.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("missing file field: %w", err)
	}
	if header.Size > maxUploadSize {
		return nil, fmt.Errorf("file too large (max %d bytes)", maxUploadSize)
	}

	mimeType, ok := mimeByExtension[strings.ToLower(filepath.Ext(header.Filename))]
	if !ok {
		return nil, fmt.Errorf("unsupported file extension %q", filepath.Ext(header.Filename))
	}

	f, err := header.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open upload: %w", err)
	}
	defer f.Close()

	content, err := io.ReadAll(io.LimitReader(f, maxUploadSize))
	if err != nil {
		return nil, fmt.Errorf("failed to read upload: %w", err)
	}

	doc := &domain.RawDocument{
		SourceID: "api",
		URI:      "upload://" + header.Filename,
		MIMEType: mimeType,
		Content:  content,
		Metadata: map[string]any{
			"filename": header.Filename,
		},
	}
	return s.registry.Normalise(c.Request.Context(), doc)
}

func mailFromJSON(c *gin.Context) (*domain.MailText, error) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		return nil, fmt.Errorf("invalid request body: %w", err)
	}
	if strings.TrimSpace(req.Subject) == "" && strings.TrimSpace(req.Body) == "" &&
		strings.TrimSpace(req.AttachmentText) == "" {
		return nil, domain.ErrNoInput
	}

	mail := &domain.MailText{
		URI:     "api://analyze",
		Subject: req.Subject,
		Body:    req.Body,
		From:    req.From,
		Date:    req.Date,
	}
	if req.AttachmentText != "" {
		mail.Attachments = []domain.AttachmentText{
			{Filename: "attachment", Text: req.AttachmentText},
		}
	}
	return mail, nil
}
