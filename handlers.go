package main

import (
	"errors"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"buktitf/models"
	"buktitf/pkg/accountmap"
	"buktitf/pkg/logger"
	"buktitf/pkg/ocr"
	"buktitf/pkg/receipt"
)

const maxUploadSize = 10 * 1024 * 1024

// server holds what the handlers share. db is nil when no DSN is configured.
type server struct {
	cfg        config
	log        zerolog.Logger
	db         *gorm.DB
	store      *accountmap.Store
	extractor  *receipt.Extractor
	recognizer ocr.Recognizer
	classifier *ocr.Classifier
}

func (s *server) setupRoutes(r *gin.Engine) {
	r.Use(s.requestLogger())
	r.GET("/healthz", s.healthHandler)

	api := r.Group("/api")
	api.POST("/ocr", s.ocrHandler)
	api.POST("/extract", s.extractHandler)
	api.GET("/mappings", s.listMappingsHandler)
	api.GET("/mappings/lookup", s.lookupMappingHandler)
	api.POST("/receipts/confirm", s.confirmReceiptHandler)
	api.GET("/uploads", s.listUploadsHandler)

	writes := api.Group("")
	writes.Use(jwtAuthMiddleware([]byte(s.cfg.JWTSecret)))
	writes.POST("/mappings", s.upsertMappingHandler)
	writes.POST("/mappings/reload", s.reloadMappingsHandler)
}

const maxCorrelationID = 64

// requestLogger tags each request with a correlation id and puts a child
// logger on the request context. A client supplied X-Request-ID is only
// echoed and logged; it never names files or rows.
func (s *server) requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := strings.TrimSpace(c.GetHeader("X-Request-ID"))
		if id == "" || len(id) > maxCorrelationID {
			id = uuid.NewString()
		}
		c.Set("correlation_id", id)
		c.Header("X-Request-ID", id)
		l := s.log.With().Str("correlation_id", id).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context(), l))
		c.Next()
	}
}

func (s *server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "database": s.db != nil})
}

// ocrHandler accepts a receipt photo and returns the extracted record. The
// staged file is always removed afterwards.
func (s *server) ocrHandler(c *gin.Context) {
	ctx := c.Request.Context()
	// server generated, unique per upload
	requestID := uuid.NewString()
	log := logger.FromContext(ctx, s.log).With().Str("request_id", requestID).Logger()

	file, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if file.Size > maxUploadSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "file too large (max 10MB)"})
		return
	}

	dir := filepath.Join(s.cfg.UploadBase, "tmp")
	if err := os.MkdirAll(dir, 0755); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "mkdir failed"})
		return
	}
	path := filepath.Join(dir, requestID+strings.ToLower(filepath.Ext(file.Filename)))
	if err := c.SaveUploadedFile(file, path); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "save failed"})
		return
	}
	defer func() {
		if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warn().Err(err).Str("path", path).Msg("failed to delete temp file")
		}
	}()

	bank := receipt.ParseBankType(c.PostForm("bank"))
	detected := false
	if strings.TrimSpace(c.PostForm("bank")) == "" || bank == "AUTO" {
		bank, detected = receipt.BankUnknown, true
		if s.classifier != nil {
			if b, err := s.classifier.ClassifyFile(path); err == nil {
				bank = b
			} else {
				log.Warn().Err(err).Msg("bank colour detection failed")
			}
		}
	}
	paper := receipt.ParsePaperSize(c.PostForm("paper_size"))

	rec := s.extractor.ExtractImage(ctx, s.recognizer, path, bank, paper)
	log.Info().
		Str("file", file.Filename).
		Str("bank", string(bank)).
		Bool("detected", detected).
		Int64("amount", rec.Amount).
		Msg("receipt extracted")

	s.recordUpload(log, models.ReceiptUpload{
		RequestID:       requestID,
		FileName:        file.Filename,
		ContentType:     file.Header.Get("Content-Type"),
		BankType:        string(bank),
		DetectedBank:    detected,
		PaperSize:       string(paper),
		ReceiverName:    rec.ReceiverName,
		ReceiverAccount: rec.ReceiverAccount,
		Amount:          rec.Amount,
		ReferenceNumber: rec.ReferenceNumber,
		Failed:          nothingExtracted(rec),
	})

	c.JSON(http.StatusOK, gin.H{"success": true, "request_id": requestID, "detected_bank": detected, "data": rec})
}

// nothingExtracted reports a record with neither a receiver nor an amount.
func nothingExtracted(rec receipt.TransferRecord) bool {
	return rec.Amount == 0 && receipt.IsSentinelName(rec.ReceiverName)
}

func (s *server) recordUpload(log zerolog.Logger, up models.ReceiptUpload) {
	if s.db == nil {
		return
	}
	if up.Failed {
		up.FailedReason = "nothing extracted"
	}
	if err := s.db.Create(&up).Error; err != nil {
		log.Warn().Err(err).Msg("failed to record upload")
	}
}

func (s *server) extractHandler(c *gin.Context) {
	var req struct {
		Text      string `json:"text" binding:"required"`
		Bank      string `json:"bank"`
		PaperSize string `json:"paper_size"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	rec := s.extractor.Extract(c.Request.Context(), req.Text, receipt.ParseBankType(req.Bank), receipt.ParsePaperSize(req.PaperSize))
	c.JSON(http.StatusOK, gin.H{"success": true, "data": rec})
}

func (s *server) listMappingsHandler(c *gin.Context) {
	snap, err := s.store.Snapshot(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "mapping unavailable"})
		return
	}
	c.JSON(http.StatusOK, snap)
}

func (s *server) lookupMappingHandler(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name required"})
		return
	}
	acct, ok := s.store.Lookup(c.Request.Context(), name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": accountmap.NormalizeName(name), "account": acct})
}

func (s *server) upsertMappingHandler(c *gin.Context) {
	var req struct {
		Name    string `json:"name" binding:"required"`
		Account string `json:"account" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	err := s.store.Upsert(c.Request.Context(), req.Name, req.Account)
	switch {
	case errors.Is(err, accountmap.ErrInvalidPair):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	case err != nil:
		logger.FromContext(c.Request.Context(), s.log).Error().Err(err).Msg("mapping upsert not persisted")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "mapping saved in memory but not persisted"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"name": accountmap.NormalizeName(req.Name), "account": strings.TrimSpace(req.Account)})
}

func (s *server) reloadMappingsHandler(c *gin.Context) {
	if err := s.store.Reload(c.Request.Context()); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	snap, _ := s.store.Snapshot(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"version": snap.Version, "lastUpdated": snap.LastUpdated, "accounts": len(snap.NameToAccount)})
}

// confirmReceiptHandler takes the record after the user reviewed it and
// learns its receiver name/account pair.
func (s *server) confirmReceiptHandler(c *gin.Context) {
	var rec receipt.TransferRecord
	if err := c.ShouldBindJSON(&rec); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	saved, err := s.store.AutoSave(c.Request.Context(), rec.ReceiverName, rec.ReceiverAccount)
	if err != nil {
		logger.FromContext(c.Request.Context(), s.log).Error().Err(err).Msg("auto-save failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "auto-save failed"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"saved": saved})
}

// listUploadsHandler returns the most recent uploads.
func (s *server) listUploadsHandler(c *gin.Context) {
	if s.db == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "no database configured"})
		return
	}
	var uploads []models.ReceiptUpload
	q := s.db.WithContext(c.Request.Context()).Model(&models.ReceiptUpload{})
	if bank := c.Query("bank"); bank != "" {
		q = q.Where("bank_type = ?", strings.ToUpper(bank))
	}
	if err := q.Order("id desc").Limit(100).Find(&uploads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "query failed"})
		return
	}
	c.JSON(http.StatusOK, uploads)
}
