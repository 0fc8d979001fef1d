package models

import (
	"time"
)

// ReceiptUpload logs one receipt image sent through POST /api/ocr together
// with what was extracted from it.
type ReceiptUpload struct {
	ID          uint `gorm:"primaryKey"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
	RequestID   string `gorm:"size:36;uniqueIndex;not null"`
	FileName    string `gorm:"size:255;not null"`
	ContentType string `gorm:"size:128"`
	BankType    string `gorm:"size:32;index"`
	// DetectedBank is set when the tag came from the colour classifier.
	DetectedBank    bool   `gorm:"default:false"`
	PaperSize       string `gorm:"size:8"`
	ReceiverName    string `gorm:"size:255"`
	ReceiverAccount string `gorm:"size:64"`
	Amount          int64
	ReferenceNumber string `gorm:"size:64;index"`
	// Failed marks uploads where OCR produced nothing; the row is kept for review.
	Failed       bool   `gorm:"default:false;index"`
	FailedReason string `gorm:"size:255"`
}
