package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"buktitf/models"
)

func main() {
	requestID := flag.String("request-id", "", "request id returned by /api/ocr")
	file := flag.String("file", "", "original file name (latest match)")
	flag.Parse()
	if *requestID == "" && *file == "" {
		log.Fatal("--request-id or --file required")
	}
	dsn := os.Getenv("DB_DSN")
	if strings.TrimSpace(dsn) == "" {
		log.Fatal("DB_DSN not set in env")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		log.Fatalf("open db: %v", err)
	}
	q := db.Model(&models.ReceiptUpload{})
	if *requestID != "" {
		q = q.Where("request_id = ?", *requestID)
	} else {
		q = q.Where("file_name = ?", *file)
	}
	var up models.ReceiptUpload
	if err := q.Order("id desc").First(&up).Error; err != nil {
		log.Fatalf("upload: %v", err)
	}
	fmt.Printf("upload id=%d request=%s bank=%s detected=%v receiver=%q account=%q amount=%d ref=%s failed=%v reason=%q\n",
		up.ID, up.RequestID, up.BankType, up.DetectedBank, up.ReceiverName, up.ReceiverAccount, up.Amount, up.ReferenceNumber, up.Failed, up.FailedReason)
}
