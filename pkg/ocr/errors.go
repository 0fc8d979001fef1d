package ocr

import "errors"

// ErrNoText is returned when no OCR pass produced any readable text.
var ErrNoText = errors.New("no text detected")
