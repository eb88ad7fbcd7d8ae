package domain

import "errors"

var (
	ErrNotFound            = errors.New("resource not found")
	ErrInvoiceNotFound     = errors.New("invoice not found")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUploadFailed        = errors.New("file upload to storage failed")
	ErrEmptyExtraction     = errors.New("raw extraction contains no usable fields")
	ErrRulesUnavailable    = errors.New("classification rules unavailable")
	ErrAlreadyReviewed     = errors.New("invoice approval already recorded")
)
