package domain

// Classification is the closed set of line item categories.
type Classification string

const (
	ClassPart  Classification = "Part"
	ClassLabor Classification = "Labor"
	ClassFee   Classification = "Fee"
	ClassTax   Classification = "Tax"
	ClassOther Classification = "Other"
)

// AllClassifications lists every valid classification in stable order.
var AllClassifications = []Classification{
	ClassPart, ClassLabor, ClassFee, ClassTax, ClassOther,
}

// Valid reports whether c is a member of the closed classification set.
func (c Classification) Valid() bool {
	switch c {
	case ClassPart, ClassLabor, ClassFee, ClassTax, ClassOther:
		return true
	}
	return false
}

// CanonicalClassification maps free-text labels (e.g. from the AI output) onto
// the closed set. Unknown labels map to Other.
func CanonicalClassification(input string) (Classification, bool) {
	switch normalizeLabel(input) {
	case "part", "parts":
		return ClassPart, true
	case "labor", "labour", "service":
		return ClassLabor, true
	case "fee", "fees", "surcharge", "shop supplies":
		return ClassFee, true
	case "tax", "taxes", "sales tax":
		return ClassTax, true
	case "other", "misc", "miscellaneous":
		return ClassOther, true
	}
	return ClassOther, false
}

// ProcessingMethod identifies which pipeline produced a ProcessingResult.
type ProcessingMethod string

const (
	MethodAIEnhanced   ProcessingMethod = "ai-enhanced"
	MethodRuleFallback ProcessingMethod = "rule-fallback"
)

// ExtractionMethod records how a line item value (e.g. a part number) was obtained.
type ExtractionMethod string

const (
	ExtractTableColumn       ExtractionMethod = "table-column"
	ExtractDescriptionParsed ExtractionMethod = "description-parsing"
	ExtractRegexFallback     ExtractionMethod = "regex-fallback"
	ExtractAIInferred        ExtractionMethod = "ai-inferred"
)

// MatchType controls how a keyword or field-mapping rule compares against input text.
type MatchType string

const (
	MatchExact    MatchType = "exact"
	MatchPartial  MatchType = "partial"
	MatchContains MatchType = "contains"
)

// FailureKind classifies why a processing attempt could not complete normally.
type FailureKind string

const (
	FailureRateLimited     FailureKind = "rate_limited"
	FailureAuthError       FailureKind = "auth_error"
	FailureQuotaExceeded   FailureKind = "quota_exceeded"
	FailurePayloadTooLarge FailureKind = "payload_too_large"
	FailureJSONError       FailureKind = "json_error"
	FailureGeneric         FailureKind = "generic_failure"
	FailureFallbackError   FailureKind = "fallback_error"
)

// UploadStatus represents the lifecycle of a scanned invoice upload.
type UploadStatus string

const (
	UploadStatusPending    UploadStatus = "pending"
	UploadStatusProcessing UploadStatus = "processing"
	UploadStatusDone       UploadStatus = "done"
	UploadStatusFailed     UploadStatus = "failed"
)

// FileType represents the allowed scanned-invoice file types.
type FileType string

const (
	FileTypePDF FileType = "pdf"
	FileTypeJPG FileType = "jpg"
	FileTypePNG FileType = "png"
)

// AllowedContentTypes maps MIME content types back to FileType.
var AllowedContentTypes = map[string]FileType{
	"application/pdf": FileTypePDF,
	"image/jpeg":      FileTypeJPG,
	"image/png":       FileTypePNG,
}
