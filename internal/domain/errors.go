package domain

import "errors"

// GenericAnalysisMessage is the only failure text shown to users; the
// underlying cause is logged instead.
const GenericAnalysisMessage = "We couldn't analyze the document. Please ensure the image is clear and try again."

var (
	ErrNotFound            = errors.New("resource not found")
	ErrUnauthorized        = errors.New("unauthorized")
	ErrInvalidInput        = errors.New("invalid input")
	ErrUnsupportedFileType = errors.New("unsupported file type")
	ErrFileTooLarge        = errors.New("file exceeds maximum allowed size")
	ErrUnreadableFile      = errors.New("file could not be read")
	ErrNotSignedIn         = errors.New("no user is signed in")
	ErrNoDocument          = errors.New("no document selected")
	ErrAnalysisInProgress  = errors.New("an analysis is already in progress")
	ErrScanComplete        = errors.New("scan already has a result; start a new scan")
	ErrAnalysisFailed      = errors.New("document analysis failed")
	ErrStaleAnalysis       = errors.New("scan was reset while the analysis was running")
	ErrRateLimited         = errors.New("too many analysis requests")
	ErrInvalidCityTier     = errors.New("invalid city tier")
	ErrUnsupportedExport   = errors.New("unsupported export format")
)
