package ingest

import "errors"

// Sentinel kinds for upload parsing errors.
var (
	ErrEmptyUpload     = errors.New("upload has no rows")
	ErrMissingColumn   = errors.New("upload has no description column")
	ErrTooManyRows     = errors.New("upload exceeds the row limit")
	ErrMalformedUpload = errors.New("malformed csv")
)
