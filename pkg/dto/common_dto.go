package dto

import "io"

// UploadFile carries a multipart file from the handler to the service
// without exposing http types below the delivery layer.
type UploadFile struct {
	Reader   io.Reader
	FileName string
}
