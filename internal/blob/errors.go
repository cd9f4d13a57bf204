package blob

import "errors"

var (
	// ErrBlobNotFound signals that the blob is absent at the checked path.
	ErrBlobNotFound = errors.New("blob not found")
	// ErrWrite signals an I/O failure while persisting a blob.
	ErrWrite = errors.New("blob write failed")
	// ErrInvalidPath signals a malformed or escaping relative path.
	ErrInvalidPath = errors.New("invalid blob path")
)
