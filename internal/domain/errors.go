package domain

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrEmptyText      = errors.New("empty text")
	ErrTextTooLong    = errors.New("text too long")
	ErrEncode         = errors.New("encode qr code")
	ErrTempWrite      = errors.New("write temp file")
	ErrTempRead       = errors.New("read temp file")
	ErrStoreInsert    = errors.New("gallery insert")
	ErrStoreWrite     = errors.New("gallery write")
	ErrDecode         = errors.New("decode qr code")
	ErrQueueFull      = errors.New("pipeline queue full")
	ErrNotAccepting   = errors.New("pipeline not accepting requests")
	ErrInvalidSlot    = errors.New("invalid notification slot")
	ErrInvalidFileRef = errors.New("invalid file reference")
)
