package ndef

import "errors"

var (
	ErrEmptyMessage        = errors.New("ndef: empty message")
	ErrTruncated           = errors.New("ndef: truncated data")
	ErrMissingBegin        = errors.New("ndef: first record missing message-begin flag")
	ErrChunked             = errors.New("ndef: chunked records unsupported")
	ErrInvalidTNF          = errors.New("ndef: invalid type name format")
	ErrTypeTooLong         = errors.New("ndef: record type too long")
	ErrInvalidRecord       = errors.New("ndef: invalid record")
	ErrInvalidText         = errors.New("ndef: invalid text payload")
	ErrUnsupportedEncoding = errors.New("ndef: unsupported text encoding")
	ErrNoNDEF              = errors.New("ndef: no NDEF message TLV found")
	ErrPayloadTooLarge     = errors.New("ndef: payload too large")
)
