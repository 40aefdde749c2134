package storage

import "errors"

var (
	// ErrCatalogRead indicates the master table exists but could not be read.
	ErrCatalogRead = errors.New("reading catalog")

	// ErrCatalogWrite indicates the master table could not be written.
	ErrCatalogWrite = errors.New("writing catalog")
)
