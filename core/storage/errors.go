package storage

import "errors"

// ErrDuplicateLink is returned when the original URL is already saved for the user.
var ErrDuplicateLink = errors.New("link already saved")

// ErrLinkNotFound is returned when an index does not point at a saved link.
var ErrLinkNotFound = errors.New("link not found")

// ErrEmptyTitle is returned when a rename would leave the link without a title.
var ErrEmptyTitle = errors.New("empty title")
