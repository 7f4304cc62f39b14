package site

import "errors"

var (
	ErrSiteNotFound    = errors.New("site not found")
	ErrSiteInactive    = errors.New("site is not active")
	ErrShortCodeExists = errors.New("short code already assigned to another site")
)
