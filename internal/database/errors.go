package database

import "errors"

var (
	ErrNotFound          = errors.New("not found")
	ErrInvalidStatus     = errors.New("invalid status")
	ErrTemplateNameTaken = errors.New("template name already exists")
	ErrSlugTaken         = errors.New("slug already in use")
	ErrTemplateNotReady  = errors.New("template must have event_time and event_location")
)
