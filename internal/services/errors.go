package services

import "errors"

var (
	ErrDuplicateCredential = errors.New("username already registered")
	ErrInvalidCredential   = errors.New("invalid username or password")
	ErrMissingCredential   = errors.New("username and password are required")
	ErrPersistenceWrite    = errors.New("could not save changes")
	ErrBackupsDisabled     = errors.New("backups are not configured")
)
