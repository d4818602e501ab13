package service

import (
	"errors"

	"pantry/internal/database"
)

var (
	ErrItemNotFound     = database.ErrItemNotFound
	ErrInvalidItem      = database.ErrInvalidItem
	ErrCategoryNotFound = errors.New("category not found")
	ErrInvalidCategory  = errors.New("invalid category")
	ErrCategoryInUse    = errors.New("category still has items")
)
