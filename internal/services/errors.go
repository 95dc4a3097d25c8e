package services

import "errors"

var ErrInvalidSort = errors.New("invalid sort")
