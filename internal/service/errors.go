package service

import "errors"

var ErrValidation = errors.New("validation")
