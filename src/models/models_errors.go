package models

import "errors"

var ErrNoClient = errors.New("a model needs a store client")
