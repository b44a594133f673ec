package userstore

import "errors"

var errEmailRequired = errors.New("user email is required")
