package media

import "errors"

var ErrFileNotFound = errors.New("media file not found")
