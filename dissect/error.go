package dissect

import "errors"

var ErrInvalidMetadata = errors.New("dissect: invalid match metadata")
var ErrUnknownTeam = errors.New("dissect: team not present in match")
var ErrInvalidBulkFile = errors.New("dissect: not a bulk match file")
var ErrInvalidRange = errors.New("dissect: invalid match range")

