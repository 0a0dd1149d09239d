package id

import "regexp"

// Chat platform user ids: snowflakes or short handles.
var reUserID = regexp.MustCompile(`^[A-Za-z0-9_.:-]{1,64}$`)

func ValidUserID(s string) bool { return reUserID.MatchString(s) }
