package audio

import "errors"

var (
	errShortWAV = errors.New("wav data too short to be valid")
	errOddWAV   = errors.New("wav data length not divisible by 2")
)
