package entity

import "errors"

var (
	ErrJobNotFound     = errors.New("import job not found")
	ErrJobNotClaimable = errors.New("import job is not in a claimable state")
)
