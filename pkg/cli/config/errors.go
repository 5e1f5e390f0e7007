package config

import "github.com/m-mizutani/goerr/v2"

// Sentinel errors for configuration validation
var (
	ErrInvalidConfig   = goerr.New("invalid configuration")
	ErrMissingName     = goerr.New("name is required")
	ErrDuplicateName   = goerr.New("duplicate name")
	ErrUnknownStore    = goerr.New("unknown store")
	ErrInvalidPayout   = goerr.New("payout amount must be positive")
	ErrInvalidAdmin    = goerr.New("invalid admin entry")
	ErrInvalidBackend  = goerr.New("invalid backend")
	ErrMissingSetting  = goerr.New("required setting is missing")
	ErrInvalidLocation = goerr.New("invalid time zone")
)

// Context keys for error values
const (
	ConfigPathKey = "config_path"
	NameKey       = "name"
	BackendKey    = "backend"
	FlagKey       = "flag"
)
