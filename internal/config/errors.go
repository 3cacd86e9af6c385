package config

import "errors"

var (
	ErrReadConfig    = errors.New("config: failed to read config file")
	ErrLoadEnv       = errors.New("config: failed to load .env file")
	ErrInvalidConfig = errors.New("config: invalid configuration")
)
