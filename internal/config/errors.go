package config

import "errors"

var (
	ErrInvalidStorageConfigs = errors.New("invalid storage configs")
	ErrInvalidAdapterConfigs = errors.New("invalid adapter configs")
	ErrInvalidAuthConfigs    = errors.New("invalid auth configs")
	ErrInvalidServerConfigs  = errors.New("invalid server configs")
)
