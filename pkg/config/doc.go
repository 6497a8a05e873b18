// Package config loads typed configuration structs from environment variables.
//
// It combines github.com/joho/godotenv, which reads an optional `.env` file,
// with github.com/caarlos0/env/v11, which maps variables onto struct fields
// through `env` and `envDefault` tags. Each configuration type is parsed once
// and cached for the lifetime of the process.
//
//	var cfg httpserver.Config
//	config.MustLoad(&cfg)
//
// Parsing failures are reported as ErrParsingConfig joined with the parser
// error, so callers can test them with errors.Is.
package config
