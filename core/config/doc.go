// Package config provides type-safe environment variable loading with caching
// using Go generics. Each configuration type is loaded once and cached for
// subsequent calls.
//
// The package automatically loads .env files on first use and uses the
// caarlos0/env library for parsing environment variables into struct fields.
//
// Basic usage:
//
//	import "github.com/dmitrymomot/certkeeper/core/config"
//
//	type RenewalConfig struct {
//		Domain          string `env:"DOMAIN,required"`
//		CertificateName string `env:"CERTIFICATE_NAME,required"`
//		ValidityDays    int    `env:"VALIDITY_DAYS" envDefault:"90"`
//	}
//
//	func main() {
//		var cfg RenewalConfig
//
//		// Load with error handling
//		if err := config.Load(&cfg); err != nil {
//			log.Fatal(err)
//		}
//
//		// Or panic on failure (useful for startup)
//		config.MustLoad(&cfg)
//	}
//
// # Caching Behavior
//
// Each configuration type is loaded only once per process lifetime:
//
//	var cfg1 RenewalConfig
//	config.Load(&cfg1) // Loads from environment
//
//	var cfg2 RenewalConfig
//	config.Load(&cfg2) // Returns cached value, cfg1 == cfg2
//
// Different types are cached independently. A failed load is not cached, so
// the next call retries against the current environment.
package config
