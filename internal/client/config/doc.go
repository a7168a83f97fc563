// Package config loads runtime configuration for the codecredits CLI.
//
// Sources & precedence
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional config file selected with --config; any format viper reads.
//  3. Environment: CODEGEN_API_URL (or API_URL), CODEGEN_SESSION_DB,
//     CODEGEN_REQUEST_TIMEOUT, CODEGEN_CREDITS_REFRESH_INTERVAL,
//     CODEGEN_PAGE_SIZE, CODEGEN_LOG_LEVEL, CODEGEN_LOG_FORMAT.
//  4. Command-line flags set explicitly (see RegisterFlags).
//
// # File schema
//
// Keys match the environment names without the prefix, in lower case:
//
//	{
//	  "api_url": "https://api.example.com",
//	  "request_timeout": "15s",
//	  "credits_refresh_interval": "1m",
//	  "page_size": 20
//	}
package config
