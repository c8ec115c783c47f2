// Package config defines the configuration structures for the dccbridge
// conversion service, along with loading, defaulting, and validation.
//
// Configuration is read from a YAML file, defaults are applied to zero
// values, and environment variables with the DCCBRIDGE_ prefix override
// file-based settings. The final configuration is validated before use.
package config
