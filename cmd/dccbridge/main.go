// dccbridge converts proprietary calibration certificates into Digital
// Calibration Certificates (DCC).
//
// It maps source XML documents onto the DCC structure using declarative
// JSON mapping profiles, then serializes the result as DCC XML.
//
// Usage:
//
//	# Start the conversion server with default configuration
//	dccbridge run
//
//	# Start with a custom configuration file
//	dccbridge run --config /path/to/config.yaml
//
//	# Convert a single certificate on the command line
//	dccbridge convert --profile profiles/keysight.json cert.xml
//
//	# Validate mapping profiles
//	dccbridge lint --dir profiles/
//
//	# List profiles in a directory
//	dccbridge profiles --dir profiles/
//
//	# Show version information
//	dccbridge version
package main

func main() {
	Execute()
}
