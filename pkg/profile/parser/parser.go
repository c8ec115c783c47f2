package parser

import (
	"fmt"
	"os"

	"caliper-hq/dccbridge/pkg/profile/ast"
	profileErrors "caliper-hq/dccbridge/pkg/profile/errors"
)

// Parser parses mapping profile JSON documents into ASTs.
type Parser struct {
	maxFileSize int64 // Maximum file size in bytes (default: 10MB)
	maxDepth    int   // Maximum array nesting depth (default: 10)
	repair      bool  // Attempt json-repair on malformed input (default: true)
}

// NewParser creates a new parser with default configuration.
func NewParser() *Parser {
	return &Parser{
		maxFileSize: 10 * 1024 * 1024, // 10MB
		maxDepth:    10,
		repair:      true,
	}
}

// WithMaxFileSize sets the maximum file size limit.
func (p *Parser) WithMaxFileSize(size int64) *Parser {
	p.maxFileSize = size
	return p
}

// WithMaxDepth sets the maximum array nesting depth.
//
// The rule model itself places no limit on how deeply array fields may
// nest; the depth cap is a parser guard against runaway or hostile
// profile documents. Profiles that legitimately nest deeper than the
// default of 10 levels can raise it here.
func (p *Parser) WithMaxDepth(depth int) *Parser {
	p.maxDepth = depth
	return p
}

// WithRepair controls whether malformed JSON is run through json-repair
// before being rejected.
func (p *Parser) WithRepair(repair bool) *Parser {
	p.repair = repair
	return p
}

// Parse parses a profile file at the given path and returns the AST.
// It returns an error if the file cannot be read, has invalid JSON
// syntax even after repair, or contains structural errors.
func (p *Parser) Parse(path string) (*ast.Profile, error) {
	fileInfo, err := os.Stat(path)
	if err != nil {
		return nil, &profileErrors.Error{
			Type:    profileErrors.ErrorTypeIO,
			Message: fmt.Sprintf("failed to access file: %v", err),
			File:    path,
		}
	}

	if fileInfo.Size() > p.maxFileSize {
		return nil, &profileErrors.Error{
			Type:    profileErrors.ErrorTypeIO,
			Message: fmt.Sprintf("file size %d exceeds maximum %d bytes", fileInfo.Size(), p.maxFileSize),
			File:    path,
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &profileErrors.Error{
			Type:    profileErrors.ErrorTypeIO,
			Message: fmt.Sprintf("failed to read file: %v", err),
			File:    path,
		}
	}

	return p.ParseBytes(data, path)
}

// ParseBytes parses profile JSON from a byte slice. The sourcePath is
// used only for error reporting and the profile's SourceFile field.
func (p *Parser) ParseBytes(data []byte, sourcePath string) (*ast.Profile, error) {
	if int64(len(data)) > p.maxFileSize {
		return nil, &profileErrors.Error{
			Type:    profileErrors.ErrorTypeIO,
			Message: fmt.Sprintf("data size %d exceeds maximum %d bytes", len(data), p.maxFileSize),
			File:    sourcePath,
		}
	}

	jp, err := decodeProfile(data, p.repair)
	if err != nil {
		return nil, &profileErrors.Error{
			Type:       profileErrors.ErrorTypeSyntax,
			Message:    fmt.Sprintf("JSON parsing failed: %v", err),
			File:       sourcePath,
			Suggestion: "check JSON syntax (quotes, commas, braces)",
		}
	}

	return newBuilder(sourcePath, p.maxDepth).buildProfile(jp)
}
