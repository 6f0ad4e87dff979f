package errors

import (
	"net"
	"strconv"
	"strings"
	"unicode"
)

// maxPathLength bounds file paths accepted from configuration and requests.
const maxPathLength = 500

// ValidatePath validates a file path taken from a config file or a request.
//
// Validation rules:
//   - Path cannot be empty
//   - Maximum length of 500 characters
//   - No null bytes or control characters
//   - No backslashes (Windows-style paths)
func ValidatePath(path string) error {
	if path == "" {
		return New(ErrCodeInvalidPath, "path cannot be empty")
	}

	if len(path) > maxPathLength {
		return New(ErrCodeInvalidPath, "path too long (max %d characters)", maxPathLength)
	}

	for _, r := range path {
		if r == '\x00' || unicode.IsControl(r) {
			return New(ErrCodeInvalidPath, "path contains invalid characters")
		}
	}

	if strings.Contains(path, "\\") {
		return New(ErrCodeInvalidPath, "path cannot contain backslashes")
	}

	return nil
}

// ValidateRelativePath is ValidatePath for paths that must stay below a base
// directory, such as artifact names served over HTTP.
func ValidateRelativePath(path string) error {
	if err := ValidatePath(path); err != nil {
		return err
	}

	if strings.HasPrefix(path, "/") {
		return New(ErrCodeInvalidPath, "path must be relative (cannot start with /)")
	}

	if strings.Contains(path, "..") {
		return New(ErrCodeInvalidPath, "path cannot contain path traversal sequences (..)")
	}

	return nil
}

// ValidateAddr validates a host:port network address such as a Redis server.
func ValidateAddr(addr string) error {
	if addr == "" {
		return New(ErrCodeInvalidConfig, "address cannot be empty")
	}

	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return Wrap(ErrCodeInvalidConfig, err, "invalid address %q", addr)
	}
	if host == "" {
		return New(ErrCodeInvalidConfig, "address %q has no host", addr)
	}

	n, err := strconv.Atoi(port)
	if err != nil || n <= 0 || n > 65535 {
		return New(ErrCodeInvalidConfig, "address %q has invalid port", addr)
	}

	return nil
}

// ValidateMongoURI validates a MongoDB connection string scheme.
func ValidateMongoURI(uri string) error {
	if uri == "" {
		return New(ErrCodeInvalidConfig, "MongoDB URI cannot be empty")
	}

	if !strings.HasPrefix(uri, "mongodb://") && !strings.HasPrefix(uri, "mongodb+srv://") {
		return New(ErrCodeInvalidConfig, "MongoDB URI must use mongodb:// or mongodb+srv:// scheme")
	}

	return nil
}
