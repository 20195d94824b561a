// Package auth turns configured credentials into request headers.
package auth

import (
	"fmt"

	"github.com/cumulus-dev/cumulus/internal/apperr"
	"github.com/cumulus-dev/cumulus/pkg/config"
)

const (
	HeaderProject = "X-Appwrite-Project"
	HeaderKey     = "X-Appwrite-Key"
	HeaderJWT     = "X-Appwrite-JWT"
	HeaderLocale  = "X-Appwrite-Locale"

	// HeaderResponseFormat pins the response schema the models decode.
	HeaderResponseFormat = "X-Appwrite-Response-Format"
	ResponseFormat       = "1.7.0"
)

// Headers returns the default headers for every request. An API key wins over
// a JWT; a JWT is checked for expiry before any request is sent.
func Headers(cfg *config.Config) (map[string]string, error) {
	project, err := cfg.GetCurrentProject()
	if err != nil {
		return nil, apperr.InvalidArgument("%v", err)
	}

	headers := map[string]string{
		HeaderProject:        project,
		HeaderResponseFormat: ResponseFormat,
	}

	switch {
	case cfg.APIKey != "":
		headers[HeaderKey] = cfg.APIKey
	case cfg.JWT != "":
		if err := ValidateToken(cfg.JWT); err != nil {
			return nil, fmt.Errorf("configured JWT is not usable: %w", err)
		}
		headers[HeaderJWT] = cfg.JWT
	}

	if cfg.Locale != "" {
		headers[HeaderLocale] = cfg.Locale
	}
	return headers, nil
}
