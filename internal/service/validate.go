package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"karmafeed/internal/model"
)

// validate is shared by every service; validator caches struct metadata per type.
var validate = validator.New()

// validateContent checks a request whose Content field carries required/max tags and
// maps the failure to the matching sentinel error.
func validateContent(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			switch fe.Tag() {
			case "required":
				return model.ErrContentRequired
			case "max":
				return model.ErrContentTooLong
			}
		}
	}
	return fmt.Errorf("validate request: %w", err)
}

func normalizeContent(s string) string {
	return strings.TrimSpace(s)
}
