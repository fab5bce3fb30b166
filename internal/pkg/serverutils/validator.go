package serverutils

import (
	"errors"
	"fmt"
	"strings"

	"text-annotation-be/internal/domain"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// ValidateRequest checks a request DTO against its validate tags and turns
// failures into domain validation errors so the error handler maps them to
// 400 responses.
func ValidateRequest(req interface{}) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrors validator.ValidationErrors
	if !errors.As(err, &fieldErrors) {
		return domain.NewValidationError("%s", err.Error())
	}

	messages := make([]string, 0, len(fieldErrors))
	for _, fieldErr := range fieldErrors {
		messages = append(messages, fmt.Sprintf("field %s failed on %s", fieldErr.Field(), fieldErr.Tag()))
	}
	return domain.NewValidationError("%s", strings.Join(messages, "; "))
}
