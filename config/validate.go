package config

import (
	stderrors "errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/pgavriel/MOADv2/errors"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// Validate checks cfg against its struct tags.
func Validate(cfg *RunConfig) error {
	err := validate.Struct(cfg)
	if err == nil {
		if cfg.Auth.Anonymous() && cfg.Auth.Profile != "" {
			return errors.New(errors.CodeInvalidConfig, "Auth.Profile requires auth mode credentialed").
				WithContext("profile", cfg.Auth.Profile)
		}
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !stderrors.As(err, &fieldErrs) {
		return errors.Wrap(err, errors.CodeInvalidConfig, "invalid run configuration")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return errors.Wrap(err, errors.CodeInvalidConfig, strings.Join(msgs, "; "))
}

func describeFieldError(fe validator.FieldError) string {
	field := strings.TrimPrefix(fe.Namespace(), "RunConfig.")
	if fe.Param() != "" {
		return fmt.Sprintf("%s failed %s=%s (got %v)", field, fe.Tag(), fe.Param(), fe.Value())
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
