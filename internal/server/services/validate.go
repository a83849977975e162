package services

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dmitrijs2005/taskkeeper/internal/common"
	"github.com/go-playground/validator/v10"
)

const (
	MaxEmailLength       = 255
	MaxTitleLength       = 200
	MaxDescriptionLength = 1000
)

var validate = validator.New()

func validateEmail(email string) error {
	if err := validate.Var(email, fmt.Sprintf("required,email,max=%d", MaxEmailLength)); err != nil {
		return fmt.Errorf("%w: invalid email", common.ErrorValidation)
	}
	return nil
}

// normalizeTitle trims title and checks its length.
func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title cannot be empty", common.ErrorValidation)
	}
	if utf8.RuneCountInString(title) > MaxTitleLength {
		return "", fmt.Errorf("%w: title must be at most %d characters", common.ErrorValidation, MaxTitleLength)
	}
	return title, nil
}

// normalizeDescription trims description; blank becomes nil.
func normalizeDescription(description *string) (*string, error) {
	d := normalizeOptional(description)
	if d != nil && utf8.RuneCountInString(*d) > MaxDescriptionLength {
		return nil, fmt.Errorf("%w: description must be at most %d characters", common.ErrorValidation, MaxDescriptionLength)
	}
	return d, nil
}

func normalizeOptional(s *string) *string {
	if s == nil {
		return nil
	}
	return optional(strings.TrimSpace(*s))
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
