// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package survey

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/danielhkuo/condo-survey/fault"
	"github.com/danielhkuo/condo-survey/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

var indexPattern = regexp.MustCompile(`\[(\d+)\]`)

// fieldPath turns "SurveyDraft.questions[0].options[1].option_text" into
// "questions[1].options[2].option_text".
func fieldPath(namespace string) string {
	if i := strings.IndexByte(namespace, '.'); i >= 0 {
		namespace = namespace[i+1:]
	}
	return indexPattern.ReplaceAllStringFunc(namespace, func(m string) string {
		n, _ := strconv.Atoi(m[1 : len(m)-1])
		return "[" + strconv.Itoa(n+1) + "]"
	})
}

func describe(fe validator.FieldError) string {
	path := fieldPath(fe.Namespace())
	switch fe.Tag() {
	case "required":
		return path + " is required"
	case "min":
		return fmt.Sprintf("%s must contain at least %s item(s)", path, fe.Param())
	default:
		return fmt.Sprintf("%s failed %s", path, fe.Tag())
	}
}

func normalizeDraft(d models.SurveyDraft) models.SurveyDraft {
	d.Title = strings.TrimSpace(d.Title)
	if d.Description != nil {
		desc := strings.TrimSpace(*d.Description)
		d.Description = &desc
	}
	questions := make([]models.QuestionInput, len(d.Questions))
	for i, q := range d.Questions {
		q.QuestionText = strings.TrimSpace(q.QuestionText)
		options := make([]models.OptionInput, len(q.Options))
		for j, o := range q.Options {
			options[j] = models.OptionInput{OptionText: strings.TrimSpace(o.OptionText)}
		}
		if q.Options == nil {
			options = nil
		}
		q.Options = options
		questions[i] = q
	}
	if d.Questions == nil {
		questions = nil
	}
	d.Questions = questions
	if d.StartDate != nil {
		t := d.StartDate.UTC()
		d.StartDate = &t
	}
	if d.EndDate != nil {
		t := d.EndDate.UTC()
		d.EndDate = &t
	}
	return d
}

// ValidateDraft reports every missing or malformed field of a survey draft
// in one ValidationError. Question and option positions are 1-indexed.
func ValidateDraft(d models.SurveyDraft) error {
	var details []string

	if err := validate.Struct(d); err != nil {
		var ve validator.ValidationErrors
		if !errors.As(err, &ve) {
			return fault.NewInternal("failed to validate survey", err)
		}
		for _, fe := range ve {
			details = append(details, describe(fe))
		}
	}

	if d.StartDate != nil && d.EndDate != nil && !d.StartDate.Before(*d.EndDate) {
		details = append(details, "start_date must be before end_date")
	}

	if len(details) > 0 {
		return fault.NewValidation("invalid survey", details...)
	}
	return nil
}
