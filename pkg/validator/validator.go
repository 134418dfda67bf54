package validator

import (
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	apperrors "github.com/jwalitptl/clinic-data/pkg/errors"
)

// Validator checks struct tags on incoming DTOs
type Validator interface {
	Validate(interface{}) error
	ValidateField(field string, value interface{}, rules ...string) error
}

type tagValidator struct {
	v *validator.Validate
}

var (
	once     sync.Once
	instance *tagValidator
)

// New returns the shared validator. validator.Validate caches struct
// metadata, so one instance is reused for the whole process.
func New() Validator {
	once.Do(func() {
		instance = &tagValidator{v: validator.New(validator.WithRequiredStructEnabled())}
	})
	return instance
}

func (t *tagValidator) Validate(obj interface{}) error {
	if err := t.v.Struct(obj); err != nil {
		return apperrors.NewBadRequest(describe(err), err)
	}
	return nil
}

func (t *tagValidator) ValidateField(field string, value interface{}, rules ...string) error {
	if err := t.v.Var(value, strings.Join(rules, ",")); err != nil {
		return apperrors.NewBadRequest(fmt.Sprintf("%s: %s", field, describe(err)), err)
	}
	return nil
}

func describe(err error) string {
	verrs, ok := err.(validator.ValidationErrors)
	if !ok {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s failed on %s=%s", fe.Field(), fe.Tag(), fe.Param()))
			continue
		}
		msgs = append(msgs, fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag()))
	}
	return strings.Join(msgs, "; ")
}
