package validation

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"sync"

	"github.com/go-playground/locales/pt_BR"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	pt_translations "github.com/go-playground/validator/v10/translations/pt_BR"
)

// custom validation tags & texts
const (
	notBlankTag  = "notblank"
	notBlankText = "{0} não pode ficar em branco"

	enrollmentStatusTag  = "enrollment_status"
	enrollmentStatusText = "{0} não é um status de matrícula válido"
)

// Validator checks records with go-playground/validator and renders
// failures as Portuguese messages, one per field.
type Validator struct {
	validate   *validator.Validate
	translator ut.Translator
}

var (
	defaultOnce      sync.Once
	defaultValidator *Validator
)

// Default returns the process-wide validator
func Default() *Validator {
	defaultOnce.Do(func() {
		defaultValidator = New()
	})
	return defaultValidator
}

// New builds a validator with pt_BR translations and the custom rules registered
func New() *Validator {
	validate := validator.New(validator.WithRequiredStructEnabled())

	ptBR := pt_BR.New()
	uni := ut.New(ptBR, ptBR)
	translator, _ := uni.GetTranslator("pt_BR")
	_ = pt_translations.RegisterDefaultTranslations(validate, translator)

	// Use the label tag, then the form tag, for field names in messages
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		for _, tag := range []string{"label", "form"} {
			name := strings.SplitN(fld.Tag.Get(tag), ",", 2)[0]
			if name == "-" {
				return ""
			}
			if name != "" {
				return name
			}
		}
		return fld.Name
	})

	v := &Validator{validate: validate, translator: translator}

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	v.RegisterCustomTranslation(notBlankTag, notBlankText)

	_ = validate.RegisterValidation(enrollmentStatusTag, enrollmentStatusValidation)
	v.RegisterCustomTranslation(enrollmentStatusTag, enrollmentStatusText)

	return v
}

// RegisterCustomTranslation registers a message for the specified validation tag.
func (v *Validator) RegisterCustomTranslation(tag, text string) {
	_ = v.validate.RegisterTranslation(
		tag, v.translator,
		func(t ut.Translator) error { return t.Add(tag, text, true) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// Struct validates s and returns the translated message of every failing
// field in declaration order. A nil slice means s is valid.
func (v *Validator) Struct(s interface{}) ([]string, error) {
	err := v.validate.Struct(s)
	if err == nil {
		return nil, nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return nil, fmt.Errorf("failed to validate %T: %w", s, err)
	}

	messages := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		messages = append(messages, fe.Translate(v.translator))
	}
	return messages, nil
}

// Custom Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	return strings.TrimSpace(fl.Field().String()) != ""
}

// enrollmentStatuses is kept in sync with models.EnrollmentStatus values
var enrollmentStatuses = map[string]struct{}{
	"Pendente":  {},
	"Concluída": {},
	"Cancelada": {},
}

func enrollmentStatusValidation(fl validator.FieldLevel) bool {
	_, ok := enrollmentStatuses[fl.Field().String()]
	return ok
}
