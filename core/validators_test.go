package core

import (
	"testing"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
)

func newTestValidator() (*validator.Validate, ut.Translator) {
	validate := validator.New()
	enLocale := en.New()
	translator, _ := ut.New(enLocale, enLocale).GetTranslator("en")
	InitValidators(validate, translator)
	return validate, translator
}

func Test_strongPwdValidation(t *testing.T) {
	validate, _ := newTestValidator()

	tests := []struct {
		name    string
		pwd     string
		wantErr bool
	}{
		{"valid", "Sup3r$ecret", false},
		{"too short", "Ab1!", true},
		{"no uppercase", "sup3r$ecret", true},
		{"no lowercase", "SUP3R$ECRET", true},
		{"no digit", "Super$ecret", true},
		{"no symbol", "Sup3rSecret", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Var(tt.pwd, "strongpwd")
			if (err != nil) != tt.wantErr {
				t.Errorf("Var(%q, strongpwd) error = %v, wantErr %v", tt.pwd, err, tt.wantErr)
			}
		})
	}
}

func Test_alphaNumUnderValidation(t *testing.T) {
	validate, _ := newTestValidator()

	tests := []struct {
		name    string
		val     string
		wantErr bool
	}{
		{"letters and digits", "user42", false},
		{"underscore", "the_user", false},
		{"dash", "the-user", true},
		{"space", "the user", true},
		{"at sign", "user@home", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validate.Var(tt.val, "alphanum_")
			if (err != nil) != tt.wantErr {
				t.Errorf("Var(%q, alphanum_) error = %v, wantErr %v", tt.val, err, tt.wantErr)
			}
		})
	}
}

func Test_translationsUseJSONFieldNames(t *testing.T) {
	validate, translator := newTestValidator()

	var data struct {
		FullName string `json:"full_name" validate:"required"`
	}
	err := validate.Struct(&data)
	if err == nil {
		t.Fatal("expected a validation error")
	}
	vErrs, ok := err.(validator.ValidationErrors)
	if !ok {
		t.Fatalf("expected validator.ValidationErrors, got %T", err)
	}
	if got := vErrs[0].Field(); got != "full_name" {
		t.Errorf("Field() = %q, want %q", got, "full_name")
	}
	if got := vErrs[0].Translate(translator); got != "this field is required" {
		t.Errorf("Translate() = %q, want %q", got, "this field is required")
	}
}
