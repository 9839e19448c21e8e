package config

import (
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"
)

func newValidator() (*validator.Validate, ut.Translator, error) {
	validate := validator.New()

	enLocale := en.New()
	uni := ut.New(enLocale, enLocale)
	trans, _ := uni.GetTranslator("en")
	if err := enTranslations.RegisterDefaultTranslations(validate, trans); err != nil {
		return nil, nil, fmt.Errorf("failed to register default translations: %w", err)
	}

	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("mapstructure"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := validate.RegisterValidation("readable_dir", isDirReadable); err != nil {
		return nil, nil, fmt.Errorf("failed to register readable_dir validation: %w", err)
	}
	validate.RegisterStructValidation(validateStores, Config{})

	translations := map[string]string{
		"readable_dir":        "{0} must be an existing and readable directory",
		"timezone":            "{0} must be an IANA time zone name such as Asia/Tokyo",
		"required_for_remote": "{0} is required when the remote store is used",
		"distinct_mirror":     "{0} must differ from store.driver",
	}
	for tag, text := range translations {
		if err := validate.RegisterTranslation(tag, trans, func(ut ut.Translator) error {
			return ut.Add(tag, text, true)
		}, func(ut ut.Translator, fe validator.FieldError) string {
			t, _ := ut.T(fe.Tag(), strings.TrimPrefix(fe.Namespace(), "Config."))
			return t
		}); err != nil {
			return nil, nil, fmt.Errorf("failed to register %s translation: %w", tag, err)
		}
	}

	return validate, trans, nil
}

func validateStores(sl validator.StructLevel) {
	cfg := sl.Current().Interface().(Config)

	if cfg.UsesDriver(DriverRemote) && cfg.Remote.BaseURL == "" {
		sl.ReportError(cfg.Remote.BaseURL, "remote.base_url", "BaseURL", "required_for_remote", "")
	}
	if cfg.Store.Mirror != "" && cfg.Store.Mirror == cfg.Store.Driver {
		sl.ReportError(cfg.Store.Mirror, "store.mirror", "Mirror", "distinct_mirror", "")
	}
}

func isDirReadable(fl validator.FieldLevel) bool {
	path := fl.Field().String()
	if path == "" {
		return false
	}

	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	if !info.IsDir() {
		return false
	}

	// Owner needs read and execute permission to list the directory
	return info.Mode().Perm()&0o500 == 0o500
}
