package ngocontent

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Validatable is implemented by request types that check themselves before
// any store is touched.
type Validatable interface {
	Validate() error
}

// validate is safe for concurrent use and caches struct metadata, so one
// instance serves the whole process.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validateStruct runs the tag rules of req and converts failures into a
// ValidationError with one message per field.
func validateStruct(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return &ValidationError{Fields: []string{err.Error()}}
	}

	fields := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		fields = append(fields, fieldMessage(fe))
	}
	return &ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", fe.Field())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param())
	case "gt":
		return fmt.Sprintf("%s must be greater than %s", fe.Field(), fe.Param())
	case "url":
		return fmt.Sprintf("%s must be a valid url", fe.Field())
	default:
		return fmt.Sprintf("%s failed on %s", fe.Field(), fe.Tag())
	}
}

// validateAsset rejects uploads that are not images. An empty asset is valid
// and means "no change".
func validateAsset(asset *PendingAsset) error {
	if asset.IsEmpty() {
		return nil
	}
	if asset.ContentType != "" && !strings.HasPrefix(asset.ContentType, "image/") {
		return &ValidationError{Fields: []string{fmt.Sprintf("image must be an image file, got %s", asset.ContentType)}}
	}
	return nil
}

// assetChange resolves the explicit update intent of a request.
func assetChange(image *PendingAsset, remove bool) (AssetChange, error) {
	if remove && !image.IsEmpty() {
		return AssetChange{}, &ValidationError{Fields: []string{"image and remove_image are mutually exclusive"}}
	}
	if remove {
		return RemoveAsset(), nil
	}
	return ReplaceAsset(image), nil
}
