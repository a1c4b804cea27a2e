package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentgraph/agentgraph/internal/core/graph"
)

// Validate is the shared validator instance with the custom tags
// registered.
var Validate *validator.Validate

var projectVersion = regexp.MustCompile(`^1(\.\d+)?$`)

func init() {
	Validate = validator.New()

	Validate.RegisterValidation("node_kind", validateNodeKind)
	Validate.RegisterValidation("project_version", validateProjectVersion)

	// report JSON field names
	Validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		if name == "" {
			return fld.Name
		}
		return name
	})
}

// validateNodeKind accepts the node types the generator understands.
func validateNodeKind(fl validator.FieldLevel) bool {
	return graph.Kind(fl.Field().String()).Known()
}

// validateProjectVersion accepts format versions of the 1.x line.
func validateProjectVersion(fl validator.FieldLevel) bool {
	return projectVersion.MatchString(fl.Field().String())
}

// Struct validates s against its validate tags. Field paths are prefixed
// with prefix when it is not empty.
func Struct(s any, prefix string) ValidationErrors {
	err := Validate.Struct(s)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return ValidationErrors{{Field: prefix, Code: CodeInvalid, Message: err.Error()}}
	}
	out := make(ValidationErrors, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		out = append(out, ValidationError{
			Field:   fieldPath(prefix, fe),
			Code:    fe.Tag(),
			Value:   fe.Value(),
			Message: errorMessage(fe),
		})
	}
	return out
}

// fieldPath drops the root struct name from the namespace.
func fieldPath(prefix string, fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		ns = ns[i+1:]
	}
	if prefix == "" {
		return ns
	}
	return prefix + "." + ns
}

func errorMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "field is required"
	case "min":
		return fmt.Sprintf("minimum value/length is %s", fe.Param())
	case "max":
		return fmt.Sprintf("maximum value/length is %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "node_kind":
		return fmt.Sprintf("must be a known node type (%s)", kindList())
	case "project_version":
		return "unsupported project format version"
	default:
		return fmt.Sprintf("validation failed: %s", fe.Tag())
	}
}

func kindList() string {
	names := make([]string, len(graph.Kinds))
	for i, k := range graph.Kinds {
		names[i] = string(k)
	}
	return strings.Join(names, ", ")
}
