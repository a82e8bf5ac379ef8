// Package scan reads scan documents produced by collection agents and
// checks their shape before they reach the analysis engine.
package scan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/dmitriimaksimovdevelop/pcdiag/internal/model"
)

// ErrInvalid marks a scan document that cannot be analysed.
var ErrInvalid = errors.New("invalid scan data")

// ValidationError lists shape problems keyed by JSON path, e.g.
// "storage[0].type".
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = k + ": " + e.Fields[k]
	}
	return fmt.Sprintf("%s: %s", ErrInvalid, strings.Join(parts, "; "))
}

func (e *ValidationError) Unwrap() error { return ErrInvalid }

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.Split(f.Tag.Get("json"), ",")[0]
		if name == "-" {
			return ""
		}
		return name
	})
	// Agents report "unavailable" when they cannot tell the medium.
	_ = v.RegisterValidation("drivetype", func(fl validator.FieldLevel) bool {
		switch model.DriveType(fl.Field().String()) {
		case model.DriveNVMe, model.DriveSATA, model.DriveHDD, model.DriveUnknown, "unavailable":
			return true
		}
		return false
	})
	return v
}

// Decode parses a scan document. Unknown keys are ignored.
func Decode(r io.Reader) (*model.Scan, error) {
	var s model.Scan
	if err := json.NewDecoder(r).Decode(&s); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalid, err)
	}
	return &s, nil
}

// Load reads a scan document from a file. Path "-" reads stdin.
func Load(path string) (*model.Scan, error) {
	if path == "-" {
		return Decode(os.Stdin)
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open scan: %w", err)
	}
	defer f.Close()

	s, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return s, nil
}

// Normalize fills in identity metadata the agent left out.
func Normalize(s *model.Scan, now time.Time) {
	if strings.TrimSpace(s.ScanID) == "" {
		s.ScanID = uuid.NewString()
	}
	if strings.TrimSpace(s.Timestamp) == "" {
		s.Timestamp = now.UTC().Format(time.RFC3339)
	}
}

// Validate checks that the document has every section the engine needs and
// that numeric fields are in range. It returns a *ValidationError.
func Validate(s *model.Scan) error {
	if s == nil {
		return &ValidationError{Fields: map[string]string{"_document": "scan is empty"}}
	}
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fieldPath(fe)] = messageFor(fe)
	}
	return &ValidationError{Fields: fields}
}

// Parse decodes, normalizes and validates a document in one step.
func Parse(r io.Reader, now time.Time) (*model.Scan, error) {
	s, err := Decode(r)
	if err != nil {
		return nil, err
	}
	Normalize(s, now)
	if err := Validate(s); err != nil {
		return nil, err
	}
	return s, nil
}

// fieldPath strips the root type from the namespace: "Scan.cpu.model_name"
// becomes "cpu.model_name".
func fieldPath(fe validator.FieldError) string {
	ns := fe.Namespace()
	if i := strings.IndexByte(ns, '.'); i >= 0 {
		return ns[i+1:]
	}
	return ns
}

func messageFor(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return fmt.Sprintf("must contain at least %s item(s)", fe.Param())
	case "gte":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "lte":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "drivetype":
		return fmt.Sprintf("must be one of: %s, %s, %s, %s", model.DriveNVMe, model.DriveSATA, model.DriveHDD, model.DriveUnknown)
	default:
		return "is invalid"
	}
}
