package config

import (
	"errors"
	"fmt"
	"math"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/hesreallyhim/antipasta-sub000/domain"
)

// ThresholdValues declares the permitted range of every metric threshold.
// Exactly one field is set when validating a single value.
type ThresholdValues struct {
	CyclomaticComplexity *int     `yaml:"cyclomatic_complexity" validate:"omitempty,gte=1,lte=50"`
	CognitiveComplexity  *int     `yaml:"cognitive_complexity" validate:"omitempty,gte=1,lte=100"`
	MaintainabilityIndex *float64 `yaml:"maintainability_index" validate:"omitempty,gte=0,lte=100"`
	HalsteadVolume       *float64 `yaml:"halstead_volume" validate:"omitempty,gte=0,lte=100000"`
	HalsteadDifficulty   *float64 `yaml:"halstead_difficulty" validate:"omitempty,gte=0,lte=100"`
	HalsteadEffort       *float64 `yaml:"halstead_effort" validate:"omitempty,gte=0,lte=1000000"`
	HalsteadTime         *float64 `yaml:"halstead_time" validate:"omitempty,gte=0"`
	HalsteadBugs         *float64 `yaml:"halstead_bugs" validate:"omitempty,gte=0"`
	LinesOfCode          *int     `yaml:"lines_of_code" validate:"omitempty,gte=0"`
	LogicalLinesOfCode   *int     `yaml:"logical_lines_of_code" validate:"omitempty,gte=0"`
	SourceLinesOfCode    *int     `yaml:"source_lines_of_code" validate:"omitempty,gte=0"`
	CommentLines         *int     `yaml:"comment_lines" validate:"omitempty,gte=0"`
	BlankLines           *int     `yaml:"blank_lines" validate:"omitempty,gte=0"`
}

var configValidate *validator.Validate

func init() {
	configValidate = validator.New()

	// Report fields by their config key rather than the Go field name
	configValidate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})

	_ = configValidate.RegisterValidation("metric_type", validateMetricType)
	_ = configValidate.RegisterValidation("comparator", validateComparator)
}

func validateMetricType(fl validator.FieldLevel) bool {
	_, err := domain.ParseMetricType(fl.Field().String())
	return err == nil
}

func validateComparator(fl validator.FieldLevel) bool {
	_, err := domain.ParseComparator(fl.Field().String())
	return err == nil
}

// validateStruct runs tag validation and converts failures into a config error
func validateStruct(s any) error {
	err := configValidate.Struct(s)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return domain.NewConfigError("invalid configuration", err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		msgs = append(msgs, describeFieldError(fe))
	}
	return domain.NewConfigError("invalid configuration: "+strings.Join(msgs, "; "), nil)
}

func describeFieldError(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}

	switch fe.Tag() {
	case "gte":
		return fmt.Sprintf("%s must be >= %s (got %v)", field, fe.Param(), fe.Value())
	case "lte":
		return fmt.Sprintf("%s must be <= %s (got %v)", field, fe.Param(), fe.Value())
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "metric_type":
		return fmt.Sprintf("%s: unknown metric type %q", field, fe.Value())
	case "comparator":
		return fmt.Sprintf("%s: unknown comparator %q (expected one of <, <=, >, >=, ==, !=)", field, fe.Value())
	case "startswith":
		return fmt.Sprintf("%s: extension must start with a dot (got %q)", field, fe.Value())
	default:
		return fmt.Sprintf("%s failed %s validation", field, fe.Tag())
	}
}

// ValidateThreshold checks value against the permitted range for mt
func ValidateThreshold(mt domain.MetricType, value float64) error {
	tv, err := thresholdValuesFor(mt, value)
	if err != nil {
		return err
	}
	return validateStruct(tv)
}

func thresholdValuesFor(mt domain.MetricType, value float64) (*ThresholdValues, error) {
	tv := &ThresholdValues{}

	asInt := func() (*int, error) {
		if value != math.Trunc(value) {
			return nil, domain.NewConfigError(fmt.Sprintf("%s threshold must be an integer (got %g)", mt, value), nil)
		}
		i := int(value)
		return &i, nil
	}
	f := value

	var err error
	switch mt {
	case domain.MetricCyclomaticComplexity:
		tv.CyclomaticComplexity, err = asInt()
	case domain.MetricCognitiveComplexity:
		tv.CognitiveComplexity, err = asInt()
	case domain.MetricMaintainabilityIndex:
		tv.MaintainabilityIndex = &f
	case domain.MetricHalsteadVolume:
		tv.HalsteadVolume = &f
	case domain.MetricHalsteadDifficulty:
		tv.HalsteadDifficulty = &f
	case domain.MetricHalsteadEffort:
		tv.HalsteadEffort = &f
	case domain.MetricHalsteadTime:
		tv.HalsteadTime = &f
	case domain.MetricHalsteadBugs:
		tv.HalsteadBugs = &f
	case domain.MetricLinesOfCode:
		tv.LinesOfCode, err = asInt()
	case domain.MetricLogicalLinesOfCode:
		tv.LogicalLinesOfCode, err = asInt()
	case domain.MetricSourceLinesOfCode:
		tv.SourceLinesOfCode, err = asInt()
	case domain.MetricCommentLines:
		tv.CommentLines, err = asInt()
	case domain.MetricBlankLines:
		tv.BlankLines, err = asInt()
	default:
		return nil, domain.NewConfigError(fmt.Sprintf("unknown metric type: %s", mt), nil)
	}
	if err != nil {
		return nil, err
	}
	return tv, nil
}

// RangeDescription returns a short human description of the permitted range, e.g. "1-50"
func RangeDescription(mt domain.MetricType) string {
	t := reflect.TypeOf(ThresholdValues{})
	var field reflect.StructField
	found := false
	for i := 0; i < t.NumField(); i++ {
		if t.Field(i).Tag.Get("yaml") == string(mt) {
			field, found = t.Field(i), true
			break
		}
	}
	if !found {
		return ""
	}

	var lo, hi string
	for _, rule := range strings.Split(field.Tag.Get("validate"), ",") {
		switch {
		case strings.HasPrefix(rule, "gte="):
			lo = strings.TrimPrefix(rule, "gte=")
		case strings.HasPrefix(rule, "lte="):
			hi = strings.TrimPrefix(rule, "lte=")
		}
	}
	if hi == "" {
		return ">= " + lo
	}
	return lo + "-" + hi
}
