package utils

import (
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-home-io/wled-effects/plugins/common"
	"github.com/go-home-io/wled-effects/providers"
	"gopkg.in/go-playground/validator.v9"
)

// MaxSegmentID is the largest segment id supported by WLED.
const MaxSegmentID = 31

// Validator implementation.
type validatorProvider struct {
	sync.Mutex
	validator *validator.Validate
	logger    common.ILoggerProvider
}

// NewValidator constructs a new validator.
func NewValidator(logger common.ILoggerProvider) providers.IValidatorProvider {
	val := &validatorProvider{
		logger: logger,
	}
	v := validator.New()
	loadNewValidator(v, logger, "percent", percent)
	loadNewValidator(v, logger, "port", port)
	loadNewValidator(v, logger, "segment", segment)
	loadNewValidator(v, logger, "host", host)
	loadNewValidator(v, logger, "hhmm", hhmm)

	val.validator = v
	return val
}

// SetLogger updates the logger.
// Since logger is loaded after first init, we need to re-assign it.
func (v *validatorProvider) SetLogger(logger common.ILoggerProvider) {
	v.logger = logger
}

// Validate performs validation of a config structure.
func (v *validatorProvider) Validate(object interface{}) bool {
	v.Lock()
	defer v.Unlock()

	err := defaults.Set(object)

	if err != nil {
		v.logger.Error("Failed to set default field values", err)
		return false
	}

	err = v.validator.Struct(object)
	if err != nil {
		errs, ok := err.(validator.ValidationErrors)
		if !ok {
			v.logger.Error("Failed to validate object", err)
			return false
		}

		for _, e := range errs {
			v.logger.Warn("Validation error", common.LogFieldToken, e.Namespace())
		}

		return false
	}
	return true
}

// Percent type validation.
func percent(fl validator.FieldLevel) bool {
	return fl.Field().Float() >= 0 && fl.Field().Float() <= 100
}

// Port type validation.
func port(fl validator.FieldLevel) bool {
	return isPort(fl.Field().Int())
}

// WLED segment id validation.
func segment(fl validator.FieldLevel) bool {
	v := fl.Field().Int()
	return v >= 0 && v <= MaxSegmentID
}

// Host or host:port validation.
func host(fl validator.FieldLevel) bool {
	raw := strings.TrimSpace(fl.Field().String())
	if "" == raw || strings.Contains(raw, "/") {
		return false
	}

	h, p, err := net.SplitHostPort(raw)
	if err != nil {
		h = raw
		p = ""
	}

	if "" == h || strings.ContainsAny(h, " \t") {
		return false
	}

	if "" != p {
		n, err := strconv.Atoi(p)
		if err != nil {
			return false
		}

		return isPort(int64(n))
	}

	return true
}

// HH:MM validation.
func hhmm(fl validator.FieldLevel) bool {
	_, _, err := ParseHHMM(fl.Field().String())
	return nil == err
}

// ParseHHMM parses 24h time pattern.
func ParseHHMM(raw string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(raw))
	if err != nil {
		return 0, 0, err
	}

	return t.Hour(), t.Minute(), nil
}

// Validates whether value could be used as a port.
func isPort(val int64) bool {
	return val > 0 && val <= 65535
}

// Attempt to register a new validator.
func loadNewValidator(validator *validator.Validate, logger common.ILoggerProvider,
	name string, function validator.Func) {
	if err := validator.RegisterValidation(name, function); err != nil {
		logger.Error("Failed to register validator type", err, "type", name)
	}
}
