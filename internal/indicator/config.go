package indicator

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
)

// Kind names an indicator family.
type Kind string

const (
	KindMA         Kind = "MA"
	KindBollinger  Kind = "BOLLINGER"
	KindRSI        Kind = "RSI"
	KindMACD       Kind = "MACD"
	KindStochastic Kind = "STOCHASTIC"
)

// Kinds lists every supported family in evaluation order.
var Kinds = []Kind{KindMA, KindBollinger, KindRSI, KindMACD, KindStochastic}

// Config selects the indicators to compute and their parameters.
type Config struct {
	MAWindows       []int   `yaml:"ma_windows" json:"ma_windows" default:"[20,50]" validate:"dive,gt=0"`
	BollingerWindow int     `yaml:"bollinger_window" json:"bollinger_window" default:"20" validate:"gt=0"`
	BollingerK      float64 `yaml:"bollinger_k" json:"bollinger_k" default:"2.0" validate:"gt=0"`
	RSIPeriod       int     `yaml:"rsi_period" json:"rsi_period" default:"14" validate:"gt=0"`
	MACDFast        int     `yaml:"macd_fast" json:"macd_fast" default:"12" validate:"gt=0"`
	MACDSlow        int     `yaml:"macd_slow" json:"macd_slow" default:"26" validate:"gt=0"`
	MACDSignal      int     `yaml:"macd_signal" json:"macd_signal" default:"9" validate:"gt=0"`
	StochPeriod     int     `yaml:"stoch_period" json:"stoch_period" default:"14" validate:"gt=0"`
	StochSignal     int     `yaml:"stoch_signal" json:"stoch_signal" default:"3" validate:"gt=0"`
	Enabled         []Kind  `yaml:"indicators_enabled" json:"indicators_enabled" default:"[\"MA\",\"BOLLINGER\",\"RSI\",\"MACD\",\"STOCHASTIC\"]" validate:"min=1,dive,oneof=MA BOLLINGER RSI MACD STOCHASTIC"`
}

// ConfigError reports an invalid indicator parameter.
type ConfigError struct {
	Param  string
	Value  string
	Reason string
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("indicator config: %s %s (got %s)", e.Param, e.Reason, e.Value)
}

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("yaml"), ",", 2)[0]
		if name == "-" || name == "" {
			return f.Name
		}
		return name
	})
	return v
}

// DefaultConfig returns the standard parameter set: MA 20/50, Bollinger
// 20/2, RSI 14, MACD 12/26/9, Stochastic 14/3, all families enabled.
func DefaultConfig() Config {
	var cfg Config
	if err := defaults.Set(&cfg); err != nil {
		panic(fmt.Sprintf("indicator: bad default tags: %v", err))
	}
	return cfg
}

// Validate checks every parameter. All problems are returned joined;
// each one is a *ConfigError.
func (c Config) Validate() error {
	var errs []error
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if !errors.As(err, &verrs) {
			return fmt.Errorf("indicator config: %w", err)
		}
		for _, fe := range verrs {
			errs = append(errs, &ConfigError{
				Param:  fe.Field(),
				Value:  fmt.Sprint(fe.Value()),
				Reason: reason(fe),
			})
		}
	}
	if c.Enables(KindMA) && len(c.MAWindows) == 0 {
		errs = append(errs, &ConfigError{Param: "ma_windows", Value: "[]", Reason: "must not be empty when MA is enabled"})
	}
	return errors.Join(errs...)
}

func reason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "gt":
		return "must be greater than " + fe.Param()
	case "oneof":
		return "must be one of " + strings.ReplaceAll(fe.Param(), " ", ", ")
	case "min":
		return "must have at least " + fe.Param() + " element(s)"
	default:
		return "failed " + fe.Tag()
	}
}

// Enables reports whether k is in the enabled set.
func (c Config) Enables(k Kind) bool {
	for _, e := range c.Enabled {
		if e == k {
			return true
		}
	}
	return false
}
