package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"StockScope/internal/batch"
	"StockScope/internal/pipeline"
)

// maxSymbols bounds one request's fan-out to the data source.
const maxSymbols = 50

var validate = validator.New()

// Runner executes one fetch-and-compute pass.
type Runner interface {
	Run(ctx context.Context, req pipeline.Request) (*batch.Result, error)
}

// Handler serves indicator results over HTTP.
type Handler struct {
	runner  Runner
	symbols []string
	now     func() time.Time
	log     zerolog.Logger
}

// NewHandler creates a Handler; symbols is used when a request names none.
func NewHandler(runner Runner, symbols []string, log zerolog.Logger) *Handler {
	return &Handler{
		runner:  runner,
		symbols: symbols,
		now:     time.Now,
		log:     log.With().Str("component", "api").Logger(),
	}
}

func (h *Handler) RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", h.Health)
	g := e.Group("/api/v1")
	g.GET("/indicators", h.Indicators)
}

func (h *Handler) Health(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

func (h *Handler) Indicators(c echo.Context) error {
	req := &IndicatorsRequest{}
	if verrs := readAndValidateRequest(c, req); verrs != nil {
		return badRequest(c, verrs...)
	}

	symbols := h.symbols
	if req.Symbols != "" {
		symbols = splitSymbols(req.Symbols)
	}
	if len(symbols) == 0 {
		return badRequest(c, ValidationError{Code: "ERR_REQUIRED", Field: "symbols", Message: "symbols is required"})
	}
	if len(symbols) > maxSymbols {
		return badRequest(c, ValidationError{
			Code:    "ERR_MAX",
			Field:   "symbols",
			Message: fmt.Sprintf("symbols must name at most %d instruments", maxSymbols),
		})
	}

	end := h.now()
	if req.End != "" {
		end, _ = time.Parse(time.DateOnly, req.End)
	}
	start := end.AddDate(0, 0, -req.Lookback)
	if req.Start != "" {
		start, _ = time.Parse(time.DateOnly, req.Start)
	}
	if !start.Before(end) {
		return badRequest(c, ValidationError{Code: "ERR_RANGE", Field: "start", Message: "start must be before end"})
	}

	res, err := h.runner.Run(c.Request().Context(), pipeline.Request{
		Symbols: symbols,
		Start:   start,
		End:     end,
		Trigger: "api",
	})
	if err != nil {
		h.log.Error().Err(err).Strs("symbols", symbols).Msg("indicators request failed")
		return c.JSON(http.StatusBadGateway, map[string]string{"error": err.Error()})
	}
	if req.Trim {
		res = res.TrimWarmup()
	}
	return c.JSON(http.StatusOK, NewIndicatorsResponse(res, start, end))
}

func badRequest(c echo.Context, verrs ...ValidationError) error {
	return c.JSON(http.StatusBadRequest, map[string][]ValidationError{"errors": verrs})
}

// readAndValidateRequest applies defaults, binds the query over them and
// validates, so an explicit zero is checked rather than replaced.
func readAndValidateRequest(c echo.Context, req any) []ValidationError {
	if err := defaults.Set(req); err != nil {
		return toValidationErrors(err)
	}
	if err := c.Bind(req); err != nil {
		return toValidationErrors(err)
	}
	if err := validate.StructCtx(c.Request().Context(), req); err != nil {
		return toValidationErrors(err)
	}
	return nil
}

func toValidationErrors(err error) []ValidationError {
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		out := make([]ValidationError, 0, len(verrs))
		for _, fe := range verrs {
			out = append(out, ValidationError{
				Code:    "ERR_" + strings.ToUpper(fe.Tag()),
				Field:   strings.ToLower(fe.Field()),
				Message: errorMessage(fe),
			})
		}
		return out
	}
	var he *echo.HTTPError
	if errors.As(err, &he) {
		return []ValidationError{{Code: "ERR_UNKNOWN", Message: fmt.Sprintf("%v", he.Message)}}
	}
	return []ValidationError{{Code: "ERR_UNKNOWN", Message: err.Error()}}
}

func errorMessage(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "datetime":
		return fmt.Sprintf("%s must be a date formatted as YYYY-MM-DD", field)
	case "gte":
		return fmt.Sprintf("%s must be greater than or equal to %s", field, fe.Param())
	case "lte":
		return fmt.Sprintf("%s must be less than or equal to %s", field, fe.Param())
	default:
		return fmt.Sprintf("%s failed validation: %s", field, fe.Tag())
	}
}

func splitSymbols(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.ToUpper(strings.TrimSpace(p)); p != "" {
			out = append(out, p)
		}
	}
	return out
}
