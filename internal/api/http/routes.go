package httpapi

import (
	"bytes"
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/basicauth"

	"github.com/i474232898/activity-heatmap/internal/auth"
	"github.com/i474232898/activity-heatmap/internal/heatmap"
	"github.com/i474232898/activity-heatmap/internal/render"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// datekey accepts exactly the keys the grid produces, for any year.
	_ = v.RegisterValidation("datekey", func(fl validator.FieldLevel) bool {
		_, err := heatmap.ParseDateKey(fl.Field().String())
		return err == nil
	})
	return v
}

// RegisterRoutes wires the HTML page and the JSON API into the Fiber app.
// Clicks require basic auth when creds is non-nil.
func RegisterRoutes(app *fiber.App, widget *heatmap.Widget, creds *auth.Credentials) {
	guard := requireAuth(creds)

	// HTML page and its form actions. Only the POST routes change state.
	app.Get("/", func(c *fiber.Ctx) error {
		var buf bytes.Buffer
		if err := render.Page(&buf, widget.View()); err != nil {
			return fiber.NewError(fiber.StatusInternalServerError, "failed to render heatmap")
		}
		c.Type("html")
		return c.Send(buf.Bytes())
	})

	app.Post("/cells/:date/click", guard, func(c *fiber.Ctx) error {
		date, err := parseCellDate(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		widget.RecordClick(date)
		return c.Redirect("/", fiber.StatusSeeOther)
	})

	app.Post("/year/prev", func(c *fiber.Ctx) error {
		widget.PrevYear()
		return c.Redirect("/", fiber.StatusSeeOther)
	})

	app.Post("/year/next", func(c *fiber.Ctx) error {
		widget.NextYear()
		return c.Redirect("/", fiber.StatusSeeOther)
	})

	app.Post("/year", func(c *fiber.Ctx) error {
		if err := widget.SelectYear(c.FormValue("year")); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.Redirect("/", fiber.StatusSeeOther)
	})

	// JSON API.
	v1 := app.Group("/api/v1")

	v1.Get("/heatmap", func(c *fiber.Ctx) error {
		return c.JSON(widget.View())
	})

	v1.Get("/years", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"selected": widget.Year(),
			"years":    widget.AvailableYears(),
		})
	})

	v1.Put("/year", func(c *fiber.Ctx) error {
		var req yearRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, heatmap.ErrInvalidYear.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		if err := widget.SetYear(*req.Year); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		return c.JSON(fiber.Map{"year": widget.Year()})
	})

	v1.Post("/year/prev", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"year": widget.PrevYear()})
	})

	v1.Post("/year/next", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"year": widget.NextYear()})
	})

	v1.Post("/cells/:date/click", guard, func(c *fiber.Ctx) error {
		date, err := parseCellDate(c.Params("date"))
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		level := widget.RecordClick(date)
		return c.JSON(clickResponse{
			Date:   date,
			Level:  level,
			Notice: widget.Notice(),
		})
	})

	v1.Put("/hover", func(c *fiber.Ctx) error {
		var req hoverRequest
		if err := c.BodyParser(&req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, "invalid hover request")
		}
		date, err := parseCellDate(req.Date)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		widget.Hover(date)
		return c.SendStatus(fiber.StatusNoContent)
	})

	v1.Delete("/hover", func(c *fiber.Ctx) error {
		widget.Leave()
		return c.SendStatus(fiber.StatusNoContent)
	})
}

// yearRequest is the body of a direct year selection.
type yearRequest struct {
	Year *int `json:"year" validate:"required"`
}

type hoverRequest struct {
	Date string `json:"date"`
}

type clickResponse struct {
	Date   heatmap.DateKey `json:"date"`
	Level  heatmap.Level   `json:"level"`
	Notice string          `json:"notice,omitempty"`
}

// cellDate holds a date-key taken from the path or a body.
type cellDate struct {
	Date string `validate:"required,datekey"`
}

func parseCellDate(raw string) (heatmap.DateKey, error) {
	if err := validate.Struct(cellDate{Date: raw}); err != nil {
		return "", errors.New("date must be a calendar date formatted as YYYY-MM-DD")
	}
	return heatmap.DateKey(raw), nil
}

// ErrorHandler renders every error as a JSON body with the matching status.
func ErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var e *fiber.Error
	if errors.As(err, &e) {
		code = e.Code
	}
	return c.Status(code).JSON(fiber.Map{
		"error":   true,
		"message": err.Error(),
	})
}

func requireAuth(creds *auth.Credentials) fiber.Handler {
	if creds == nil {
		return func(c *fiber.Ctx) error { return c.Next() }
	}
	return basicauth.New(basicauth.Config{
		Realm:      "Activity Heatmap",
		Authorizer: creds.Verify,
	})
}
