package httpapi

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/weather-chat/internal/chat"
	"github.com/i474232898/weather-chat/internal/completion"
	"github.com/i474232898/weather-chat/internal/store"
)

// SessionCookie carries the chat session id.
const SessionCookie = "wx_session"

var validate = validator.New()

// ErrorHandler is the centralized error response used by the app.
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

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, sessions *store.MemoryStore, ctrl *chat.Controller, completer completion.Completer) {
	h := &handlers{sessions: sessions, ctrl: ctrl, completer: completer}

	api := app.Group("/api")
	api.Post("/chat", h.chat)
	api.Get("/session", h.getSession)
	api.Delete("/session", h.deleteSession)
	api.Post("/session/messages", h.submit)
}

type handlers struct {
	sessions  *store.MemoryStore
	ctrl      *chat.Controller
	completer completion.Completer
}

// chatRequest is the body of the raw completion endpoint.
type chatRequest struct {
	Prompt string `json:"prompt" validate:"required"`
}

func (h *handlers) chat(c *fiber.Ctx) error {
	var req chatRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	text, err := h.completer.Complete(c.UserContext(), req.Prompt)
	if err == nil && text == "" {
		err = completion.ErrEmptyResponse
	}
	if err != nil {
		log.Error().Err(err).Msg("completion proxy failed")
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error":   "Failed to process request",
			"details": err.Error(),
		})
	}

	return c.JSON(fiber.Map{"response": text})
}

// submitRequest is one user utterance plus the optional client position.
type submitRequest struct {
	Message        string          `json:"message" validate:"required"`
	ClientLocation *clientLocation `json:"clientLocation,omitempty" validate:"omitempty"`
}

type clientLocation struct {
	City   string `json:"city" validate:"required"`
	Region string `json:"region"`
}

func (h *handlers) submit(c *fiber.Ctx) error {
	var req submitRequest
	if err := c.BodyParser(&req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}
	if err := validate.Struct(req); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	}

	sess := h.session(c)
	if req.ClientLocation != nil {
		sess.SetFallbackLocation(req.ClientLocation.City, req.ClientLocation.Region)
	}

	res, err := h.ctrl.Submit(c.UserContext(), sess, req.Message)
	switch {
	case errors.Is(err, chat.ErrEmptyInput):
		return fiber.NewError(fiber.StatusBadRequest, err.Error())
	case errors.Is(err, chat.ErrBusy):
		return fiber.NewError(fiber.StatusConflict, err.Error())
	case err != nil:
		return fiber.NewError(fiber.StatusInternalServerError, "failed to process message")
	}

	return c.JSON(fiber.Map{
		"session":      sess.ID,
		"state":        res.State,
		"weatherState": res.WeatherState,
		"location":     res.Location,
		"messages":     toMessageViews(res.Messages),
	})
}

func (h *handlers) getSession(c *fiber.Ctx) error {
	sess, err := h.sessions.Get(c.Cookies(SessionCookie))
	if errors.Is(err, store.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	if err != nil {
		return err
	}
	snap := sess.Snapshot()

	recent := make([]string, 0, len(snap.WeatherContext))
	for _, e := range snap.WeatherContext {
		recent = append(recent, e.Location)
	}

	return c.JSON(fiber.Map{
		"id":               snap.ID,
		"state":            snap.State,
		"busy":             snap.Busy,
		"context":          snap.Context,
		"recentLocations":  recent,
		"fallbackLocation": snap.FallbackLocation,
		"messages":         toMessageViews(snap.Messages),
	})
}

func (h *handlers) deleteSession(c *fiber.Ctx) error {
	if id := c.Cookies(SessionCookie); id != "" {
		if err := h.sessions.Delete(id); err != nil && !errors.Is(err, store.ErrNotFound) {
			return err
		}
	}
	c.ClearCookie(SessionCookie)
	return c.SendStatus(fiber.StatusNoContent)
}

// session returns the caller's session, creating one (and its cookie) when
// the request carries no known id.
func (h *handlers) session(c *fiber.Ctx) *chat.Session {
	id := c.Cookies(SessionCookie)
	sess := h.sessions.GetOrCreate(id)
	if sess.ID != id {
		c.Cookie(&fiber.Cookie{
			Name:     SessionCookie,
			Value:    sess.ID,
			Path:     "/",
			HTTPOnly: true,
			SameSite: fiber.CookieSameSiteLaxMode,
		})
	}
	return sess
}

// messageView adds the rendered pictogram URL to weather messages.
type messageView struct {
	chat.Message
	IconURL string `json:"iconUrl,omitempty"`
}

func toMessageViews(msgs []chat.Message) []messageView {
	out := make([]messageView, 0, len(msgs))
	for _, m := range msgs {
		v := messageView{Message: m}
		if m.Weather != nil {
			v.IconURL = m.Weather.IconURL()
		}
		out = append(out, v)
	}
	return out
}
