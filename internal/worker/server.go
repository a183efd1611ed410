// Package worker serves the background handler over HTTP so push and click
// events can reach the device while no interactive session is running.
package worker

import (
	"context"
	"errors"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog"

	"github.com/colonyops/herald/internal/core/intake"
	"github.com/colonyops/herald/internal/core/logging"
	"github.com/colonyops/herald/internal/core/notify"
)

const bodyLimit = 256 * 1024

// Server exposes an intake.Background.
type Server struct {
	app    *fiber.App
	bg     *intake.Background
	reg    intake.Registration
	logger zerolog.Logger
}

// New creates the worker server for registration reg.
func New(bg *intake.Background, reg intake.Registration) *Server {
	s := &Server{
		bg:     bg,
		reg:    normalizeRegistration(reg),
		logger: logging.Component("worker"),
	}

	s.app = fiber.New(fiber.Config{
		AppName:               "herald-worker",
		BodyLimit:             bodyLimit,
		DisableStartupMessage: true,
		ErrorHandler:          s.handleError,
	})
	s.registerRoutes()
	return s
}

// App returns the underlying fiber app.
func (s *Server) App() *fiber.App {
	return s.app
}

func (s *Server) registerRoutes() {
	s.app.Get("/healthz", s.health)

	script := s.app.Group(s.reg.ScriptPath)
	script.Get("/", s.describe)
	script.Post("/push", s.push)
	script.Post("/notificationclick", s.click)
}

// Listen serves on addr until ctx is cancelled.
func (s *Server) Listen(ctx context.Context, addr string) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info().Str("addr", addr).Str("script", s.reg.ScriptPath).Msg("worker listening")
		errCh <- s.app.Listen(addr)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		if err := s.app.Shutdown(); err != nil {
			return err
		}
		return <-errCh
	}
}

type clickRequest struct {
	Tag    string         `json:"tag"`
	Action string         `json:"action"`
	Data   map[string]any `json:"data"`
}

func (s *Server) health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

func (s *Server) describe(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"scriptPath": s.reg.ScriptPath,
		"scope":      s.reg.Scope,
	})
}

func (s *Server) push(c *fiber.Ctx) error {
	p := notify.ParsePayload(c.Body())

	req, err := s.bg.HandlePush(c.UserContext(), p)
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.Status(fiber.StatusAccepted).JSON(req)
}

func (s *Server) click(c *fiber.Ctx) error {
	var in clickRequest
	if err := c.BodyParser(&in); err != nil {
		return fiber.NewError(fiber.StatusBadRequest, "invalid click body")
	}

	outcome, err := s.bg.HandleClick(c.UserContext(), intake.Click{
		Tag:    in.Tag,
		Action: in.Action,
		Data:   in.Data,
	})
	if err != nil {
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}
	return c.JSON(fiber.Map{"outcome": outcome})
}

func (s *Server) handleError(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
	}
	if code >= fiber.StatusInternalServerError {
		s.logger.Error().Err(err).Str("path", c.Path()).Msg("worker request failed")
	}
	return c.Status(code).JSON(fiber.Map{"message": err.Error()})
}

func normalizeRegistration(reg intake.Registration) intake.Registration {
	def := intake.DefaultRegistration()
	if reg.ScriptPath == "" {
		reg.ScriptPath = def.ScriptPath
	}
	if reg.Scope == "" {
		reg.Scope = def.Scope
	}
	if !strings.HasPrefix(reg.ScriptPath, "/") {
		reg.ScriptPath = "/" + reg.ScriptPath
	}
	return reg
}
