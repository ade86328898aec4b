package http

import (
	"fmt"
	"strings"
	"time"

	"chess/internal/server/core"
	"chess/internal/server/processor"
	"chess/internal/server/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
)

const rateLimitRate = 10 // req/sec

// HTTPHandler handles HTTP requests and routes them to the processor
type HTTPHandler struct {
	proc *processor.Processor
	svc  *service.Service
}

func NewHTTPHandler(proc *processor.Processor, svc *service.Service) *HTTPHandler {
	return &HTTPHandler{proc: proc, svc: svc}
}

func NewFiberApp(proc *processor.Processor, svc *service.Service, devMode bool) *fiber.App {
	// Create handler
	h := NewHTTPHandler(proc, svc)

	// Initialize Fiber app
	app := fiber.New(fiber.Config{
		ErrorHandler: customErrorHandler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	})

	// Global middleware (order matters)
	app.Use(recover.New())
	app.Use(logger.New(logger.Config{
		Format: "${time} ${status} ${method} ${path} ${latency}\n",
	}))
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,DELETE,OPTIONS",
		AllowHeaders: "Origin,Content-Type,Accept,Authorization",
	}))

	// Health check (no rate limit)
	app.Get("/health", h.Health)

	// API v1 routes
	api := app.Group("/api/v1")

	maxReq := rateLimitRate
	if devMode {
		maxReq = rateLimitRate * 2
	}
	api.Use(limiter.New(limiter.Config{
		Max:        maxReq,
		Expiration: 1 * time.Second,
		KeyGenerator: func(c *fiber.Ctx) string {
			if xff := c.Get("X-Forwarded-For"); xff != "" {
				if idx := strings.Index(xff, ","); idx != -1 {
					return strings.TrimSpace(xff[:idx])
				}
				return xff
			}
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(core.ErrorResponse{
				Error:   "rate limit exceeded",
				Code:    core.ErrRateLimitExceeded,
				Details: fmt.Sprintf("%d requests per second allowed", maxReq),
			})
		},
	}))

	// Content-Type validation for POST requests
	api.Use(contentTypeValidator)

	// Middleware validation for sanitization
	api.Use(validationMiddleware)

	// Session token guards every route that changes a session
	sessionAuth := SessionAuthRequired(svc.ValidateToken)

	api.Post("/sessions", h.CreateSession)
	api.Get("/sessions/:sessionId", requireSessionID, h.GetSession)
	api.Delete("/sessions/:sessionId", requireSessionID, sessionAuth, h.DeleteSession)
	api.Post("/sessions/:sessionId/utterances", requireSessionID, sessionAuth, h.Utterance)
	api.Post("/sessions/:sessionId/opponent-moves", requireSessionID, sessionAuth, h.OpponentMove)
	api.Post("/sessions/:sessionId/undo", requireSessionID, sessionAuth, h.Undo)
	api.Get("/sessions/:sessionId/board", requireSessionID, h.GetBoard)
	api.Post("/parse", h.Parse)

	return app
}

// contentTypeValidator ensures POST requests have application/json
func contentTypeValidator(c *fiber.Ctx) error {
	if c.Method() == fiber.MethodPost {
		contentType := c.Get("Content-Type")
		if contentType != "application/json" && contentType != "" {
			return c.Status(fiber.StatusUnsupportedMediaType).JSON(core.ErrorResponse{
				Error:   "unsupported media type",
				Code:    core.ErrInvalidContent,
				Details: "Content-Type must be application/json",
			})
		}
	}
	return c.Next()
}

// requireSessionID rejects path IDs that are not UUIDs
func requireSessionID(c *fiber.Ctx) error {
	if !isValidUUID(c.Params("sessionId")) {
		return c.Status(fiber.StatusBadRequest).JSON(core.ErrorResponse{
			Error:   "invalid session ID format",
			Code:    core.ErrInvalidRequest,
			Details: "session ID must be a valid UUID",
		})
	}
	return c.Next()
}

// customErrorHandler provides consistent error responses
func customErrorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	response := core.ErrorResponse{
		Error: "internal server error",
		Code:  core.ErrInternalError,
	}

	// Check if it's a Fiber error
	if e, ok := err.(*fiber.Error); ok {
		code = e.Code
		response.Error = e.Message

		// Map HTTP status to error codes
		switch code {
		case fiber.StatusNotFound:
			response.Code = core.ErrSessionNotFound
		case fiber.StatusBadRequest:
			response.Code = core.ErrInvalidRequest
		case fiber.StatusTooManyRequests:
			response.Code = core.ErrRateLimitExceeded
		}
	}

	return c.Status(code).JSON(response)
}

// statusFor maps processor error codes to HTTP status
func statusFor(code string) int {
	switch code {
	case core.ErrSessionNotFound:
		return fiber.StatusNotFound
	case core.ErrNotUserTurn, core.ErrNotOpponentTurn, core.ErrGameOver:
		return fiber.StatusConflict
	case core.ErrUnsupportedMove:
		return fiber.StatusUnprocessableEntity
	case core.ErrResourceLimit:
		return fiber.StatusServiceUnavailable
	case core.ErrInternalError:
		return fiber.StatusInternalServerError
	default:
		return fiber.StatusBadRequest
	}
}

// validatedBody returns the body parsed by validationMiddleware
func validatedBody[T any](c *fiber.Ctx) (T, error) {
	var zero T

	// Ensure middleware validation ran
	validated, ok := c.Locals("validated").(bool)
	if !ok || !validated {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation bypass detected")
	}

	body, ok := c.Locals("validatedBody").(*T)
	if !ok || body == nil {
		return zero, fiber.NewError(fiber.StatusInternalServerError, "validation data missing")
	}
	return *body, nil
}

// respond writes a processor response with the given success status
func respond(c *fiber.Ctx, resp processor.ProcessorResponse, status int) error {
	if !resp.Success {
		return c.Status(statusFor(resp.Error.Code)).JSON(resp.Error)
	}
	if resp.Data == nil {
		return c.SendStatus(fiber.StatusNoContent)
	}
	return c.Status(status).JSON(resp.Data)
}

// Health check endpoint with storage status
func (h *HTTPHandler) Health(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"status":   "healthy",
		"time":     time.Now().Unix(),
		"storage":  h.svc.GetStorageHealth(),
		"sessions": h.svc.SessionCount(),
	})
}

// CreateSession starts a conversation and returns its token
func (h *HTTPHandler) CreateSession(c *fiber.Ctx) error {
	req, err := validatedBody[core.CreateSessionRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewCreateSessionCommand(req))
	return respond(c, resp, fiber.StatusCreated)
}

// GetSession retrieves current session state
func (h *HTTPHandler) GetSession(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewGetSessionCommand(c.Params("sessionId")))
	return respond(c, resp, fiber.StatusOK)
}

// DeleteSession ends a session
func (h *HTTPHandler) DeleteSession(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewDeleteSessionCommand(c.Params("sessionId")))
	return respond(c, resp, fiber.StatusNoContent)
}

// Utterance submits one transcript for the current conversation step
func (h *HTTPHandler) Utterance(c *fiber.Ctx) error {
	req, err := validatedBody[core.UtteranceRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewUtteranceCommand(c.Params("sessionId"), req))
	return respond(c, resp, fiber.StatusOK)
}

// OpponentMove submits the move chosen for the opponent
func (h *HTTPHandler) OpponentMove(c *fiber.Ctx) error {
	req, err := validatedBody[core.OpponentMoveRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewOpponentMoveCommand(c.Params("sessionId"), req))
	return respond(c, resp, fiber.StatusOK)
}

// Undo takes back one or more moves
func (h *HTTPHandler) Undo(c *fiber.Ctx) error {
	req, err := validatedBody[core.UndoRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewUndoCommand(c.Params("sessionId"), req))
	return respond(c, resp, fiber.StatusOK)
}

// GetBoard returns ASCII representation of the board
func (h *HTTPHandler) GetBoard(c *fiber.Ctx) error {
	resp := h.proc.Execute(c.UserContext(), processor.NewGetBoardCommand(c.Params("sessionId")))
	return respond(c, resp, fiber.StatusOK)
}

// Parse runs a transcript parser without a session
func (h *HTTPHandler) Parse(c *fiber.Ctx) error {
	req, err := validatedBody[core.ParseRequest](c)
	if err != nil {
		return err
	}
	resp := h.proc.Execute(c.UserContext(), processor.NewParseCommand(req))
	return respond(c, resp, fiber.StatusOK)
}
