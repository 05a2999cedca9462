package response

import "github.com/gofiber/fiber/v2"

// Error codes
const (
	CodeInvalidArgument    = "INVALID_ARGUMENT"
	CodeFailedPrecondition = "FAILED_PRECONDITION"
	CodeInternal           = "INTERNAL"
	CodeDeadlineExceeded   = "DEADLINE_EXCEEDED"
	CodeUnknown            = "UNKNOWN"
	CodeNotFound           = "NOT_FOUND"
	CodeRateLimited        = "RATE_LIMITED"
)

type ErrorResponse struct {
	Error ErrorDetail `json:"error"`
}

type ErrorDetail struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Details interface{} `json:"details,omitempty"`
}

func Error(c *fiber.Ctx, status int, code, message string, details interface{}) error {
	return c.Status(status).JSON(ErrorResponse{
		Error: ErrorDetail{
			Code:    code,
			Message: message,
			Details: details,
		},
	})
}

// InvalidArgument reports a missing or malformed request field.
func InvalidArgument(c *fiber.Ctx, message string, details interface{}) error {
	return Error(c, fiber.StatusBadRequest, CodeInvalidArgument, message, details)
}

// FailedPrecondition reports missing required configuration, such as
// the external API credential.
func FailedPrecondition(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusPreconditionFailed, CodeFailedPrecondition, message, nil)
}

// Internal reports an upstream external-API failure, carrying the
// upstream status and message.
func Internal(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusBadGateway, CodeInternal, message, nil)
}

// DeadlineExceeded reports a caller-imposed deadline running out.
func DeadlineExceeded(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusGatewayTimeout, CodeDeadlineExceeded, message, nil)
}

// Unknown reports anything uncategorized.
func Unknown(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusInternalServerError, CodeUnknown, message, nil)
}

func NotFound(c *fiber.Ctx, message string) error {
	return Error(c, fiber.StatusNotFound, CodeNotFound, message, nil)
}

func RateLimited(c *fiber.Ctx) error {
	return Error(c, fiber.StatusTooManyRequests, CodeRateLimited, "Rate limit exceeded", nil)
}

func OK(c *fiber.Ctx, data interface{}) error {
	return c.JSON(data)
}

func Created(c *fiber.Ctx, data interface{}) error {
	return c.Status(fiber.StatusCreated).JSON(data)
}
