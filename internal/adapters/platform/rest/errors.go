package rest

import (
	"context"
	stderrs "errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/olusolaa/gateway-sync/internal/errors"
)

// apiMessage is the error body both admin APIs return.
type apiMessage struct {
	Message string `json:"message"`
	Detail  string `json:"detail"`
	Name    string `json:"name"`
	Fields  any    `json:"fields"`
}

// HandleStatus maps a non-2xx response to an application error.
// subject names the entity addressed, e.g. "service 'orders'".
func HandleStatus(system, subject string, status int, body []byte) error {
	detail := responseDetail(body)
	base := fmt.Sprintf("%s returned %d for %s", system, status, subject)
	if detail != "" {
		base = fmt.Sprintf("%s: %s", base, detail)
	}

	var appErr *errors.AppError
	switch {
	case status == http.StatusNotFound:
		appErr = errors.New(errors.CodeNotFound, fmt.Sprintf("%s not found on %s", subject, system))
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		appErr = errors.NewUserFacing(errors.CodePlatformAuthError, base,
			fmt.Sprintf("Check the %s token in your configuration.", system))
	case status == http.StatusBadRequest || status == http.StatusConflict || status == http.StatusUnprocessableEntity:
		appErr = errors.NewUserFacing(errors.CodeValidation, base, "")
	case status == http.StatusRequestTimeout || status == http.StatusGatewayTimeout:
		appErr = errors.New(errors.CodeTimeout, base)
	case status == http.StatusTooManyRequests || status == http.StatusBadGateway || status == http.StatusServiceUnavailable:
		appErr = errors.New(errors.CodeConnection, base)
	default:
		appErr = errors.New(errors.CodePlatformAPIError, base)
	}
	return appErr.WithSystem(system, status)
}

// HandleTransportError classifies a request that never produced a response.
func HandleTransportError(ctx context.Context, system, subject string, err error) error {
	return classifyTransport(ctx, system, subject, err).WithSystem(system, 0)
}

func classifyTransport(ctx context.Context, system, subject string, err error) *errors.AppError {
	if ctx.Err() != nil {
		return errors.Wrap(ctx.Err(), errors.CodeTimeout,
			fmt.Sprintf("request to %s for %s canceled", system, subject))
	}
	if stderrs.Is(err, context.DeadlineExceeded) {
		return errors.Wrap(err, errors.CodeTimeout, fmt.Sprintf("request to %s for %s timed out", system, subject))
	}
	var netErr net.Error
	if stderrs.As(err, &netErr) && netErr.Timeout() {
		return errors.Wrap(err, errors.CodeTimeout, fmt.Sprintf("request to %s for %s timed out", system, subject))
	}
	return errors.WrapUserFacing(err, errors.CodeConnection,
		fmt.Sprintf("cannot reach %s while accessing %s", system, subject),
		fmt.Sprintf("Check that the %s URL is correct and reachable.", system))
}

func responseDetail(body []byte) string {
	if len(body) == 0 {
		return ""
	}
	var msg apiMessage
	if err := json.Unmarshal(body, &msg); err == nil {
		parts := make([]string, 0, 2)
		if msg.Message != "" {
			parts = append(parts, msg.Message)
		}
		if msg.Detail != "" {
			parts = append(parts, msg.Detail)
		}
		if msg.Fields != nil {
			if raw, err := json.Marshal(msg.Fields); err == nil {
				parts = append(parts, string(raw))
			}
		}
		if len(parts) > 0 {
			return strings.Join(parts, "; ")
		}
	}
	text := strings.TrimSpace(string(body))
	if len(text) > 200 {
		text = text[:200] + "..."
	}
	return text
}
