package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"messaging-service/internal/authz"
	"messaging-service/internal/middleware"
	"messaging-service/internal/observability"
)

const requestIDContextKey = "request_id"

func actorFromContext(c *gin.Context) authz.Actor {
	return authz.Actor{
		UserID: c.GetInt(middleware.UserIDKey),
		Role:   c.GetString(middleware.UserRoleKey),
	}
}

func actorIDPtr(actor authz.Actor) *string {
	if actor.UserID == 0 {
		return nil
	}
	id := strconv.Itoa(actor.UserID)
	return &id
}

func requestIDFromContext(c *gin.Context) string {
	if val, ok := c.Get(requestIDContextKey); ok {
		if id, ok := val.(string); ok && id != "" {
			return id
		}
	}

	requestID := observability.RequestIDFromRequest(c.Request)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	c.Set(requestIDContextKey, requestID)
	return requestID
}

func (h *MessageHandler) publishMessageEvent(c *gin.Context, routingKey string, payload map[string]interface{}) {
	traceID := ""
	if spanCtx := trace.SpanContextFromContext(c.Request.Context()); spanCtx.IsValid() {
		traceID = spanCtx.TraceID().String()
	}

	_ = observability.PublishEvent(c.Request.Context(), routingKey, observability.EventEnvelope{
		EventType: "message_events",
		EventName: routingKey,
		Payload:   payload,
	}, observability.BuildHeaders(requestIDFromContext(c), traceID, observability.IPFromRequest(c.Request)))
}
