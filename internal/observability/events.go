package observability

// EventEnvelope wraps every event published to the broker.
type EventEnvelope struct {
	EventType string      `json:"event_type"`
	EventName string      `json:"event_name"`
	Payload   interface{} `json:"payload"`
}

// BuildHeaders assembles the correlation headers attached to every published
// event. Empty values are omitted.
func BuildHeaders(requestID, traceID, clientIP string) map[string]string {
	headers := map[string]string{}
	if requestID != "" {
		headers["x-request-id"] = requestID
	}
	if traceID != "" {
		headers["trace_id"] = traceID
	}
	if clientIP != "" {
		headers["x-client-ip"] = clientIP
	}
	return headers
}
