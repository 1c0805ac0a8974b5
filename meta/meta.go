// Package meta provides functionality for managing request metadata through context.
package meta

import "context"

// ContextKey is a type for keys used in context values for metadata.
type ContextKey string

const (
	// TraceID represents a unique identifier for tracing requests across services.
	TraceID ContextKey = "trace_id"

	// RequestUserID identifies the user making the request.
	RequestUserID ContextKey = "request_user_id"

	// RequestUserRole indicates the current role of the user making the request.
	RequestUserRole ContextKey = "request_user_role"

	// IPAddress contains the client's IP address.
	IPAddress ContextKey = "ip_address"

	// UserAgent contains the user agent string from the request.
	UserAgent ContextKey = "user_agent"

	// RemoteAddr contains the network address that sent the request.
	RemoteAddr ContextKey = "remote_addr"

	// ServiceName identifies the name of current running service.
	ServiceName ContextKey = "service_name"

	// ServiceVersion indicates the version of the service.
	ServiceVersion ContextKey = "service_version"

	// AcceptLanguage indicates the natural language and locale that the client prefers.
	AcceptLanguage ContextKey = "accept-language"
)

// contextKeys lists every key handled by ExtractMetaFromContext.
var contextKeys = []ContextKey{
	TraceID,
	RequestUserID,
	RequestUserRole,
	IPAddress,
	UserAgent,
	RemoteAddr,
	ServiceName,
	ServiceVersion,
	AcceptLanguage,
}

// InjectMetaToContext adds metadata from the provided map to the context.
// It only adds values that are not empty strings and returns a new context
// with the added values.
func InjectMetaToContext(ctx context.Context, data map[ContextKey]string) context.Context {
	for k, v := range data {
		if v != "" {
			ctx = context.WithValue(ctx, k, v) //nolint:fatcontext // allow due to finite number of keys
		}
	}
	return ctx
}

// ExtractMetaFromContext extracts all metadata from the provided context.
// Only non-empty string values are included in the returned map.
func ExtractMetaFromContext(ctx context.Context) map[ContextKey]string {
	data := make(map[ContextKey]string)
	for _, k := range contextKeys {
		if v, ok := ctx.Value(k).(string); ok && v != "" {
			data[k] = v
		}
	}
	return data
}

// Find returns the value stored in the context for the given key,
// or an empty string when the key is absent.
func Find(ctx context.Context, key ContextKey) string {
	if v, ok := ctx.Value(key).(string); ok {
		return v
	}
	return ""
}
