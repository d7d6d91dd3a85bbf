package http

import (
	"context"
	"net/http"

	"github.com/km-arc/go-nest/framework/container"
	"github.com/km-arc/go-nest/framework/meta"
)

// ArgumentsHost gives filters access to the transport objects.
type ArgumentsHost interface {
	SwitchToHTTP() HTTPArgumentsHost
	Type() string
}

// HTTPArgumentsHost exposes the request, the response and the next delegate.
type HTTPArgumentsHost interface {
	Request() *Request
	Response() *Response
	Next() http.Handler
}

// ExecutionContext is the read-only per-request view handed to guards,
// interceptors and filters.
type ExecutionContext interface {
	ArgumentsHost

	// Class is the controller class handling the request.
	Class() *container.Class

	// Handler identifies the handler method; it is also the metadata
	// target for handler-level SetMetadata values.
	Handler() meta.Method

	// Context is the request context.
	Context() context.Context

	// RequestID is a per-request identifier.
	RequestID() string
}

type executionContext struct {
	ctx       context.Context
	class     *container.Class
	handler   meta.Method
	req       *Request
	res       *Response
	next      http.Handler
	requestID string
}

// NewExecutionContext builds the context for one request. It is immutable
// once built.
func NewExecutionContext(ctx context.Context, class *container.Class, handler meta.Method, req *Request, res *Response, next http.Handler, requestID string) ExecutionContext {
	return &executionContext{
		ctx:       ctx,
		class:     class,
		handler:   handler,
		req:       req,
		res:       res,
		next:      next,
		requestID: requestID,
	}
}

func (c *executionContext) Class() *container.Class         { return c.class }
func (c *executionContext) Handler() meta.Method            { return c.handler }
func (c *executionContext) Context() context.Context        { return c.ctx }
func (c *executionContext) RequestID() string               { return c.requestID }
func (c *executionContext) Type() string                    { return "http" }
func (c *executionContext) SwitchToHTTP() HTTPArgumentsHost { return c }
func (c *executionContext) Request() *Request               { return c.req }
func (c *executionContext) Response() *Response             { return c.res }

func (c *executionContext) Next() http.Handler {
	if c.next == nil {
		return http.HandlerFunc(func(http.ResponseWriter, *http.Request) {})
	}
	return c.next
}
