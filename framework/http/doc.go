// Package http holds the transport-facing types of the request pipeline:
// the request and response abstractions, the exception family, the
// execution context and the pipe, guard, interceptor and filter contracts.
//
// Import it under an alias to avoid clashing with net/http:
//
//	import gohttp "github.com/km-arc/go-nest/framework/http"
//
// # Request
//
//	req := gohttp.NewRequest(r)
//
//	req.Params()       // route params   map[string]any
//	req.QueryParams()  // query string   map[string]any
//	req.Headers()      // lower-cased    map[string]any
//	req.Cookies()      //                map[string]any
//	body, err := req.Body()   // decoded JSON / form, read once, capped at 32 MB
//
//	token := req.BearerToken()
//	ip    := req.IP()
//
// # Response
//
//	res := gohttp.NewResponse(w)
//
//	res.Status(201).Send(book)    // JSON with the pending status
//	res.JSON(200, data)           // raw JSON with status
//	res.Exception(gohttp.NotFound("Book with id 7 not found"))
//
// Handlers that manage their own output write to res.Raw(); the pipeline
// then sees res.Written() and leaves the response alone.
//
// # Exceptions
//
//	return nil, gohttp.BadRequest("Validation failed: param \"id\" must be an integer")
//
// renders as
//
//	{"statusCode": 400, "message": "Validation failed: ...", "error": "BadRequestException"}
package http
