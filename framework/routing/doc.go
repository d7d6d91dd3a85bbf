// Package routing mounts controllers on a chi-backed router.
//
//	r := routing.New(routing.WithLogger(logger), routing.WithAccessLog())
//	err := routing.RegisterController(ctx, r, pipe, BooksControllerClass)
//	http.ListenAndServe(":3000", r)
//
// Route paths use ":name" parameters; they are mounted as chi "{name}"
// patterns and read back through chi's route context.
package routing
