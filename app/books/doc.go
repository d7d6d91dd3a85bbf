// Package books is the demo feature module: a CRUD controller for books
// guarded by role, validated with rule strings and cached on reads.
//
//	curl -H "x-role: user" http://localhost:3000/books/1
//	curl -X POST -H "x-role: admin" -H "Content-Type: application/json" \
//	     -d '{"title":"New Book"}' http://localhost:3000/books
package books
