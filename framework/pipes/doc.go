// Package pipes provides the built-in parameter pipes.
package pipes
