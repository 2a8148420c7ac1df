// Package service coordinates shared resources for the demo program.
//
// Registry keeps one owning handle per named resource (a gRPC target, a
// producer) and gives every borrower its own clone, so the resource is
// opened once and closed after the last borrower and the registry have
// both let go.
package service
