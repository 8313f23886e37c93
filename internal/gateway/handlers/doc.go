// Package handlers implements the gateway's HTTP routes: signup and login
// with account lockout, and the document routes proxied to the document
// service.
package handlers
