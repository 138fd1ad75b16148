// Package webclient is a small HTTPS client built on the webli message
// model. It opens one TLS connection per request and reads the response
// until the server closes the connection or the buffer is full.
package webclient
