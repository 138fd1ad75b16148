// Package demo is a small application built on the webli router: an HTML
// landing page, a token guarded admin page, JSON echo endpoints, versioned
// route groups, a page served from storage, and a WebSocket chat room.
//
// The "webli serve" command mounts it by default.
package demo
