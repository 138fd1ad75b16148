package demo

import (
	"github.com/MINAqwq/LibWebli/internal/message"
	"github.com/MINAqwq/LibWebli/internal/router"
)

const (
	// HeaderToken carries the admin token checked by the /admin guard.
	HeaderToken = "Token"

	// DefaultAdminToken is accepted when Options.AdminToken is empty.
	DefaultAdminToken = "$1234%"

	// DefaultUnauthorizedPage is loaded from storage for /static/unauthorized.
	DefaultUnauthorizedPage = "err/unauthorized.html"

	contentTypeHTML = "text/html"
)

// Options configures the demo routes.
type Options struct {
	AdminToken       string
	UnauthorizedPage string
	// ServiceVersion is reported by GET /info.
	ServiceVersion string
}

// App bundles the demo routes and the chat room state.
type App struct {
	opts Options
	chat *Chat
}

// New creates the demo application.
func New(opts Options) *App {
	if opts.AdminToken == "" {
		opts.AdminToken = DefaultAdminToken
	}
	if opts.UnauthorizedPage == "" {
		opts.UnauthorizedPage = DefaultUnauthorizedPage
	}
	return &App{opts: opts, chat: NewChat()}
}

// Chat returns the chat room served on /ws/chat.
func (a *App) Chat() *Chat {
	return a.chat
}

// Router builds the route table:
//
//	GET /                     landing page
//	GET /admin                guarded by the Token header
//	GET /info                 server info as JSON
//	GET /echo                 query parameters as JSON
//	GET /v1/version           "api v1"
//	GET /v2/version           "api v2"
//	GET /static/unauthorized  page loaded from storage
//	GET /chat                 chat client page
//	GET /ws/chat?name=        chat WebSocket endpoint
func (a *App) Router() *router.Router {
	r := router.New()

	r.Get("/", html("<h1>Hallu</h1><p>Das ist eine coole seite</p>"))
	r.Get("/admin", a.RequireToken, html("<h1>Hallu</h1><p>Das hier ist die Admin seite :)</p>"))
	r.Get("/info", a.info)
	r.Get("/echo", echo)
	r.Get("/static/unauthorized", func(req *message.Request, resp *message.Response) router.Outcome {
		return router.FromStorage(a.opts.UnauthorizedPage, contentTypeHTML)
	})
	r.Get("/chat", html(chatPage))
	r.Get("/ws/chat", a.chat.Handle)

	v1 := router.New()
	v1.Get("/version", text("api v1"))
	v2 := router.New()
	v2.Get("/version", text("api v2"))
	r.Group("/v1", v1)
	r.Group("/v2", v2)

	return r
}

// RequireToken ends the chain with 401 unless the Token header matches.
func (a *App) RequireToken(req *message.Request, resp *message.Response) router.Outcome {
	token := req.GetHeader(HeaderToken)
	if token == "" || token != a.opts.AdminToken {
		return router.Unauthorized()
	}
	return router.Next()
}

func (a *App) info(req *message.Request, resp *message.Response) router.Outcome {
	data := map[string]any{"version": 1, "server": "webli"}
	if a.opts.ServiceVersion != "" {
		data["build"] = a.opts.ServiceVersion
	}
	return jsonBody(resp, data)
}

func echo(req *message.Request, resp *message.Response) router.Outcome {
	return jsonBody(resp, map[string]any{"get": req.Query()})
}

func jsonBody(resp *message.Response, v any) router.Outcome {
	if err := resp.SetBodyJSON(v); err != nil {
		return router.Respond(message.NewResponse(message.StatusInternalServerError, nil, nil))
	}
	return router.Next()
}

func html(body string) router.Handler {
	return func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetHeader(message.HeaderContentType, contentTypeHTML)
		resp.SetBodyString(body)
		return router.Next()
	}
}

func text(body string) router.Handler {
	return func(req *message.Request, resp *message.Response) router.Outcome {
		resp.SetBodyString(body)
		return router.Next()
	}
}
