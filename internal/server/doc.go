// Package server implements the TLS listener and request dispatch of webli.
//
// Every accepted socket is served by its own goroutine: the TLS handshake
// runs first, then exactly one read of Config.ReadBufferSize bytes must
// hold the request. The request is parsed, resolved through a
// router.Router and passed down the matching handler chain. The first
// handler that returns a terminal router.Outcome decides the answer.
//
// # Outcomes
//
//   - Next: run the following handler; after the last one the shared
//     response is sent
//   - Respond: send the given response
//   - NotFound, BadRequest, Unauthorized: send a copy of the configured
//     default (see Defaults and WithDefault)
//   - FromStorage: send a file loaded through a storage.Loader
//   - UpgradeToWebSocket: send 101 Switching Protocols and run the
//     WebSocket frame loop on the same connection
//
// A request that fails to parse is answered with the BadRequest default.
// A route that does not exist gets the NotFound default. A panic in a
// handler is logged and answered with 500.
//
// After a plain HTTP answer the connection is closed; there is no
// keep-alive.
//
// # Usage Example
//
//	r := router.New()
//	r.Get("/", func(req *message.Request, resp *message.Response) router.Outcome {
//	    resp.SetBodyString("<h1>hello</h1>")
//	    return router.Next()
//	})
//
//	srv, err := server.New(&server.Config{
//	    Port:     8443,
//	    CertPath: "cert.pem",
//	    KeyPath:  "key.pem",
//	}, r)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
//	defer stop()
//	if err := srv.ListenAndServe(ctx); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Cancelling the context passed to Serve, or calling Shutdown:
//  1. Stops accepting new connections
//  2. Sends a Close frame on every WebSocket session
//  3. Closes the remaining sockets, unblocking pending reads
//  4. Waits for the workers to return
//
// # Thread Safety
//
// Handlers run concurrently, one goroutine per connection. The router must
// be fully registered before serving. MaxConns, when set, bounds the number
// of connections served at once.
package server
