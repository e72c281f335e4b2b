// Package server exposes signal extraction over HTTP and WebSocket.
//
// The API mirrors what the plotting web client needs: it posts the message
// list it already holds together with the signal definitions being edited,
// and receives decoded traces back.
//
// # Endpoints
//
//	GET  /healthz           liveness and version
//	GET  /api/types         data type table, endianness labels and color palette
//	POST /api/extract       {messages, signals} -> {results}
//	POST /api/arbids        {messages} -> {arbids}
//	POST /api/payload-size  {messages, arbid} -> {arbid, bits}
//	POST /api/validate      {messages, signal} -> {valid, errors}
//	GET  /ws/extract        WebSocket, one request per text frame
//
// An invalid signal definition (missing arbid, startBit, dataType or
// endianness) fails the whole extract request with 422. Messages that cannot
// be decoded never fail a request; they are listed under "skipped" in the
// signal's result.
//
// # WebSocket Streaming
//
// Each request frame has the same shape as the POST /api/extract body. The
// server replies with one {"type":"result"} frame per signal, in request
// order, then a {"type":"done"} frame. Failures produce a single
// {"type":"error"} frame and the connection stays open.
//
// # Usage Example
//
//	srv, err := server.New(&server.Config{
//	    Port:      8080,
//	    LogLevel:  "info",
//	    Advertise: true,
//	})
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until SIGINT/SIGTERM or a listener error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// On SIGINT or SIGTERM the server stops the mDNS advertisement, stops
// accepting connections, lets in-flight HTTP requests finish, and sends a
// close frame to every open WebSocket.
package server
