// Package harness provides a test server for exercising an http.Handler's
// routing and handler logic without binding a real socket, while still
// supporting real-socket mode when a test needs it.
//
// Create a Server around the handler under test, build requests with the
// verb methods, and dispatch them with Do:
//
//	server, err := harness.New(myHandler)
//	if err != nil {
//		t.Fatal(err)
//	}
//	defer server.Close()
//
//	resp, err := server.Post("/users").
//		JSON(map[string]string{"username": "Terrance Pencilworth"}).
//		ExpectStatus(201).
//		Do()
//
// The server keeps a browser-like cookie jar shared across its requests.
// Cookie saving is off by default; enable it server-wide with
// Config.SaveCookies or per request with Request.SaveCookies.
package harness
