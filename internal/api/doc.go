// Package api contains the HTTP handlers for the flashdeck REST API.
//
// Handlers are thin adapters between HTTP and the service/store layers:
// they decode and validate request bodies, invoke the service or repository,
// translate domain and store errors into status codes, and write JSON
// responses through the shared helpers. No scheduling or storage logic
// lives here.
package api
