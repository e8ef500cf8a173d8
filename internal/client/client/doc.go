// Package client contains the transport and storage building blocks of the
// savethatagain CLI.
//
// # Overview
//
//  1. Client is the API contract the CLI services use. HTTPClient implements
//     it over the server's JSON API and attaches the bearer token set with
//     SetToken.
//  2. InitDatabase and RunMigrations open the local SQLite database holding
//     the session and the clip cache.
//
// # Error Handling
//
// Transport failures wrap ErrUnavailable, to be matched with errors.Is. Every
// non-2xx answer is an *APIError carrying the server's message; a 401 answer
// additionally matches ErrUnauthorized.
package client
