// Package client assembles the dogwalk client from its configuration.
//
// # Overview
//
// New opens the local SQLite database and applies the embedded migrations,
// restores the saved session, and builds the request pipeline on top of it:
// an HTTP transport, the refresh coordinator, the request executor, the
// two-tier content cache and the application services.
//
// The durable cache keeps its ETag index in SQLite and its bytes in a
// blobstore.Store, either a directory under DataDir or an S3 bucket.
//
// Close releases the database. A Client is safe for concurrent use.
package client
