// Package httpserver exposes the storage gateway as a JSON HTTP API.
//
// The server is thin by design: handlers validate input, invoke one storage
// client operation, and render the result. All storage logic lives in the
// storage package.
//
// # Routes
//
//	GET    /api/customers          list customer records
//	POST   /api/customers          add a customer record
//	GET    /api/products           list product records
//	POST   /api/products           add a product record
//	GET    /api/images             list public image URLs
//	POST   /api/images/{name}      upload an image (body is the content,
//	                               Content-Type header is stored with it)
//	GET    /api/queue              peek queued messages (?max=N)
//	POST   /api/queue              enqueue a message
//	DELETE /api/queue              dequeue and delete messages (?count=N)
//	GET    /api/contracts          list contract file names
//	PUT    /api/contracts/{name}   upload a contract file
//	GET    /api/contracts/{name}   download a contract file
//
// Diagnostic endpoints: /livez, /readyz, /drain, /undrain, and optional
// pprof under /debug.
//
// # Error mapping
//
// Storage sentinels map onto status codes: ErrNotFound becomes 404,
// ErrConflict 409, ErrUnavailable 502. Validation failures are 400.
package httpserver
