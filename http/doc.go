// Package http provides the HTTP API for the docstore service.
//
// It exposes a JSON REST API under /api/v2 for managing a folder hierarchy
// and the documents stored inside it:
//
//	GET    /api/v2/folders          full hierarchy as a nested tree
//	POST   /api/v2/folders          create a folder under a parent
//	PATCH  /api/v2/folders/{id}     rename a folder
//	DELETE /api/v2/folders/{id}     delete a folder and its subtree
//	POST   /api/v2/documents        upload a document (multipart, field "data")
//	GET    /api/v2/documents/{id}   download a document
//	PATCH  /api/v2/documents/{id}   rename a document
//	DELETE /api/v2/documents/{id}   delete a document
//
// Errors are returned as JSON objects with machine-readable error codes.
// Service errors map onto status codes in HandleError; handlers never leak
// raw database or storage errors to clients.
//
// # Usage
//
//	handlerCfg := http.HandlerConfig{MaxUploadSize: 32 << 20}
//	handler := http.NewHandler(&handlerCfg, service)
//	router := handler.Router()
//	http.ListenAndServe(":8080", router)
//
// The service parameter must implement the Service interface.
package http
