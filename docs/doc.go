// Package docs provides generated OpenAPI documentation.
//
// Docuscribe API
//
//	@title			Docuscribe API
//	@version		1.0
//	@description	Word-addressed retrieval over large tokenized documents: index, single-range and multi-range fetches.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/jackzampolin/docuscribe
//
//	@license.name	MIT
//	@license.url	https://opensource.org/licenses/MIT
//
//	@host		localhost:9002
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g ../cmd/docuscribe/serve.go -o ./swagger --parseDependency --parseInternal --outputTypes go
