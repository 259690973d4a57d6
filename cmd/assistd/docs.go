package main

// General API documentation for swaggo. Build with -tags=swagger to serve it.
//
// @title           assistd API
// @version         1.0
// @description     HTTP API for the oilfield operations conversational assistant.
//
// @contact.name   assistd maintainers
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
