package main

// General API documentation for swaggo. The served document lives in
// internal/httpapi/swagger.go (build tag swagger).
//
// @title           webvideo API
// @version         1.0
// @description     Debug and control surface for web panels rendered into the host video layer.
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
