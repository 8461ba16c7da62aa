// Package mouse defines mouse events and the helpers the dispatcher uses to
// turn them into input ids: button ids "M0".."M4" and rate-limited wheel
// directions.
package mouse
