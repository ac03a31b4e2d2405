// Package log provides structured logging with credential sanitization.
// Site configurations can carry cookies and authorization headers for
// authenticated crawls; the handler here redacts those before any
// attribute reaches the log output.
package log
