// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

// Package httperrors provides user-friendly error handling for HTTP requests.
package httperrors

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/pterm/pterm"
)

// FormatNetworkError converts technical HTTP/network errors into user-friendly
// messages. It detects common error types (timeout, DNS, connection refused,
// TLS) and displays troubleshooting information, then returns a wrapped error
// for logging.
func FormatNetworkError(err error, context string) error {
	if err == nil {
		return nil
	}
	displayErrorMessage(err, context)
	return fmt.Errorf("network error: %w", err)
}

// displayErrorMessage shows a formatted error message based on error type.
func displayErrorMessage(err error, context string) {
	switch {
	case isTimeoutError(err):
		pterm.Printf("⏱️  Connection timeout while %s\n", context)
		pterm.Println()
		pterm.Println("The server took too long to respond. This could mean:")
		pterm.Println("  • Slow internet connection")
		pterm.Println("  • The server is under heavy load")
		pterm.Println()
		pterm.Println("Please try again in a few moments.")
	case isDNSError(err):
		pterm.Printf("🌐 Cannot resolve server address while %s\n", context)
		pterm.Println()
		pterm.Println("Please check:")
		pterm.Println("  • The configured server address is correct")
		pterm.Println("  • Your internet connection is working")
		pterm.Println("  • No DNS-level blocking (corporate firewall, parental controls)")
	case isConnectionRefusedError(err):
		pterm.Printf("🚫 Connection refused while %s\n", context)
		pterm.Println()
		pterm.Println("The server is not accepting connections. This could mean:")
		pterm.Println("  • The service is temporarily down")
		pterm.Println("  • A firewall is blocking the connection")
		pterm.Println("  • Wrong server address or port")
	case isTLSError(err):
		pterm.Printf("🔒 Secure connection failed while %s\n", context)
		pterm.Println()
		pterm.Println("Cannot establish a secure HTTPS connection. Try:")
		pterm.Println("  • Check your system date and time")
		pterm.Println("  • Verify network proxy settings")
	default:
		pterm.Printf("❌ Cannot reach the server while %s\n", context)
		pterm.Println()
		detail := err.Error()
		if len(detail) > 120 {
			detail = detail[:120] + "..."
		}
		pterm.Printf("   %s\n", detail)
	}
	pterm.Println()
}

// isTimeoutError checks if the error is a timeout error.
func isTimeoutError(err error) bool {
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return true
	}
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "timeout") || strings.Contains(s, "deadline exceeded")
}

// isDNSError checks if the error is a DNS resolution error.
func isDNSError(err error) bool {
	var dnsErr *net.DNSError
	return errors.As(err, &dnsErr)
}

// isConnectionRefusedError checks if the error is a connection refused error.
func isConnectionRefusedError(err error) bool {
	var opErr *net.OpError
	if errors.As(err, &opErr) && errors.Is(opErr.Err, syscall.ECONNREFUSED) {
		return true
	}
	return strings.Contains(strings.ToLower(err.Error()), "connection refused")
}

// isTLSError checks if the error is a TLS/certificate error.
func isTLSError(err error) bool {
	s := strings.ToLower(err.Error())
	return strings.Contains(s, "tls") ||
		strings.Contains(s, "certificate") ||
		strings.Contains(s, "handshake")
}
