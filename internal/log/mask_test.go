// Copyright (c) 2025 Dbrelay
// Licensed under the MIT License. See LICENSE file in the project root for details.

package log

import (
	"testing"
)

func TestMask(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "login body password",
			input:    `{"username":"admin","password":"Secret123!"}`,
			expected: `{"username":"admin","password":"***"}`,
		},
		{
			name:     "session cookie",
			input:    "Cookie: .ROCK=abc123xyz; Path=/",
			expected: "Cookie: .ROCK=***; Path=/",
		},
		{
			name:     "bearer token",
			input:    "Authorization: Bearer abc.def.ghi",
			expected: "Authorization: Bearer ***",
		},
		{
			name:     "env password",
			input:    "DBRELAY_PASSWORD=hunter2",
			expected: "DBRELAY_PASSWORD=***",
		},
		{
			name:     "plain text untouched",
			input:    "SELECT 1 FROM Person",
			expected: "SELECT 1 FROM Person",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Mask(tt.input)
			if result != tt.expected {
				t.Errorf("Mask() = %v, want %v", result, tt.expected)
			}
		})
	}
}
