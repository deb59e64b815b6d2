package logger

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestSanitizeSQL 测试 SQL 脱敏
func TestSanitizeSQL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "密码",
			input:    "UPDATE users SET password = 'secret123' WHERE id = 1",
			expected: "UPDATE users SET password = '***' WHERE id = 1",
		},
		{
			name:     "卡号",
			input:    "SELECT * FROM accounts WHERE card_no = '6029621011000'",
			expected: "SELECT * FROM accounts WHERE card_no = '6029****1000'",
		},
		{
			name:     "短数字保持不变",
			input:    "UPDATE accounts SET money = 1100 WHERE id = 7",
			expected: "UPDATE accounts SET money = 1100 WHERE id = 7",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, sanitizeSQL(tt.input))
		})
	}
}
