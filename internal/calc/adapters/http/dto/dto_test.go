package dto_test

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"gocalc/internal/calc/adapters/http/dto"
)

func ptr[T any](v T) *T { return &v }

func TestStructValidator(t *testing.T) {
	v := dto.StructValidator{}

	tests := []struct {
		name    string
		input   any
		wantErr string
	}{
		{
			name:  "valid registration",
			input: &dto.RegisterRequest{Email: "calc@example.com", Username: "calc", Password: "password123"},
		},
		{
			name:    "registration missing fields",
			input:   &dto.RegisterRequest{Email: "calc@example.com"},
			wantErr: "username required, password required",
		},
		{
			name:    "registration bad email",
			input:   &dto.RegisterRequest{Email: "not-an-email", Username: "calc", Password: "password123"},
			wantErr: "email must be a valid email",
		},
		{
			name:    "registration short password",
			input:   &dto.RegisterRequest{Email: "calc@example.com", Username: "calc", Password: "short"},
			wantErr: "password must be at least 8 characters",
		},
		{
			name:    "registration short username",
			input:   &dto.RegisterRequest{Email: "calc@example.com", Username: "ab", Password: "password123"},
			wantErr: "username must be at least 3 characters",
		},
		{
			name:    "login missing password",
			input:   &dto.LoginRequest{Username: "calc"},
			wantErr: "password required",
		},
		{
			name:    "refresh missing token",
			input:   &dto.RefreshTokenRequest{},
			wantErr: "refresh_token required",
		},
		{
			name:  "calculation with zero operand",
			input: &dto.CalculationRequest{A: ptr(1.0), B: ptr(0.0), Type: "Divide"},
		},
		{
			name:    "calculation missing operand",
			input:   &dto.CalculationRequest{A: ptr(1.0), Type: "Add"},
			wantErr: "b required",
		},
		{
			name:    "calculation infinite operand",
			input:   &dto.CalculationRequest{A: ptr(math.Inf(1)), B: ptr(1.0), Type: "Add"},
			wantErr: "a must be a finite number",
		},
		{
			name:    "calculation NaN operand",
			input:   &dto.CalculationRequest{A: ptr(1.0), B: ptr(math.NaN()), Type: "Add"},
			wantErr: "b must be a finite number",
		},
		{
			name:  "update with one field",
			input: &dto.CalculationUpdateRequest{B: ptr(2.0)},
		},
		{
			name:    "empty update",
			input:   &dto.CalculationUpdateRequest{},
			wantErr: "at least one of a, b, type required",
		},
		{
			name:    "update with empty type",
			input:   &dto.CalculationUpdateRequest{Type: ptr("")},
			wantErr: "type must not be empty",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := v.Validate(tt.input)
			if tt.wantErr == "" {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, dto.ErrValidation)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestNumberMarshalJSON(t *testing.T) {
	tests := []struct {
		in   float64
		want string
	}{
		{in: 2.5, want: `2.5`},
		{in: math.Inf(1), want: `"+Inf"`},
		{in: math.Inf(-1), want: `"-Inf"`},
		{in: math.NaN(), want: `"NaN"`},
	}

	for _, tt := range tests {
		out, err := json.Marshal(dto.Number(tt.in))
		require.NoError(t, err)
		assert.Equal(t, tt.want, string(out))
	}
}
