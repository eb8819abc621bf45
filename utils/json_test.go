package utils

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Email    string `json:"email" validate:"required,email"`
	State    string `json:"state" validate:"omitempty,state"`
	Category string `json:"category" validate:"omitempty,risk_category"`
	Rating   int    `json:"rating" validate:"omitempty,gte=1,lte=5"`
}

func TestValidateStructMessages(t *testing.T) {
	tests := []struct {
		name string
		in   sample
		want string
	}{
		{"valid", sample{Email: "a@b.co", State: "QLD", Category: "WHS", Rating: 3}, ""},
		{"missing", sample{}, "email is required"},
		{"email", sample{Email: "nope"}, "email must be a valid email address"},
		{"state vocabulary", sample{Email: "a@b.co", State: "XYZ"}, "state must be one of: NSW, VIC, QLD, SA, WA, TAS, NT, ACT"},
		{"risk vocabulary", sample{Email: "a@b.co", Category: "financial"}, "category must be one of: clinical, WHS, privacy, business"},
		{"range", sample{Email: "a@b.co", Rating: 9}, "rating must satisfy lte=5"},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateStruct(tc.in)
			if tc.want == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.True(t, IsKind(err, KindInvalidArgument))
			var appErr *AppError
			require.ErrorAs(t, err, &appErr)
			assert.Equal(t, tc.want, appErr.Message)
		})
	}
}

func TestDecodeAndValidate(t *testing.T) {
	var out sample

	req := httptest.NewRequest("POST", "/", strings.NewReader(""))
	err := DecodeAndValidate(req, &out)
	assert.True(t, IsKind(err, KindInvalidArgument))
	assert.Contains(t, err.Error(), "request body is required")

	req = httptest.NewRequest("POST", "/", strings.NewReader("{"))
	err = DecodeAndValidate(req, &out)
	assert.Contains(t, err.Error(), "invalid request payload")

	req = httptest.NewRequest("POST", "/", strings.NewReader(`{"email":"gp@example.com","state":"VIC"}`))
	require.NoError(t, DecodeAndValidate(req, &out))
	assert.Equal(t, "VIC", out.State)
}
