package phone_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/storefinder/backend/internal/phone"
)

func TestNormalizeE164(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"landline with area code", "(11) 3000-1000", "+551130001000"},
		{"mobile", "11 91234-5678", "+5511912345678"},
		{"already e164", "+55 21 2222-3333", "+552122223333"},
		{"garbage is trimmed", "  ramal 12  ", "ramal 12"},
		{"empty", "   ", ""},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, phone.NormalizeE164(tc.input))
		})
	}
}
