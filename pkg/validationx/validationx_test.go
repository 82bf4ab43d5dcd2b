package validationx

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsPersonName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "simple ascii", input: "Anna Kowalska"},
		{name: "hyphenated", input: "Maria Sklodowska-Curie"},
		{name: "apostrophe", input: "O'Brien"},
		{name: "polish diacritics", input: "Łukasz Żółć"},
		{name: "empty is left to Required", input: ""},
		{name: "digits", input: "Anna2", wantErr: true},
		{name: "symbols", input: "Anna<script>", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsPersonName.Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestIsPhoneNumber(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{name: "international", input: "+48123456789"},
		{name: "national", input: "123456789"},
		{name: "with separators", input: "+48 123-456-789"},
		{name: "empty is left to Required", input: ""},
		{name: "letters", input: "+48abc456789", wantErr: true},
		{name: "too short", input: "+481", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := IsPhoneNumber.Validate(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
