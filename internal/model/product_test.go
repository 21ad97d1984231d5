package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeImageURL(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "drive uc link",
			input:    "https://drive.google.com/uc?id=1AbCdEfGhIjKlMnOpQrStUv&export=view",
			expected: "https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv",
		},
		{
			name:     "double prefixed lh3 link",
			input:    "https://lh3.googleusercontent.com/d/https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv",
			expected: "https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv",
		},
		{
			name:     "canonical lh3 link unchanged",
			input:    "https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv",
			expected: "https://lh3.googleusercontent.com/d/1AbCdEfGhIjKlMnOpQrStUv",
		},
		{
			name:     "plain https image unchanged",
			input:    "https://cdn.example.com/shoes/runner.jpg",
			expected: "https://cdn.example.com/shoes/runner.jpg",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "drive link without id unchanged",
			input:    "https://drive.google.com/uc?export=view",
			expected: "https://drive.google.com/uc?export=view",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, SanitizeImageURL(tt.input))
		})
	}
}

func TestProductDefaults(t *testing.T) {
	p := Product{Sizes: []string{"8", "9"}, Colors: []string{"Black", "White"}}
	assert.Equal(t, "8", p.DefaultSize())
	assert.Equal(t, "Black", p.DefaultColor())

	empty := Product{}
	assert.Equal(t, "OS", empty.DefaultSize())
	assert.Equal(t, "Default", empty.DefaultColor())
}

func TestLineID(t *testing.T) {
	assert.Equal(t, "p1-8-Black", LineID("p1", "8", "Black"))
	assert.Equal(t, "p1-8-default", LineID("p1", "8", ""))
}

func TestAddressFlatten(t *testing.T) {
	addr := Address{
		FullName: "Shopper",
		Street:   "1 Lane",
		City:     "Pune",
		State:    "MH",
		ZipCode:  "411001",
	}
	assert.Equal(t, "Shopper, 1 Lane, Pune, MH 411001", addr.Flatten())
}
