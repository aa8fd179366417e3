package digest

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHex(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"password", "5baa61e4c9b93f3f0682250b6cf8331b7ee68fd8"},
		{"user@example.com", "63a710569261a24b3766275b7000ce8d7b32e2f7"},
		{"hunter2", "f3bbbd66a63d4bf1747940578ec3d0103530e21d"},
		{"", "da39a3ee5e6b4b0d3255bfef95601890afd80709"},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, Hex(tc.in), "Hex(%q)", tc.in)
	}
}

func TestHexIsDeterministic(t *testing.T) {
	assert.Equal(t, Hex("segredo"), Hex("segredo"))
	assert.NotEqual(t, Hex("segredo"), Hex("Segredo"))
}
