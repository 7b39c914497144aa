package oauth1

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEncode(t *testing.T) {
	testCases := []struct {
		input    string
		expected string
	}{
		{input: "", expected: ""},
		{input: "abcXYZ019-._~", expected: "abcXYZ019-._~"},
		{input: "Hello Ladies + Gentlemen", expected: "Hello%20Ladies%20%2B%20Gentlemen"},
		{input: "a&b=c%d", expected: "a%26b%3Dc%25d"},
		{input: "players;start=0", expected: "players%3Bstart%3D0"},
		{input: "☃", expected: "%E2%98%83"},
		{input: "/?#[]@!$'()*,", expected: "%2F%3F%23%5B%5D%40%21%24%27%28%29%2A%2C"},
	}

	for _, test := range testCases {
		require.Equal(t, test.expected, Encode(test.input), "input %q", test.input)
	}
}

func TestEncodeRoundTrip(t *testing.T) {
	inputs := []string{
		"",
		"plain",
		"with space",
		"a+b",
		"100%",
		"k=v&k2=v2",
		"A.J. Brown",
		"Ja'Marr Chase",
		"日本語テキスト",
		"tab\tnewline\n",
	}
	for _, input := range inputs {
		decoded, err := Decode(Encode(input))
		require.NoError(t, err)
		require.Equal(t, input, decoded)
	}
}

func TestEncodeCharacterClasses(t *testing.T) {
	for c := 0; c < 128; c++ {
		s := string(rune(c))
		encoded := Encode(s)
		if unreserved(byte(c)) {
			require.Equal(t, s, encoded)
			continue
		}
		require.True(t, strings.HasPrefix(encoded, "%"), "character %q was not encoded", s)
		require.Len(t, encoded, 3)
	}

	for _, reserved := range []string{"&", "=", "%", " "} {
		require.NotEqual(t, reserved, Encode(reserved))
		require.NotContains(t, Encode(reserved), "+")
	}
}

func TestDecodeInvalid(t *testing.T) {
	for _, input := range []string{"%", "%2", "%zz", "abc%G0"} {
		_, err := Decode(input)
		require.Error(t, err, "input %q", input)
	}

	decoded, err := Decode("a+b")
	require.NoError(t, err)
	require.Equal(t, "a+b", decoded)
}
