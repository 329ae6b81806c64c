package upstream

import (
	"context"
	"testing"
)

func TestNormalizeNumberWords(t *testing.T) {
	m := NewLocalModel()

	cases := []struct {
		name     string
		in       string
		want     string
		spans    int
		original string
		value    float64
	}{
		{
			name:     "amount phrase",
			in:       "contribute ten thousand",
			want:     "contribute 10000",
			spans:    1,
			original: "ten thousand",
			value:    10000,
		},
		{
			name:     "k suffix shorthand",
			in:       "put in 10k this year",
			want:     "put in 10000 this year",
			spans:    1,
			original: "10k",
			value:    10000,
		},
		{
			name:     "hyphenated tens",
			in:       "twenty-five percent",
			want:     "25 percent",
			spans:    1,
			original: "twenty-five",
			value:    25,
		},
		{
			name:     "with and joiner",
			in:       "one hundred and six dollars",
			want:     "106 dollars",
			spans:    1,
			original: "one hundred and six",
			value:    106,
		},
		{
			name:     "compound scale",
			in:       "save two million five hundred thousand",
			want:     "save 2500000",
			spans:    1,
			original: "two million five hundred thousand",
			value:    2500000,
		},
		{
			name:  "no numbers pass through",
			in:    "keep my current election",
			want:  "keep my current election",
			spans: 0,
		},
		{
			name:     "trailing punctuation stays outside",
			in:       "contribute ten thousand.",
			want:     "contribute 10000.",
			spans:    1,
			original: "ten thousand",
			value:    10000,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := m.Normalize(context.Background(), "amount", tc.in)
			if err != nil {
				t.Fatalf("normalize: %v", err)
			}
			if got.NormalizedText != tc.want {
				t.Errorf("normalized = %q, want %q", got.NormalizedText, tc.want)
			}
			if len(got.Numbers) != tc.spans {
				t.Fatalf("spans = %d, want %d", len(got.Numbers), tc.spans)
			}
			if tc.spans > 0 {
				if got.Numbers[0].Original != tc.original {
					t.Errorf("original = %q, want %q", got.Numbers[0].Original, tc.original)
				}
				if got.Numbers[0].Value != tc.value {
					t.Errorf("value = %v, want %v", got.Numbers[0].Value, tc.value)
				}
			}
		})
	}
}

func TestPolish(t *testing.T) {
	m := NewLocalModel()

	cases := []struct {
		in   string
		want string
	}{
		{"  i want   to enroll ", "I want to enroll."},
		{"done!", "Done!"},
		{"", ""},
		{"already capital.", "Already capital."},
	}
	for _, tc := range cases {
		got, err := m.Polish(context.Background(), PolishRequest{Text: tc.in, Tone: "professional"})
		if err != nil {
			t.Fatalf("polish(%q): %v", tc.in, err)
		}
		if got != tc.want {
			t.Errorf("polish(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}
