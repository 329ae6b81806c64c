package redact

import "testing"

func TestMasking(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "ssn",
			in:   "my social is 123-45-6789 thanks",
			want: "my social is XXX-XX-XXXX thanks",
		},
		{
			name: "card plain",
			in:   "card 4111111111111111 on file",
			want: "card XXXXXXXXXXXX1111 on file",
		},
		{
			name: "card dashed",
			in:   "use 4111-1111-1111-1111 please",
			want: "use XXXX-XXXX-XXXX-1111 please",
		},
		{
			name: "routing number",
			in:   "routing 021000021 checking",
			want: "routing XXXXXXXXX checking",
		},
		{
			name: "clean text untouched",
			in:   "contribute ten thousand to my 401k",
			want: "contribute ten thousand to my 401k",
		},
		{
			name: "short digit runs untouched",
			in:   "extension 12345 room 401",
			want: "extension 12345 room 401",
		},
		{
			name: "multiple hits",
			in:   "ssn 123-45-6789 and routing 123456789",
			want: "ssn XXX-XX-XXXX and routing XXXXXXXXX",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.in); got != tc.want {
				t.Errorf("Text(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
