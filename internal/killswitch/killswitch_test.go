package killswitch

import "testing"

func TestOnlyLiteralFalseDisables(t *testing.T) {
	cases := []struct {
		value string
		want  bool
	}{
		{"false", false},
		{"true", true},
		{"", true},
		{"FALSE", true},
		{"0", true},
		{"no", true},
		{" false", true},
	}
	for _, tc := range cases {
		f := New(map[string]string{"stt": tc.value})
		if got := f.Enabled("stt"); got != tc.want {
			t.Errorf("value %q: enabled = %v, want %v", tc.value, got, tc.want)
		}
	}
}

func TestUnknownGroupIsEnabled(t *testing.T) {
	f := New(nil)
	if !f.Enabled("tts") {
		t.Fatal("absent flag must mean enabled")
	}
}
