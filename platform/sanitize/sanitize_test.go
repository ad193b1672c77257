package sanitize

import "testing"

func TestText(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{"plain", "paid in cash", "paid in cash"},
		{"tags", "<b>paid</b> in <i>cash</i>", "paid in cash"},
		{"encoded tags", "&lt;script&gt;alert(1)&lt;/script&gt;ok", "alert(1)ok"},
		{"spaces", "  paid \t  in   cash ", "paid in cash"},
		{"line breaks kept", "first line\n  second   line  ", "first line\nsecond line"},
		{"empty", "   ", ""},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Text(tc.input); got != tc.want {
				t.Fatalf("Text(%q) = %q, want %q", tc.input, got, tc.want)
			}
		})
	}
}
