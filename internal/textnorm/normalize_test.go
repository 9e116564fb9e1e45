package textnorm

import "testing"

func TestNormalize(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{"lowercases", "iPhone 15 Pro Max", "iphone 15 pro max"},
		{"collapses whitespace", "  MacBook   Pro \n 16  ", "macbook pro 16"},
		{"strips symbols keeps basic punctuation", "A2849! (256GB) — 6.7\"", "a2849 256gb 6.7"},
		{"keeps hyphen and comma", "USB-C, Thunderbolt", "usb-c, thunderbolt"},
		{"empty", "", ""},
		{"whitespace only", " \t\n ", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q): want=%q got=%q", tc.in, tc.want, got)
			}
		})
	}
}

func TestNormalizeIdempotent(t *testing.T) {
	inputs := []string{
		"iPhone 15 Pro Max 256GB",
		"  A2849!  (unlocked)  ",
		"ÜBER-café №42",
		"",
	}
	for _, in := range inputs {
		once := Normalize(in)
		if twice := Normalize(once); twice != once {
			t.Fatalf("not idempotent for %q: once=%q twice=%q", in, once, twice)
		}
	}
}

func TestTokens(t *testing.T) {
	got := Tokens("iPhone 15, Pro  Max!")
	want := []string{"iphone", "15,", "pro", "max"}
	if len(got) != len(want) {
		t.Fatalf("tokens length: want=%d got=%d (%v)", len(want), len(got), got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("token %d: want=%q got=%q", i, want[i], got[i])
		}
	}
}
