package slug

import "testing"

func TestDerive(t *testing.T) {
	cases := []struct {
		name string
		in   string
		want string
	}{
		{name: "danish letters and ampersand", in: "Kæledyr & Åbenhed", want: "kaeledyr-aabenhed"},
		{name: "plain", in: "Vaccination", want: "vaccination"},
		{name: "oe", in: "Øre- og øjenpleje", want: "oere-og-oejenpleje"},
		{name: "leading and trailing junk", in: "  Tandrens!  ", want: "tandrens"},
		{name: "digits kept", in: "Sundhedstjek 2024", want: "sundhedstjek-2024"},
		{name: "collapses runs", in: "Kat -- / hund", want: "kat-hund"},
		{name: "empty", in: "", want: ""},
		{name: "only junk", in: " & / ", want: ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := Derive(tc.in); got != tc.want {
				t.Fatalf("Derive(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
