package vault

import "testing"

func TestParseRef(t *testing.T) {
	tests := []struct {
		in      string
		want    Ref
		wantErr bool
	}{
		{"secret/ci/token", Ref{Mount: "secret", Path: "ci", Key: "token"}, false},
		{"kv/teams/infra/deploy/key", Ref{Mount: "kv", Path: "teams/infra/deploy", Key: "key"}, false},
		{"m/p/k", Ref{Mount: "m", Path: "p", Key: "k"}, false},
		{"toofew/parts", Ref{}, true},
		{"single", Ref{}, true},
		{"", Ref{}, true},
		{"a//b", Ref{}, true},
		{"/leading/empty", Ref{}, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseRef(tt.in)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseRef(%q) should fail", tt.in)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRef(%q) failed: %v", tt.in, err)
			}
			if got != tt.want {
				t.Errorf("ParseRef(%q) = %+v, want %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestRefString_RoundTrip(t *testing.T) {
	ref, err := ParseRef("kv/teams/infra/token")
	if err != nil {
		t.Fatal(err)
	}
	if ref.String() != "kv/teams/infra/token" {
		t.Errorf("String() = %q", ref.String())
	}
}
