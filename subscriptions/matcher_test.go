package subscriptions

import "testing"

func TestScore(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"chess", "chess", 100},
		{"Chess ", "chess", 100},
		{"chesss", "chess", 83},
		{"abcd", "abcx", 75},
		{"abcdefghijklmnopqrstuvwxyz0", "abcdefghijklmnopqrst1234567", 74},
		{"debate", "server", 17},
		{"", "", 100},
		{"", "art", 0},
	}

	for _, tt := range tests {
		if got := Score(tt.a, tt.b); got != tt.want {
			t.Errorf("Score(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestResolveThresholdBoundary(t *testing.T) {
	// 1 edit over 4 runes scores exactly 75.
	if got := Score("abcx", "abcd"); got != 75 {
		t.Fatalf("boundary fixture scores %d, want 75", got)
	}
	if name, ok := Resolve("abcx", []string{"abcd"}, 75); !ok || name != "abcd" {
		t.Errorf("score 75 should resolve, got %q %v", name, ok)
	}

	// 7 edits over 27 runes scores 74.
	const query, candidate = "abcdefghijklmnopqrst1234567", "abcdefghijklmnopqrstuvwxyz0"
	if got := Score(query, candidate); got != 74 {
		t.Fatalf("boundary fixture scores %d, want 74", got)
	}
	if name, ok := Resolve(query, []string{candidate}, 75); ok {
		t.Errorf("score 74 should not resolve, got %q", name)
	}
}

func TestResolvePicksBest(t *testing.T) {
	candidates := []string{"art", "arts", "chess", "debate", "event", "server"}

	tests := []struct {
		query string
		want  string
		ok    bool
	}{
		{"chess", "chess", true},
		{"Chesss", "chess", true},
		{"debat", "debate", true},
		{"arts", "arts", true},
		{"events", "event", true},
		{"robotics", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		name, ok := Resolve(tt.query, candidates, DefaultThreshold)
		if ok != tt.ok || name != tt.want {
			t.Errorf("Resolve(%q) = %q, %v; want %q, %v", tt.query, name, ok, tt.want, tt.ok)
		}
	}
}

func TestResolveNoCandidates(t *testing.T) {
	if _, ok := Resolve("chess", nil, 0); ok {
		t.Error("expected no match without candidates")
	}
}
