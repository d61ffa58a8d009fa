// pattern: Functional Core

package catalog

import "testing"

func labels(entries []Entry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Label
	}
	return out
}

func TestFilter_EmptyQueryReturnsAll(t *testing.T) {
	entries := Defaults()
	got := Filter(entries, "  ")
	if len(got) != len(entries) {
		t.Fatalf("len = %d, want %d", len(got), len(entries))
	}
	got[0].Label = "mutated"
	if entries[0].Label == "mutated" {
		t.Error("Filter must not alias the input slice")
	}
}

func TestFilter_MatchesLabelsAndAddresses(t *testing.T) {
	entries := []Entry{
		{Label: "ChatGPT", Address: "https://chatgpt.com/"},
		{Label: "DeepSeek", Address: "https://chat.deepseek.com/"},
		{Label: "智谱清言", Address: "https://chatglm.cn/chat"},
	}

	tests := []struct {
		query string
		first string
		count int
	}{
		{"dsk", "DeepSeek", 1},
		{"chatglm", "智谱清言", 1},
		{"智谱", "智谱清言", 1},
		{"zzz", "", 0},
	}
	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			got := Filter(entries, tt.query)
			if len(got) != tt.count {
				t.Fatalf("Filter(%q) = %v, want %d results", tt.query, labels(got), tt.count)
			}
			if tt.count > 0 && got[0].Label != tt.first {
				t.Errorf("Filter(%q)[0] = %q, want %q", tt.query, got[0].Label, tt.first)
			}
		})
	}
}

func TestFilter_RanksCloserMatchesFirst(t *testing.T) {
	entries := []Entry{
		{Label: "Claude Opus Workspace", Address: "https://a.example/"},
		{Label: "Claude", Address: "https://claude.ai/new"},
	}
	got := Filter(entries, "claude")
	if len(got) != 2 || got[0].Label != "Claude" {
		t.Errorf("Filter ranking = %v, want Claude first", labels(got))
	}
}
