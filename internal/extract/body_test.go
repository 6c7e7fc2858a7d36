package extract

import "testing"

func TestFlatten(t *testing.T) {
	e := NewBodyExtractor()

	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "entity encoded paragraphs",
			in:   "&lt;div&gt;&lt;p&gt;First paragraph&lt;/p&gt;&lt;p&gt;Second paragraph&lt;/p&gt;&lt;/div&gt;",
			want: "First paragraph\nSecond paragraph",
		},
		{
			name: "list items",
			in:   "&lt;ul&gt;&lt;li&gt;one&lt;/li&gt;&lt;li&gt;two&lt;/li&gt;&lt;/ul&gt;",
			want: "one\ntwo",
		},
		{
			name: "line breaks",
			in:   "&lt;p&gt;line one&lt;br/&gt;line two&lt;/p&gt;",
			want: "line one\nline two",
		},
		{
			name: "inline formatting collapsed",
			in:   "&lt;p&gt;I &lt;em&gt;really&lt;/em&gt; like &lt;strong&gt;Go&lt;/strong&gt;&lt;/p&gt;",
			want: "I really like Go",
		},
		{
			name: "entities decoded",
			in:   "&lt;p&gt;fish &amp;amp; chips&lt;/p&gt;",
			want: "fish & chips",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := e.Flatten(tt.in); got != tt.want {
				t.Errorf("Flatten(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}
