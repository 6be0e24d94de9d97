package tasktype

import "testing"

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Type
	}{
		{in: "page", want: Page},
		{in: "PAGE", want: Page},
		{in: "blog_post", want: Blog},
		{in: "gbp-post", want: GBPPost},
		{in: "GBP Post", want: GBPPost},
		{in: "gbp", want: GBPPost},
		{in: "improvements", want: Improvement},
		{in: "maintenance", want: Maintenance},
	}

	for _, tt := range tests {
		got, err := Parse(tt.in)
		if err != nil {
			t.Fatalf("Parse(%q) unexpected error: %v", tt.in, err)
		}
		if got != tt.want {
			t.Fatalf("Parse(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if _, err := Parse("video"); err != ErrUnknownType {
		t.Fatalf("expected ErrUnknownType for unknown type, got %v", err)
	}
}

func TestFromExternalID(t *testing.T) {
	tests := []struct {
		id   string
		want Type
		ok   bool
	}{
		{"task-p-123", Page, true},
		{"TASK-B-9", Blog, true},
		{"task-g-77", GBPPost, true},
		{"task-i-1", Improvement, true},
		{"task-x-1", "", false},
		{"12345", "", false},
	}

	for _, tt := range tests {
		got, ok := FromExternalID(tt.id)
		if ok != tt.ok || got != tt.want {
			t.Fatalf("FromExternalID(%q) = (%q, %v), want (%q, %v)", tt.id, got, ok, tt.want, tt.ok)
		}
	}
}

func TestInferPrefersCandidates(t *testing.T) {
	got, ok := Infer("task-p-1", "", "blog")
	if !ok || got != Blog {
		t.Fatalf("expected declared type to win, got %q", got)
	}
	got, ok = Infer("task-g-1", "unknown-thing")
	if !ok || got != GBPPost {
		t.Fatalf("expected prefix fallback, got %q", got)
	}
	if _, ok := Infer("abc"); ok {
		t.Fatalf("expected no inference for bare id")
	}
}

func TestCounterMapping(t *testing.T) {
	want := map[Type]Counter{
		Page:        CounterPages,
		Blog:        CounterBlogs,
		GBPPost:     CounterGBPPosts,
		Improvement: CounterImprovements,
		Maintenance: CounterNone,
		Type("x"):   CounterNone,
	}
	for typ, c := range want {
		if got := typ.Counter(); got != c {
			t.Fatalf("%q.Counter() = %q, want %q", typ, got, c)
		}
	}
}
