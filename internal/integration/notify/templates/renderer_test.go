package templates

import (
	"strings"
	"testing"
)

func TestRenderer_ListCompleted(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	tests := []struct {
		name     string
		data     ListCompletedData
		wantHTML string
		wantText string
	}{
		{
			name:     "with actor",
			data:     ListCompletedData{ListTitle: "Weekly", ActorName: "Ana", Total: "42.50", CompletedAt: "2026-03-01"},
			wantHTML: "Ana finished",
			wantText: "Total spent: 42.50",
		},
		{
			name:     "without actor",
			data:     ListCompletedData{ListTitle: "Weekly", Total: "0.00"},
			wantHTML: "Someone finished",
			wantText: "Someone finished",
		},
		{
			name:     "escapes html",
			data:     ListCompletedData{ListTitle: "<b>Party</b>", Total: "1.00"},
			wantHTML: "&lt;b&gt;Party&lt;/b&gt;",
			wantText: "<b>Party</b>",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			html, text, err := renderer.Render(ListCompleted, tt.data)
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if !strings.Contains(html, tt.wantHTML) {
				t.Errorf("html = %q, want to contain %q", html, tt.wantHTML)
			}
			if !strings.Contains(text, tt.wantText) {
				t.Errorf("text = %q, want to contain %q", text, tt.wantText)
			}
		})
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	renderer, err := NewRenderer()
	if err != nil {
		t.Fatalf("NewRenderer() error = %v", err)
	}

	if _, _, err := renderer.Render("missing", nil); err == nil {
		t.Error("Render() expected error for unknown template")
	}
}
