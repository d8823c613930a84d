package domain_test

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/leth4/leto-sub000/internal/domain"
	"github.com/leth4/leto-sub000/internal/geometry"
)

func TestCard_MarshalOnlyWritesVariantField(t *testing.T) {
	tests := []struct {
		card    domain.Card
		want    string
		notWant []string
	}{
		{
			card:    domain.Card{Type: domain.CardTypeText, Text: ""},
			want:    `"text":""`,
			notWant: []string{"imagePath", "drawPaths"},
		},
		{
			card:    domain.Card{Type: domain.CardTypeImage, ImagePath: "a.png"},
			want:    `"imagePath":"a.png"`,
			notWant: []string{`"text"`, "drawPaths"},
		},
		{
			card:    domain.Card{Type: domain.CardTypeDraw},
			want:    `"drawPaths":[]`,
			notWant: []string{`"text"`, "imagePath"},
		},
		{
			card:    domain.Card{Type: domain.CardTypeRegion, Text: "ignored"},
			want:    `"type":"RegionCard"`,
			notWant: []string{`"text"`, "imagePath", "drawPaths"},
		},
	}
	for _, tc := range tests {
		t.Run(string(tc.card.Type), func(t *testing.T) {
			data, err := json.Marshal(tc.card)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			s := string(data)
			if !strings.Contains(s, tc.want) {
				t.Errorf("expected %s in %s", tc.want, s)
			}
			for _, nw := range tc.notWant {
				if strings.Contains(s, nw) {
					t.Errorf("did not expect %s in %s", nw, s)
				}
			}
		})
	}
}

func TestCard_UnknownTypeFallsBackToText(t *testing.T) {
	var c domain.Card
	if err := json.Unmarshal([]byte(`{"type":"StickyCard","text":"hi","width":200}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.Type != domain.CardTypeText {
		t.Errorf("type = %q, want TextCard", c.Type)
	}
	if c.Text != "hi" || c.Width != 200 {
		t.Errorf("unexpected card: %+v", c)
	}
}

func TestCard_StringZIndexAccepted(t *testing.T) {
	var c domain.Card
	if err := json.Unmarshal([]byte(`{"type":"RegionCard","zIndex":"104"}`), &c); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if c.ZIndex != 104 {
		t.Errorf("zIndex = %d, want 104", c.ZIndex)
	}
}

func TestArrow_StringIndicesAccepted(t *testing.T) {
	var a domain.Arrow
	if err := json.Unmarshal([]byte(`{"fromIndex":"2","toIndex":0}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if a.FromIndex != 2 || a.ToIndex != 0 {
		t.Errorf("got %+v", a)
	}
}

func TestArrow_MissingEndpointIsDangling(t *testing.T) {
	var a domain.Arrow
	if err := json.Unmarshal([]byte(`{"fromIndex":1}`), &a); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !a.Dangling() {
		t.Errorf("expected dangling arrow, got %+v", a)
	}
}

func TestCard_CopyIsIndependent(t *testing.T) {
	orig := domain.Card{
		Type:      domain.CardTypeDraw,
		DrawPaths: []domain.Stroke{{{1, 2}, {3, 4}}},
	}
	cp := orig.Copy()
	cp.DrawPaths[0][0] = geometry.Point{9, 9}
	cp.DrawPaths = append(cp.DrawPaths, domain.Stroke{{0, 0}})

	if orig.DrawPaths[0][0] != (geometry.Point{1, 2}) {
		t.Error("copy shares stroke memory with original")
	}
	if len(orig.DrawPaths) != 1 {
		t.Error("copy shares stroke list with original")
	}
}

func TestFileKinds(t *testing.T) {
	if !domain.IsImageFile("/x/photo.JPG") {
		t.Error("expected .JPG to be an image")
	}
	if domain.IsImageFile("notes.md") {
		t.Error("did not expect .md to be an image")
	}
	if !domain.IsNoteFile("notes.md") || !domain.IsNoteFile("a.txt") {
		t.Error("expected .md and .txt to be notes")
	}
}
