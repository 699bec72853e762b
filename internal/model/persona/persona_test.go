package persona

import "testing"

func TestDefaultHasNoEmptyFields(t *testing.T) {
	p := Default("")
	if p.DefaultLanguage != PrimaryLanguage {
		t.Fatalf("expected primary language, got %s", p.DefaultLanguage)
	}
	fields := map[string]string{
		"name":            p.Name,
		"pace":            p.SpeechTraits.Pace,
		"tone":            p.SpeechTraits.Tone,
		"emotional":       p.SpeechTraits.EmotionalExpression,
		"responsePattern": p.SpeechTraits.ResponsePattern,
		"avoided":         p.SpeechTraits.AvoidedStyles,
		"allowed":         p.AllowedScope,
		"disallowed":      p.DisallowedScope,
		"opening":         p.OpeningLine,
	}
	for name, value := range fields {
		if value == "" {
			t.Fatalf("field %s is empty", name)
		}
	}
}

func TestNeedsTranslation(t *testing.T) {
	cases := map[string]bool{"zh": false, "en": false, "ja": true, "ko": true, "": false}
	for lang, want := range cases {
		if got := (Persona{DefaultLanguage: lang}).NeedsTranslation(); got != want {
			t.Fatalf("NeedsTranslation(%q) = %v, want %v", lang, got, want)
		}
	}
}

func TestGreetingFallsBackToPrimary(t *testing.T) {
	if got := Greeting("Lady Gaga", "xx"); got != "你好，我是Lady Gaga。今天想聊点什么？" {
		t.Fatalf("unexpected greeting %q", got)
	}
}

func TestMemoryStoreFind(t *testing.T) {
	store := NewMemoryStore([]Idol{
		{ID: "idol_001", Name: "小梦"},
		{ID: "idol_002", Name: "Luna"},
		{ID: "idol_003", Name: "luna"},
	})

	cases := map[string]string{
		"idol_001":   "idol_001",
		" IDOL_002 ": "idol_002",
		"小梦":         "idol_001",
		"LUNA":       "idol_002",
	}
	for key, want := range cases {
		idol, ok := store.Find(key)
		if !ok || idol.ID != want {
			t.Fatalf("Find(%q) = %+v, %v; want %s", key, idol, ok, want)
		}
	}
	if _, ok := store.Find("idol_404"); ok {
		t.Fatal("expected miss for unknown id")
	}
	if _, ok := store.Find(" "); ok {
		t.Fatal("expected miss for blank key")
	}
	if got := len(store.List()); got != 3 {
		t.Fatalf("expected 3 idols, got %d", got)
	}
}
