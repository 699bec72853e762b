package persona

import (
	"fmt"
	"strings"
)

// PrimaryLanguage 是服务默认使用的语言代码。
const PrimaryLanguage = "zh"

// SpeechTraits 描述说话方式，逐字注入到对话提示词中作为行为约束。
type SpeechTraits struct {
	Pace                string `json:"pace"`
	Tone                string `json:"tone"`
	EmotionalExpression string `json:"emotionalExpression"`
	ResponsePattern     string `json:"responsePattern"`
	AvoidedStyles       string `json:"avoidedStyles"`
}

// Persona is a speech-style profile synthesized for one named person.
// It is set once per session and never mutated afterwards.
type Persona struct {
	Name            string       `json:"name"`
	DefaultLanguage string       `json:"defaultLanguage"`
	SpeechTraits    SpeechTraits `json:"speechTraits"`
	AllowedScope    string       `json:"allowedReferenceScope"`
	DisallowedScope string       `json:"disallowedScope"`
	OpeningLine     string       `json:"openingLine"`
	Synthesized     bool         `json:"synthesized"`
}

// Default 返回合成失败时使用的安全人设：温和、耐心、使用主语言。
func Default(name string) Persona {
	name = strings.TrimSpace(name)
	if name == "" {
		name = "小梦"
	}
	return Persona{
		Name:            name,
		DefaultLanguage: PrimaryLanguage,
		SpeechTraits: SpeechTraits{
			Pace:                "语速平缓，句子短",
			Tone:                "温和、耐心",
			EmotionalExpression: "情绪含蓄，多用倾听和简短回应",
			ResponsePattern:     "先回应对方的感受，再轻声聊自己的想法",
			AvoidedStyles:       "说教、夸张表演、绝对化断言",
		},
		AllowedScope:    "公开的采访、作品与公开经历",
		DisallowedScope: "私人关系、未经证实的传闻、冒充真人做出承诺",
		OpeningLine:     Greeting(name, PrimaryLanguage),
	}
}

// NeedsTranslation reports whether replies should carry a translated copy.
func (p Persona) NeedsTranslation() bool {
	lang := strings.TrimSpace(p.DefaultLanguage)
	return lang != "" && lang != PrimaryLanguage && lang != "en"
}

var greetings = map[string]string{
	"zh": "你好，我是%s。今天想聊点什么？",
	"en": "Hey, it's %s. What's on your mind?",
	"ko": "안녕하세요, %s예요. 오늘 무슨 얘기 하고 싶어요?",
	"ja": "こんにちは、%sです。今日はどんな話をしましょうか？",
	"fr": "Salut, c'est %s. De quoi as-tu envie de parler ?",
	"es": "Hola, soy %s. ¿De qué quieres hablar hoy?",
	"de": "Hallo, hier ist %s. Worüber möchtest du reden?",
}

// Greeting 返回指定语言的开场白模板，未知语言回落到主语言。
func Greeting(name, language string) string {
	tmpl, ok := greetings[language]
	if !ok {
		tmpl = greetings[PrimaryLanguage]
	}
	return fmt.Sprintf(tmpl, name)
}
