package persona

import "strings"

// Idol captures the static catalog entries exposed to the frontend.
// Catalog entries are informational; chat personas are always synthesized.
type Idol struct {
	ID               string `json:"id"`
	Name             string `json:"name"`
	Description      string `json:"description"`
	Personality      string `json:"personality"`
	LanguageStyle    string `json:"languageStyle"`
	Knowledge        string `json:"knowledgeBackground"`
	SpecialAbility   string `json:"specialAbility"`
	DefaultLanguage  string `json:"defaultLanguage"`
	AllowTranslation bool   `json:"allowTranslation"`
}

// Seed provides the built-in idol catalog.
func Seed() []Idol {
	return []Idol{
		{
			ID:              "idol_001",
			Name:            "小梦",
			Description:     "18岁的治愈系歌手",
			Personality:     "温柔体贴，善解人意，总是用温暖的笑容面对大家",
			LanguageStyle:   "治愈系，喜欢用星星、月亮、梦境等元素来比喻，说话轻声细语",
			Knowledge:       "擅长音乐和心理学，了解基本的情感疏导方法",
			SpecialAbility:  "能够用音乐相关的比喻表达情感",
			DefaultLanguage: "zh",
		},
		{
			ID:              "idol_002",
			Name:            "小阳",
			Description:     "20岁的阳光活力舞者",
			Personality:     "活泼开朗，充满正能量，总是带着灿烂的笑容",
			LanguageStyle:   "充满活力，喜欢使用感叹词，说话节奏快",
			Knowledge:       "擅长舞蹈和健身，了解流行文化和时尚潮流",
			SpecialAbility:  "能够用舞蹈相关的比喻表达情感",
			DefaultLanguage: "zh",
		},
		{
			ID:              "idol_003",
			Name:            "阿哲",
			Description:     "25岁的才华横溢作家",
			Personality:     "成熟稳重，思维缜密，善于思考和分析问题",
			LanguageStyle:   "沉稳理性，逻辑清晰，喜欢引用经典文学作品",
			Knowledge:       "擅长文学和哲学，了解历史和文化",
			SpecialAbility:  "能够用哲学思想解答人生困惑",
			DefaultLanguage: "zh",
		},
		{
			ID:               "idol_004",
			Name:             "Lady Gaga",
			Description:      "国际知名流行歌手、演员",
			Personality:      "大胆创新，富有同情心，支持多元文化和自我表达",
			LanguageStyle:    "充满表现力，富有艺术感，鼓励自我接纳",
			Knowledge:        "音乐、时尚、社会活动",
			SpecialAbility:   "能够用音乐和艺术的角度解读情感",
			DefaultLanguage:  "en",
			AllowTranslation: true,
		},
		{
			ID:               "idol_005",
			Name:             "Taylor Swift",
			Description:      "国际知名创作歌手",
			Personality:      "细腻敏感，才华横溢，擅长表达情感",
			LanguageStyle:    "叙事性强，情感真挚，富有文学性",
			Knowledge:        "音乐创作、情感表达",
			SpecialAbility:   "能够用故事化的方式安慰和鼓励",
			DefaultLanguage:  "en",
			AllowTranslation: true,
		},
	}
}

// Store exposes the idol catalog to HTTP handlers.
type Store interface {
	List() []Idol
	// Find resolves an idol by id or display name, ignoring case and surrounding space.
	Find(key string) (Idol, bool)
}

// MemoryStore is a read-only catalog indexed at construction.
type MemoryStore struct {
	items []Idol
	index map[string]int
}

// NewMemoryStore indexes items by id and by name. On a collision the first entry wins.
func NewMemoryStore(items []Idol) *MemoryStore {
	s := &MemoryStore{
		items: append([]Idol(nil), items...),
		index: make(map[string]int, 2*len(items)),
	}
	for i, item := range s.items {
		for _, key := range []string{catalogKey(item.ID), catalogKey(item.Name)} {
			if _, taken := s.index[key]; key != "" && !taken {
				s.index[key] = i
			}
		}
	}
	return s
}

// List returns a copy of the catalog in seed order.
func (s *MemoryStore) List() []Idol {
	return append([]Idol(nil), s.items...)
}

func (s *MemoryStore) Find(key string) (Idol, bool) {
	i, ok := s.index[catalogKey(key)]
	if !ok {
		return Idol{}, false
	}
	return s.items[i], true
}

func catalogKey(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
