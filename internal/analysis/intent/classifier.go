package intent

// Sentiment 是过渡阶段对用户回答的粗分类。
type Sentiment int

const (
	SentimentNone Sentiment = iota
	SentimentNegative
	SentimentAffirmative
)

func (s Sentiment) String() string {
	switch s {
	case SentimentNegative:
		return "negative"
	case SentimentAffirmative:
		return "affirmative"
	default:
		return "none"
	}
}

// Tables 是分类器使用的全部关键词数据。
type Tables struct {
	Topics      Table    `toml:"topic"`
	Affirmative []string `toml:"affirmative"`
	Negative    []string `toml:"negative"`
	Control     []string `toml:"control"`
	Uncertain   []string `toml:"uncertain"`
}

// DefaultTables returns the built-in keyword tables.
func DefaultTables() Tables {
	return Tables{
		Topics: Table{
			{Label: Love, Triggers: []string{"爱情", "恋爱", "暗恋", "表白", "感情", "伴侣", "love", "relationship"}},
			{Label: Career, Triggers: []string{"事业", "工作", "职场", "职业", "升职", "跳槽", "career", "job"}},
			{Label: Fortune, Triggers: []string{"运势", "运气", "财运", "健康", "整体运势", "fortune", "luck"}},
			{Label: Study, Triggers: []string{"学习", "考试", "学业", "成绩", "学习方法", "study", "exam"}},
		},
		// "不需要" 同时包含 "需要"，依靠否定优先规则判为否定。
		Affirmative: []string{"需要", "要的", "好的", "好啊", "好呀", "可以", "行啊", "嗯嗯", "是的", "当然", "来吧", "yes", "yeah", "yep", "ok", "okay", "sure"},
		Negative:    []string{"不需要", "不用", "不要", "不想", "算了", "没必要", "不了", "拒绝", "no", "nope", "not now", "no thanks"},
		Control:     []string{"占卜", "算命", "算卦", "需要", "不需要", "不用", "divination", "need", "don't need", "什么", "怎么", "为什么", "吗", "呢", "谢谢"},
		// 犹豫类回答既不是肯定也不是名字，"not sure" 含有肯定词 "sure"。
		Uncertain: []string{"不知道", "随便", "不确定", "再说", "maybe", "not sure", "don't know", "dunno", "whatever"},
	}
}

// Classifier is a pure keyword matcher over Tables.
type Classifier struct {
	tables Tables
}

// New creates a classifier. Empty sections fall back to the defaults.
func New(tables Tables) *Classifier {
	defaults := DefaultTables()
	if len(tables.Topics) == 0 {
		tables.Topics = defaults.Topics
	}
	if len(tables.Affirmative) == 0 {
		tables.Affirmative = defaults.Affirmative
	}
	if len(tables.Negative) == 0 {
		tables.Negative = defaults.Negative
	}
	if len(tables.Control) == 0 {
		tables.Control = defaults.Control
	}
	if len(tables.Uncertain) == 0 {
		tables.Uncertain = defaults.Uncertain
	}
	return &Classifier{tables: tables}
}

// Default creates a classifier over the built-in tables.
func Default() *Classifier {
	return New(DefaultTables())
}

// Topic returns the divination topic, General when nothing matches.
func (c *Classifier) Topic(text string) Label {
	if label, ok := c.tables.Topics.Match(text); ok {
		return label
	}
	return General
}

// Sentiment classifies a yes/no answer. Negative wins when both match.
func (c *Classifier) Sentiment(text string) Sentiment {
	normalized := toLower(text)
	if containsAny(normalized, c.tables.Negative) {
		return SentimentNegative
	}
	if containsAny(normalized, c.tables.Uncertain) {
		return SentimentNone
	}
	if containsAny(normalized, c.tables.Affirmative) {
		return SentimentAffirmative
	}
	return SentimentNone
}

// HasControlWord reports whether text carries a topic or flow-control word.
func (c *Classifier) HasControlWord(text string) bool {
	normalized := toLower(text)
	return containsAny(normalized, c.tables.Control) ||
		containsAny(normalized, c.tables.Uncertain) ||
		containsAny(normalized, c.tables.Topics.Triggers())
}
