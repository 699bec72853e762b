package main

import (
	"context"
	"fmt"
	"strings"
)

// echoCompleter answers every prompt kind the engine sends with canned text so
// the whole flow can be walked offline.
type echoCompleter struct{}

func (echoCompleter) Complete(_ context.Context, prompt string) (string, error) {
	switch {
	case strings.Contains(prompt, "XML 标签"):
		return `<hexagram>第11卦 地天泰</hexagram>
<source>《易经》泰卦：小往大来，吉亨。</source>
<interpretation>天地交泰，当下的困惑正在慢慢疏通。</interpretation>
<advice><item>先整理眼前最具体的一件事</item><item>给自己留一点休息的时间</item></advice>
<comfort>你已经做得很好了。</comfort>
<question>最近最让你在意的是哪一件小事？</question>`, nil
	case strings.Contains(prompt, "[母语]"):
		return `[母语] zh
[语速] 适中
[语气] 温柔
[情绪表达] 克制而真诚
[回应习惯] 先倾听再回应
[避免风格] 说教
[可参考范围] 公开采访与舞台表现
[禁止范围] 私生活与未公开信息
[开场白] 嗨，我在呢，今天想聊点什么？`, nil
	case strings.HasPrefix(prompt, "Translate"):
		return "（离线翻译）", nil
	default:
		return fmt.Sprintf("我听到了：%s", lastUserLine(prompt)), nil
	}
}

// lastUserLine returns the last "用户：" line of a chat prompt.
func lastUserLine(prompt string) string {
	lines := strings.Split(prompt, "\n")
	for i := len(lines) - 1; i >= 0; i-- {
		line := strings.TrimSpace(lines[i])
		if rest, ok := strings.CutPrefix(line, "用户："); ok {
			return rest
		}
	}
	return "……"
}
