package divination

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/idol-oracle/backend/internal/analysis/intent"
	"github.com/zhouzirui/idol-oracle/backend/internal/service/llm"
)

type scriptedCompleter struct {
	replies []string
	errs    []error
	prompts []string
}

func (s *scriptedCompleter) Complete(_ context.Context, prompt string) (string, error) {
	i := len(s.prompts)
	s.prompts = append(s.prompts, prompt)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return s.replies[len(s.replies)-1], nil
}

func TestTypesOrder(t *testing.T) {
	var got []intent.Label
	for _, info := range Types() {
		got = append(got, info.Type)
	}
	assert.Equal(t, []intent.Label{intent.Love, intent.Career, intent.Fortune, intent.Study, intent.General}, got)
}

func TestParseType(t *testing.T) {
	kind, ok := ParseType(" Career ")
	assert.True(t, ok)
	assert.Equal(t, intent.Career, kind)

	for _, raw := range []string{"", "tarot", "爱情"} {
		_, ok := ParseType(raw)
		assert.False(t, ok, raw)
	}
}

func TestBuildPromptCarriesKindQuestionAndSchema(t *testing.T) {
	text, err := BuildPrompt(intent.Love, "我和我的伴侣会有未来吗？")
	require.NoError(t, err)

	assert.Contains(t, text, "占卜类型：love")
	assert.Contains(t, text, "我和我的伴侣会有未来吗？")
	assert.Contains(t, text, "请严格按照以下 XML 标签格式输出")
	assert.NotContains(t, text, "特别提醒")
}

func TestDivineRendersTaggedReply(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"<hexagram>第1卦 乾卦</hexagram><interpretation>天行健</interpretation>"}}
	svc := NewService(completer, nil)

	out, err := svc.Divine(context.Background(), intent.Career, "我的事业怎么样？")
	require.NoError(t, err)

	assert.Equal(t, intent.Career, out.Kind)
	assert.Equal(t, MethodTags, out.Method)
	assert.Equal(t, "【第1卦 乾卦】\n\n天行健", out.Text)
	require.Len(t, completer.prompts, 1)
	assert.Contains(t, completer.prompts[0], "占卜类型：career（事业）")
}

func TestDivineUnknownKindFallsBackToGeneral(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{"<hexagram>A</hexagram>"}}
	out, err := NewService(completer, nil).Divine(context.Background(), "weather", "q")
	require.NoError(t, err)
	assert.Equal(t, intent.General, out.Kind)
}

func TestDivineRegeneratesOnFatalisticWording(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		"<hexagram>A</hexagram><interpretation>你注定失败</interpretation>",
		"<hexagram>A</hexagram><interpretation>你可能会遇到挑战</interpretation>",
	}}

	out, err := NewService(completer, nil).Divine(context.Background(), intent.Fortune, "q")
	require.NoError(t, err)

	require.Len(t, completer.prompts, 2)
	assert.Contains(t, completer.prompts[1], "特别提醒")
	assert.Contains(t, completer.prompts[1], "注定")
	assert.False(t, out.Softened)
	assert.Contains(t, out.Text, "你可能会遇到挑战")
}

func TestDivineSoftensWhenRegenerationStillViolates(t *testing.T) {
	completer := &scriptedCompleter{replies: []string{
		"<hexagram>A</hexagram><interpretation>必然有灾难</interpretation>",
	}}

	out, err := NewService(completer, nil).Divine(context.Background(), intent.Fortune, "q")
	require.NoError(t, err)

	assert.True(t, out.Softened)
	assert.Empty(t, CheckCompliance(out.Text))
	assert.Contains(t, out.Text, "可能有考验")
}

func TestDivineSoftensFirstReplyWhenRegenerationFails(t *testing.T) {
	completer := &scriptedCompleter{
		replies: []string{"<hexagram>A</hexagram><interpretation>一定会成功</interpretation>"},
		errs:    []error{nil, llm.ErrUpstream},
	}

	out, err := NewService(completer, nil).Divine(context.Background(), intent.Career, "q")
	require.NoError(t, err)
	assert.Contains(t, out.Text, "可能会成功")
}

func TestDivineReturnsUpstreamError(t *testing.T) {
	completer := &scriptedCompleter{errs: []error{errors.Join(llm.ErrUpstream, errors.New("timeout"))}, replies: []string{""}}

	_, err := NewService(completer, nil).Divine(context.Background(), intent.Love, "q")
	assert.ErrorIs(t, err, llm.ErrUpstream)
}

func TestSoftenAndCheckCompliance(t *testing.T) {
	text := "You are DOOMED, 注定如此，一定会有灾难，inevitably."
	hits := CheckCompliance(text)
	assert.ElementsMatch(t, []string{"一定会", "注定", "灾难", "inevitably", "doomed"}, hits)

	softened := Soften(text)
	assert.Empty(t, CheckCompliance(softened))
	assert.True(t, strings.HasPrefix(softened, "You are challenged, 或许如此，可能会有考验"))
}
