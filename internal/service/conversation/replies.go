package conversation

// Fixed replies. Kept together so the flowtester and tests can match on them.
const (
	ReplyDivinationUnavailable = "抱歉，占卜暂时没有回应。请稍后再把你的问题发给我一次。"
	ReplyChatUnavailable       = "抱歉，我这边刚才走神了，没能接上话。你可以再说一遍吗？"
	ReplyTopicClosed           = "好的，那这次就先聊到这里。之后如果想找某个人聊聊，直接告诉我 TA 的名字就可以。"
	ReplyAskWhichIdol          = "你想和谁聊聊？告诉我 TA 的名字，我帮你把 TA 请过来。"
	ReplyAskYesNo              = "需要我找一个人来陪你聊聊吗？回复“需要”或者“不需要”就好，也可以直接告诉我一个名字。"
	ReplyNameNotRecognized     = "这个名字我没能认出来。可以再发一次你想聊天的那个人的名字吗？"
	ReplyPersonaLost           = "抱歉，刚才的聊天对象信息丢失了。请重新告诉我你想和谁聊天。"
	ReplyInternalError         = "抱歉，刚才出了点小问题。请再发一次消息试试。"

	VirtualReminder = "本对话由虚拟 AI 人设扮演，仅供娱乐与情绪陪伴。"

	connectedFormat   = "已为你连线「%s」。\n\n%s"
	translationHeader = "\n\n【中文翻译】\n"
)
