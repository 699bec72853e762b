package conversation

import "errors"

// Stage 表示会话所处的顶层阶段。
type Stage string

const (
	StageDivination Stage = "DIVINATION"
	StageTransition Stage = "TRANSITION"
	StageIdolChat   Stage = "IDOL_CHAT"
)

// TransitionStep 仅在 StageTransition 下有意义。
type TransitionStep string

const (
	StepNone    TransitionStep = ""
	StepAskMore TransitionStep = "ASK_MORE"
	StepAskIdol TransitionStep = "ASK_IDOL"
)

// ErrIllegalTransition 表示尝试了状态表之外的阶段迁移。
var ErrIllegalTransition = errors.New("illegal stage transition")

// Stages 按推进顺序列出全部阶段，供分发处穷举校验。
func Stages() []Stage {
	return []Stage{StageDivination, StageTransition, StageIdolChat}
}

// Valid reports whether s is one of the declared stages.
func (s Stage) Valid() bool {
	switch s {
	case StageDivination, StageTransition, StageIdolChat:
		return true
	default:
		return false
	}
}

func (s Stage) String() string { return string(s) }

// Valid reports whether t is one of the declared steps.
func (t TransitionStep) Valid() bool {
	switch t {
	case StepNone, StepAskMore, StepAskIdol:
		return true
	default:
		return false
	}
}

// allowedTransitions 是唯一合法的阶段迁移表；IDOL_CHAT -> TRANSITION 只用于人设缺失时回滚。
var allowedTransitions = map[Stage][]Stage{
	StageDivination: {StageTransition},
	StageTransition: {StageIdolChat},
	StageIdolChat:   {StageTransition},
}

// CanTransition reports whether from -> to is a permitted edge.
func CanTransition(from, to Stage) bool {
	for _, next := range allowedTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}
