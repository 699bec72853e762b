package conversation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zhouzirui/idol-oracle/backend/internal/model/persona"
)

func TestNewSessionStartsInDivination(t *testing.T) {
	s := NewSession("")
	assert.NotEmpty(t, s.ID)
	assert.Equal(t, StageDivination, s.Stage)
	assert.Equal(t, StepNone, s.TransitionStep)
	assert.Nil(t, s.Persona)
}

func TestRecordDivinationMovesToTransition(t *testing.T) {
	for _, prior := range []TransitionStep{StepNone, StepAskMore, StepAskIdol} {
		s := NewSession("")
		if prior != StepNone {
			s.Stage = StageTransition
			s.TransitionStep = prior
		}
		_, err := s.RecordDivination("career", "q", "r")
		require.NoError(t, err)
		assert.Equal(t, StageTransition, s.Stage)
		assert.Equal(t, StepAskMore, s.TransitionStep, "prior step %q", prior)
		assert.Len(t, s.Divinations, 1)
	}
}

func TestRecordDivinationRejectedInIdolChat(t *testing.T) {
	s := NewSession("")
	s.Stage = StageIdolChat
	_, err := s.RecordDivination("love", "q", "r")
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Empty(t, s.Divinations)
}

func TestEnterIdolChatRequiresTransition(t *testing.T) {
	s := NewSession("")
	err := s.EnterIdolChat(persona.Default("Lady Gaga"))
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, StageDivination, s.Stage)

	_, err = s.RecordDivination("love", "q", "r")
	require.NoError(t, err)
	require.NoError(t, s.EnterIdolChat(persona.Default("Lady Gaga")))
	assert.Equal(t, StageIdolChat, s.Stage)
	assert.Equal(t, StepNone, s.TransitionStep)
	require.NotNil(t, s.Persona)
	assert.Equal(t, "Lady Gaga", s.Persona.Name)

	// persona is immutable once set
	s.Stage = StageTransition
	require.ErrorIs(t, s.EnterIdolChat(persona.Default("Other")), ErrIllegalTransition)
	assert.Equal(t, "Lady Gaga", s.Persona.Name)
}

func TestRollbackOnlyFromIdolChat(t *testing.T) {
	s := NewSession("")
	require.ErrorIs(t, s.RollbackToTransition(), ErrIllegalTransition)

	s.Stage = StageIdolChat
	require.NoError(t, s.RollbackToTransition())
	assert.Equal(t, StageTransition, s.Stage)
	assert.Equal(t, StepAskMore, s.TransitionStep)
}

func TestTransitionTable(t *testing.T) {
	allowed := map[[2]Stage]bool{
		{StageDivination, StageTransition}: true,
		{StageTransition, StageIdolChat}:   true,
		{StageIdolChat, StageTransition}:   true,
	}
	for _, from := range Stages() {
		for _, to := range Stages() {
			assert.Equal(t, allowed[[2]Stage{from, to}], CanTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestSetTransitionStepOutsideTransition(t *testing.T) {
	s := NewSession("")
	require.ErrorIs(t, s.SetTransitionStep(StepAskIdol), ErrIllegalTransition)
}

func TestRecentMessagesWindow(t *testing.T) {
	s := NewSession("")
	for i := 0; i < 15; i++ {
		s.AddMessage(RoleUser, string(rune('a'+i)))
	}
	recent := s.RecentMessages(10)
	require.Len(t, recent, 10)
	assert.Equal(t, "f", recent[0].Content)
	assert.Equal(t, "o", recent[9].Content)
}

func TestCloneIsDeep(t *testing.T) {
	s := NewSession("")
	s.AddMessage(RoleUser, "hi")
	cp := s.Clone()
	cp.Messages[0].Content = "changed"
	cp.AddMessage(RoleAssistant, "x")
	assert.Equal(t, "hi", s.Messages[0].Content)
	assert.Len(t, s.Messages, 1)
}
