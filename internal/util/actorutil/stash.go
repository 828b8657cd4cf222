package actorutil

import (
	"github.com/asynkron/protoactor-go/actor"
)

// Stash keeps messages an actor cannot handle in its current behavior.
// Replayed messages keep their original sender so responses still reach
// the requester.
type Stash struct {
	messages []stashedMessage
}

type stashedMessage struct {
	msg    any
	sender *actor.PID
}

func (s *Stash) Stash(ctx actor.Context, msg any) {
	s.messages = append(s.messages, stashedMessage{
		msg:    msg,
		sender: ctx.Sender(),
	})
}

func (s *Stash) Len() int {
	return len(s.messages)
}

func (s *Stash) UnstashAll(ctx actor.Context) {
	pending := s.messages
	s.messages = nil
	for _, m := range pending {
		replay(ctx, m)
	}
}

func (s *Stash) UnstashOldest(ctx actor.Context) {
	if len(s.messages) == 0 {
		return
	}
	first := s.messages[0]
	s.messages = s.messages[1:]
	replay(ctx, first)
}

func replay(ctx actor.Context, m stashedMessage) {
	if m.sender == nil {
		ctx.Send(ctx.Self(), m.msg)
		return
	}
	ctx.RequestWithCustomSender(ctx.Self(), m.msg, m.sender)
}
