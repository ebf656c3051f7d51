package marble

import (
	"slices"

	"github.com/roach88/marbles/internal/ir"
)

// ParseMarbles converts a value diagram into its notifications.
//
// Frames are relative to '^' when present, so messages before it get
// negative frames. Nothing is emitted after '|' or '#', but the rest of the
// diagram is still checked.
func ParseMarbles(marbles string, opts ...Option) ([]ir.TestMessage, error) {
	cfg := newConfig(opts)
	src := normalize(marbles)

	var (
		msgs       []ir.TestMessage
		frame      int64
		groupPos   = -1
		caretSeen  bool
		caretFrame int64
		terminated bool
	)
	advance := func() {
		if groupPos < 0 {
			frame += cfg.factor
		}
	}

	for _, tok := range lex(src, cfg.runMode) {
		switch tok.kind {
		case tokSilence:
			advance()
		case tokGroupOpen:
			if groupPos >= 0 {
				return nil, syntaxErrorf(marbles, tok.pos, "nested groups are not allowed")
			}
			groupPos = tok.pos
		case tokGroupClose:
			if groupPos < 0 {
				return nil, syntaxErrorf(marbles, tok.pos, "unbalanced ')'")
			}
			groupPos = -1
			frame += cfg.factor
		case tokTime:
			if groupPos >= 0 {
				return nil, syntaxErrorf(marbles, tok.pos, "time progression inside a group")
			}
			frame += tok.frames
		case tokSubscribe:
			if caretSeen {
				return nil, syntaxErrorf(marbles, tok.pos, "only one subscription point '^' is allowed")
			}
			caretSeen = true
			caretFrame = frame
			advance()
		case tokUnsubscribe:
			return nil, syntaxErrorf(marbles, tok.pos, "value diagrams cannot have an unsubscription point '!'")
		case tokComplete, tokError, tokValue:
			if !terminated {
				msgs = append(msgs, cfg.message(frame, tok))
				terminated = tok.kind != tokValue
			}
			advance()
		}
	}
	if groupPos >= 0 {
		return nil, syntaxErrorf(marbles, groupPos, "unbalanced '('")
	}

	if caretSeen {
		for i := range msgs {
			msgs[i].Frame -= caretFrame
		}
	}
	return msgs, nil
}

func (c config) message(frame int64, tok token) ir.TestMessage {
	switch tok.kind {
	case tokComplete:
		return ir.CompleteAt(frame)
	case tokError:
		return ir.ErrorAt(frame, c.err)
	}
	var v any = tok.char
	if c.values != nil {
		if mapped, ok := c.values[tok.char]; ok {
			v = mapped
		}
	}
	if c.materialize != nil {
		if inner, ok := c.materialize(v); ok {
			v = inner
		}
	}
	return ir.NextAt(frame, v)
}

// ParseMarblesAsSubscriptions converts a subscription diagram into a
// SubscriptionLog. Only '-', whitespace, groups, '^', '!' and (in run mode)
// time progression are allowed. An empty diagram means never subscribed.
func ParseMarblesAsSubscriptions(marbles string, opts ...Option) (ir.SubscriptionLog, error) {
	cfg := newConfig(opts)
	src := normalize(marbles)
	log := ir.SubscriptionLog{Subscribed: ir.Infinity, Unsubscribed: ir.Infinity}

	var (
		frame     int64
		groupPos  = -1
		unsubPos  = -1
		subscribe bool
	)
	advance := func() {
		if groupPos < 0 {
			frame += cfg.factor
		}
	}

	for _, tok := range lex(src, cfg.runMode) {
		switch tok.kind {
		case tokSilence:
			advance()
		case tokGroupOpen:
			if groupPos >= 0 {
				return log, syntaxErrorf(marbles, tok.pos, "nested groups are not allowed")
			}
			groupPos = tok.pos
		case tokGroupClose:
			if groupPos < 0 {
				return log, syntaxErrorf(marbles, tok.pos, "unbalanced ')'")
			}
			groupPos = -1
			frame += cfg.factor
		case tokTime:
			if groupPos >= 0 {
				return log, syntaxErrorf(marbles, tok.pos, "time progression inside a group")
			}
			frame += tok.frames
		case tokSubscribe:
			if subscribe {
				return log, syntaxErrorf(marbles, tok.pos, "only one subscription point '^' is allowed")
			}
			subscribe = true
			log.Subscribed = frame
			advance()
		case tokUnsubscribe:
			if unsubPos >= 0 {
				return log, syntaxErrorf(marbles, tok.pos, "only one unsubscription point '!' is allowed")
			}
			unsubPos = tok.pos
			log.Unsubscribed = frame
			advance()
		default:
			return log, syntaxErrorf(marbles, tok.pos,
				"subscription diagrams may only contain '^', '!', '-', groups and time; found %q",
				[]rune(src)[tok.pos])
		}
	}
	if groupPos >= 0 {
		return log, syntaxErrorf(marbles, groupPos, "unbalanced '('")
	}
	if unsubPos >= 0 && (!subscribe || log.Unsubscribed < log.Subscribed) {
		return log, syntaxErrorf(marbles, unsubPos, "unsubscription point '!' before subscription point '^'")
	}
	return log, nil
}

// CreateTime returns the frame of the '|' in a timing diagram such as
// "-----|".
func CreateTime(marbles string, opts ...Option) (int64, error) {
	msgs, err := ParseMarbles(marbles, opts...)
	if err != nil {
		return 0, err
	}
	i := slices.IndexFunc(msgs, func(m ir.TestMessage) bool {
		return m.Notification.Kind == ir.KindComplete
	})
	if i < 0 {
		return 0, syntaxErrorf(marbles, len([]rune(marbles)), "time diagrams need a completion marker '|'")
	}
	return msgs[i].Frame, nil
}
