package marble

import (
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"

	"github.com/roach88/marbles/internal/ir"
)

// Serialize prints msgs as a value diagram, the inverse of ParseMarbles.
//
// Messages must be in frame order at non-negative multiples of the frame
// time factor. Messages sharing a frame become a group. Next values are
// printed with the value map key whose value is equal, or as themselves when
// they are single-character strings. Trailing silence is not represented.
func Serialize(msgs []ir.TestMessage, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	keys := cfg.sortedKeys()

	var b strings.Builder
	var pos int64
	for i := 0; i < len(msgs); {
		f := msgs[i].Frame
		j := i + 1
		for j < len(msgs) && msgs[j].Frame == f {
			j++
		}
		p, err := cfg.position(f)
		if err != nil {
			return "", err
		}
		if p < pos {
			return "", fmt.Errorf("marble: message at frame %d is out of order", f)
		}
		b.WriteString(strings.Repeat("-", int(p-pos)))

		group := msgs[i:j]
		if len(group) > 1 {
			b.WriteByte('(')
		}
		for _, m := range group {
			sym, err := cfg.symbol(m.Notification, keys)
			if err != nil {
				return "", fmt.Errorf("marble: frame %d: %w", f, err)
			}
			b.WriteString(sym)
		}
		if len(group) > 1 {
			b.WriteByte(')')
		}
		pos = p + 1
		i = j
	}
	return b.String(), nil
}

// SerializeSubscription prints a subscription log as a subscription
// diagram, the inverse of ParseMarblesAsSubscriptions.
func SerializeSubscription(log ir.SubscriptionLog, opts ...Option) (string, error) {
	cfg := newConfig(opts)
	if log.Subscribed == ir.Infinity {
		return "", nil
	}
	sub, err := cfg.position(log.Subscribed)
	if err != nil {
		return "", err
	}
	lead := strings.Repeat("-", int(sub))
	if log.Open() {
		return lead + "^", nil
	}
	unsub, err := cfg.position(log.Unsubscribed)
	if err != nil {
		return "", err
	}
	switch {
	case unsub < sub:
		return "", fmt.Errorf("marble: unsubscribed at %d before subscribed at %d", log.Unsubscribed, log.Subscribed)
	case unsub == sub:
		return lead + "(^!)", nil
	default:
		return lead + "^" + strings.Repeat("-", int(unsub-sub-1)) + "!", nil
	}
}

// position converts a frame into a character index.
func (c config) position(frame int64) (int64, error) {
	if frame < 0 || frame%c.factor != 0 {
		return 0, fmt.Errorf("marble: frame %d is not a non-negative multiple of %d", frame, c.factor)
	}
	return frame / c.factor, nil
}

func (c config) sortedKeys() []string {
	keys := make([]string, 0, len(c.values))
	for k := range c.values {
		if printable(k) {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)
	return keys
}

func (c config) symbol(n ir.Notification, keys []string) (string, error) {
	switch n.Kind {
	case ir.KindComplete:
		return "|", nil
	case ir.KindError:
		return "#", nil
	}
	for _, k := range keys {
		if assert.ObjectsAreEqual(c.values[k], n.Value) {
			return k, nil
		}
	}
	if s, ok := n.Value.(string); ok && printable(s) {
		return s, nil
	}
	return "", fmt.Errorf("no single-character symbol for value %v", n.Value)
}

// printable reports whether s is one non-reserved character.
func printable(s string) bool {
	s = normalize(s)
	if utf8.RuneCountInString(s) != 1 {
		return false
	}
	r, _ := utf8.DecodeRuneInString(s)
	return !isReserved(r)
}
