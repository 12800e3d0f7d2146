package transform

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/sentryrelay/sentryrelay/pkg/types"
)

// Target selects the JSON shape of a Message.
type Target int

const (
	TextTarget Target = iota
	DialogTarget
)

// ParseTarget maps a configured format name to a Target.
func ParseTarget(s string) (Target, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "text":
		return TextTarget, nil
	case "dialog":
		return DialogTarget, nil
	default:
		return TextTarget, fmt.Errorf("transform: unknown target %q: want text|dialog", s)
	}
}

func (t Target) String() string {
	if t == DialogTarget {
		return "dialog"
	}
	return "text"
}

// Message is one outbound chat message.
type Message struct {
	Target   Target
	DialogID string
	Text     string
}

type textBody struct {
	Text string `json:"text"`
}

type dialogBody struct {
	DialogID string `json:"DIALOG_ID"`
	Message  string `json:"MESSAGE"`
}

// MarshalJSON encodes m in the shape its Target expects.
func (m Message) MarshalJSON() ([]byte, error) {
	if m.Target == DialogTarget {
		return json.Marshal(dialogBody{DialogID: m.DialogID, Message: m.Text})
	}
	return json.Marshal(textBody{Text: m.Text})
}

// Transformer filters payloads by environment and renders them as Messages.
// It holds no mutable state and is safe for concurrent use.
type Transformer struct {
	allowed  map[string]struct{}
	target   Target
	dialogID string
}

// New creates a Transformer. Environment names are trimmed and lowercased;
// blanks are dropped. An empty list disables filtering.
func New(allowed []string, target Target, dialogID string) *Transformer {
	t := &Transformer{
		allowed:  make(map[string]struct{}, len(allowed)),
		target:   target,
		dialogID: dialogID,
	}
	for _, env := range allowed {
		env = strings.ToLower(strings.TrimSpace(env))
		if env != "" {
			t.allowed[env] = struct{}{}
		}
	}
	return t
}

// Allowed reports whether a normalised environment passes the filter.
func (t *Transformer) Allowed(env string) bool {
	if len(t.allowed) == 0 {
		return true
	}
	_, ok := t.allowed[env]
	return ok
}

// Transform renders p as a Message. ok is false when p's environment is
// filtered out.
func (t *Transformer) Transform(p types.Payload) (msg Message, ok bool) {
	event := p.Event()
	if !t.Allowed(event.NormalizedEnvironment()) {
		return Message{}, false
	}

	lines := []string{
		field("ID", p.ID()),
		field("Project", p.ProjectName()),
		field("Environment", event.Environment()),
		field("Level", p.Level()),
		field("Culprit", p.Culprit()),
		field("Message", p.Message()),
		field("Platform", event.Platform()),
		field("URL", p.URL()),
	}

	msg = Message{Target: t.target, Text: strings.Join(lines, "\n")}
	if t.target == DialogTarget {
		msg.DialogID = t.dialogID
	}
	return msg, true
}

func field(label string, v any) string {
	return fmt.Sprintf("*%s*: %v", label, v)
}
