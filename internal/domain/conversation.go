package domain

// Turn is one entry of a session's history: either a UserTurn or an AssistantTurn.
type Turn interface {
	isTurn()
}

// UserTurn is a prompt the user sent to the participant.
type UserTurn struct {
	Prompt  string
	Command string
}

// AssistantTurn is a reply, stored as the parts the host recorded for it.
type AssistantTurn struct {
	Parts []ResponsePart
}

func (UserTurn) isTurn()      {}
func (AssistantTurn) isTurn() {}

// ResponsePart is one fragment kind of a recorded reply: MarkdownPart or OtherPart.
type ResponsePart interface {
	isResponsePart()
}

type MarkdownPart struct {
	Text string
}

// OtherPart covers anchors, file trees, buttons and any other non-markdown output.
type OtherPart struct {
	Kind  string
	Value string
}

func (MarkdownPart) isResponsePart() {}
func (OtherPart) isResponsePart()    {}

// MarkdownText concatenates the markdown parts of a reply, in order.
func (t AssistantTurn) MarkdownText() string {
	var out string
	for _, p := range t.Parts {
		if md, ok := p.(MarkdownPart); ok {
			out += md.Text
		}
	}
	return out
}

// ChatRequest is a single request addressed to the participant.
type ChatRequest struct {
	Prompt  string
	Command string
}

// ModelMessage is a role-tagged message submitted to the language model.
type ModelMessage struct {
	Role    Role
	Content string
}

// ChatEntry is one message of the chat panel log.
type ChatEntry struct {
	ID        EntryID   `json:"id,omitempty"`
	Sender    Sender    `json:"sender"`
	Text      string    `json:"text"`
	CreatedAt Timestamp `json:"created_at"`
}

// Selection is the text currently selected in the active editor.
type Selection struct {
	Text     string
	FileName string
}
