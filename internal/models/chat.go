package models

import "time"

type ChatRole string

const (
	RoleUser  ChatRole = "user"
	RoleModel ChatRole = "model"
	RoleTool  ChatRole = "tool"
)

// FunctionCall is a structured action request emitted by the model.
type FunctionCall struct {
	Name string         `json:"name"`
	Args map[string]any `json:"args"`
}

// FunctionResponse is the tool result fed back to the model.
type FunctionResponse struct {
	Name     string         `json:"name"`
	Response map[string]any `json:"response"`
}

// ChatPart holds exactly one of text, a function call, or a function response.
type ChatPart struct {
	Text             string            `json:"text,omitempty"`
	FunctionCall     *FunctionCall     `json:"function_call,omitempty"`
	FunctionResponse *FunctionResponse `json:"function_response,omitempty"`
}

// ChatMessage is one turn of the conversation history. BookingDetails is
// attached when the turn renders a confirmation receipt; the booking itself
// stays owned by the store.
type ChatMessage struct {
	Role           ChatRole   `json:"role"`
	Parts          []ChatPart `json:"parts"`
	BookingDetails *Booking   `json:"booking_details,omitempty"`
}

func TextMessage(role ChatRole, text string) ChatMessage {
	return ChatMessage{Role: role, Parts: []ChatPart{{Text: text}}}
}

// ModelReply is the parsed gateway response. FunctionCalls take precedence
// over Text when both are present.
type ModelReply struct {
	Text          string
	FunctionCalls []FunctionCall
}

type PromptKind string

const (
	PromptChoice PromptKind = "choice"
	PromptDates  PromptKind = "dates"
	PromptGuests PromptKind = "guests"
)

// PendingPrompt describes the structured input widget the surface must show.
// It lives on the conversation only between the model requesting it and the
// user answering it.
type PendingPrompt struct {
	Kind    PromptKind `json:"kind"`
	Tool    string     `json:"tool"`
	Label   string     `json:"label"`
	Options []string   `json:"options,omitempty"`
}

// PromptAnswer is the surface's reply to a pending prompt: a single value
// for choice/guests, a date pair for dates.
type PromptAnswer struct {
	Value     string `json:"value,omitempty"`
	StartDate string `json:"start_date,omitempty"`
	EndDate   string `json:"end_date,omitempty"`
}

type ConversationState string

const (
	StateIdle               ConversationState = "idle"
	StateAwaitingModel      ConversationState = "awaiting_model"
	StateAwaitingUserChoice ConversationState = "awaiting_user_choice"
)

// Conversation is the per-chat state kept in the conversation repository.
type Conversation struct {
	ID        string            `json:"id"`
	History   []ChatMessage     `json:"history"`
	State     ConversationState `json:"state"`
	Pending   *PendingPrompt    `json:"pending,omitempty"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// Clone returns a copy safe to hand to another goroutine. History, Pending
// and part pointers are copied; argument maps inside parts are write-once
// after append and stay shared.
func (c *Conversation) Clone() *Conversation {
	if c == nil {
		return nil
	}
	out := *c
	if c.History != nil {
		out.History = make([]ChatMessage, len(c.History))
		for i := range c.History {
			out.History[i] = c.History[i].clone()
		}
	}
	out.Pending = c.Pending.clone()
	return &out
}

func (m ChatMessage) clone() ChatMessage {
	out := m
	if m.Parts != nil {
		out.Parts = make([]ChatPart, len(m.Parts))
		copy(out.Parts, m.Parts)
		for i := range out.Parts {
			if fc := out.Parts[i].FunctionCall; fc != nil {
				c := *fc
				out.Parts[i].FunctionCall = &c
			}
			if fr := out.Parts[i].FunctionResponse; fr != nil {
				c := *fr
				out.Parts[i].FunctionResponse = &c
			}
		}
	}
	if m.BookingDetails != nil {
		b := *m.BookingDetails
		out.BookingDetails = &b
	}
	return out
}

func (p *PendingPrompt) clone() *PendingPrompt {
	if p == nil {
		return nil
	}
	out := *p
	if p.Options != nil {
		out.Options = append([]string(nil), p.Options...)
	}
	return &out
}
