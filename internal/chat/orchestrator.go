package chat

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"basera/internal/domain"
	"basera/internal/models"
	"basera/internal/tools"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

var (
	// ErrConversationBusy means a cycle is already in flight for the
	// conversation. Submissions are dropped, never queued.
	ErrConversationBusy = errors.New("conversation busy")

	ErrConversationNotFound = errors.New("conversation not found")

	// ErrNoPendingPrompt means an answer arrived with nothing to answer.
	ErrNoPendingPrompt = errors.New("no pending prompt")
)

// Orchestrator drives conversations: it feeds history to the model gateway,
// executes backend tool calls through the dispatcher, and suspends on
// UI-prompting tools until the surface delivers an answer.
type Orchestrator struct {
	repo       domain.ConversationRepository
	gateway    domain.ModelGateway
	dispatcher domain.ToolDispatcher
	logger     *zerolog.Logger

	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func NewOrchestrator(repo domain.ConversationRepository, gateway domain.ModelGateway, dispatcher domain.ToolDispatcher, logger *zerolog.Logger) *Orchestrator {
	if logger == nil {
		nop := zerolog.Nop()
		logger = &nop
	}
	l := logger.With().Str("component", "orchestrator").Logger()
	return &Orchestrator{
		repo:       repo,
		gateway:    gateway,
		dispatcher: dispatcher,
		logger:     &l,
		locks:      make(map[string]*sync.Mutex),
	}
}

// StartConversation creates a new conversation seeded with the greeting turn.
func (o *Orchestrator) StartConversation(ctx context.Context) (*models.Conversation, error) {
	conv := &models.Conversation{
		ID:      uuid.NewString(),
		History: []models.ChatMessage{models.TextMessage(models.RoleModel, models.GreetingText)},
		State:   models.StateIdle,
	}
	if err := o.repo.SaveConversation(ctx, conv); err != nil {
		return nil, fmt.Errorf("save conversation: %w", err)
	}
	o.logger.Info().Str("conversation_id", conv.ID).Msg("conversation started")
	return conv, nil
}

func (o *Orchestrator) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	conv, err := o.repo.GetConversation(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get conversation: %w", err)
	}
	if conv == nil {
		return nil, ErrConversationNotFound
	}
	return conv, nil
}

// HandleUserMessage appends a user text turn and runs the gateway loop until
// the conversation reaches Idle or suspends on a prompt.
func (o *Orchestrator) HandleUserMessage(ctx context.Context, id string, text string) (*models.Conversation, error) {
	lock := o.lockFor(id)
	if !lock.TryLock() {
		return nil, ErrConversationBusy
	}
	defer lock.Unlock()

	conv, err := o.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}

	// Typing over a pending prompt abandons it. The suspended call still
	// needs a result turn so the resent history stays well-formed.
	if conv.Pending != nil {
		o.resolvePending(conv, map[string]any{"success": true})
	}

	conv.History = append(conv.History, models.TextMessage(models.RoleUser, text))
	return o.runCycle(ctx, conv)
}

// HandlePromptAnswer resolves the pending prompt and resumes the cycle with a
// synthesized user turn.
func (o *Orchestrator) HandlePromptAnswer(ctx context.Context, id string, answer models.PromptAnswer) (*models.Conversation, error) {
	lock := o.lockFor(id)
	if !lock.TryLock() {
		return nil, ErrConversationBusy
	}
	defer lock.Unlock()

	conv, err := o.GetConversation(ctx, id)
	if err != nil {
		return nil, err
	}
	if conv.Pending == nil || conv.State != models.StateAwaitingUserChoice {
		return nil, ErrNoPendingPrompt
	}

	var text string
	if conv.Pending.Kind == models.PromptDates {
		text = fmt.Sprintf("I'd like to book from %s to %s.", answer.StartDate, answer.EndDate)
	} else {
		text = fmt.Sprintf("I choose: %s", answer.Value)
	}

	o.resolvePending(conv, map[string]any{"success": true})
	conv.History = append(conv.History, models.TextMessage(models.RoleUser, text))
	return o.runCycle(ctx, conv)
}

// runCycle loops gateway calls until the model yields text, requests user
// input, or renders a confirmation. The conversation is saved in every exit
// path, including gateway failure.
func (o *Orchestrator) runCycle(ctx context.Context, conv *models.Conversation) (*models.Conversation, error) {
	conv.State = models.StateAwaitingModel

	for {
		reply, err := o.gateway.Generate(ctx, conv.History)
		if err != nil {
			o.logger.Error().Err(err).Str("conversation_id", conv.ID).Msg("gateway call failed")
			conv.History = append(conv.History, models.TextMessage(models.RoleModel, models.ApologyText))
			conv.State = models.StateIdle
			return conv, o.save(ctx, conv)
		}

		if len(reply.FunctionCalls) == 0 {
			conv.History = append(conv.History, models.TextMessage(models.RoleModel, reply.Text))
			conv.State = models.StateIdle
			return conv, o.save(ctx, conv)
		}

		// Only the first call is honored. Multiple simultaneous calls are
		// a known simplification of the flow.
		call := reply.FunctionCalls[0]
		o.logger.Debug().Str("conversation_id", conv.ID).Str("tool", call.Name).Msg("function call")

		switch call.Name {
		case models.ToolPromptChoice, models.ToolPromptDates, models.ToolPromptGuests:
			conv.History = append(conv.History, callTurn(call))
			conv.Pending = pendingPrompt(call)
			conv.State = models.StateAwaitingUserChoice
			return conv, o.save(ctx, conv)

		case models.ToolDisplayConfirmation:
			turn := models.TextMessage(models.RoleModel, models.ConfirmationText)
			if booking, err := tools.BookingFromArgs(call.Args); err == nil {
				turn.BookingDetails = booking
			} else {
				o.logger.Warn().Err(err).Str("conversation_id", conv.ID).Msg("malformed confirmation payload")
			}
			conv.History = append(conv.History, turn)
			conv.State = models.StateIdle
			return conv, o.save(ctx, conv)

		default:
			resp := o.dispatcher.Dispatch(ctx, call)
			conv.History = append(conv.History, callTurn(call), resultTurn(resp))
			// Loop: the model must see the tool result before any further
			// output.
		}
	}
}

// resolvePending appends the tool-result turn for the suspended prompt call
// and clears it.
func (o *Orchestrator) resolvePending(conv *models.Conversation, result map[string]any) {
	conv.History = append(conv.History, resultTurn(models.FunctionResponse{
		Name:     conv.Pending.Tool,
		Response: result,
	}))
	conv.Pending = nil
}

func (o *Orchestrator) save(ctx context.Context, conv *models.Conversation) error {
	if err := o.repo.SaveConversation(ctx, conv); err != nil {
		return fmt.Errorf("save conversation: %w", err)
	}
	return nil
}

func (o *Orchestrator) lockFor(id string) *sync.Mutex {
	o.mu.Lock()
	defer o.mu.Unlock()
	lock, ok := o.locks[id]
	if !ok {
		lock = &sync.Mutex{}
		o.locks[id] = lock
	}
	return lock
}

func callTurn(call models.FunctionCall) models.ChatMessage {
	c := call
	return models.ChatMessage{
		Role:  models.RoleModel,
		Parts: []models.ChatPart{{FunctionCall: &c}},
	}
}

func resultTurn(resp models.FunctionResponse) models.ChatMessage {
	r := resp
	return models.ChatMessage{
		Role:  models.RoleTool,
		Parts: []models.ChatPart{{FunctionResponse: &r}},
	}
}

func pendingPrompt(call models.FunctionCall) *models.PendingPrompt {
	p := &models.PendingPrompt{Tool: call.Name}
	if label, ok := call.Args["label"].(string); ok {
		p.Label = label
	}

	switch call.Name {
	case models.ToolPromptChoice:
		p.Kind = models.PromptChoice
		if raw, ok := call.Args["options"].([]any); ok {
			for _, v := range raw {
				if s, ok := v.(string); ok {
					p.Options = append(p.Options, s)
				}
			}
		}
	case models.ToolPromptDates:
		p.Kind = models.PromptDates
	case models.ToolPromptGuests:
		p.Kind = models.PromptGuests
	}
	return p
}
