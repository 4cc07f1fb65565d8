package llm

import (
	"context"
	"fmt"
	"math/rand"
	"strings"
	"sync"

	openai "github.com/sashabaranov/go-openai"

	"github.com/argentmirror/argent-core/internal/assistant/fuzzy"
	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/config"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

// controlFunctionName is the tool the model calls for device control.
const controlFunctionName = "control_devices"

// defaultHistoryTurns bounds the replayed conversation when the
// configuration does not say otherwise.
const defaultHistoryTurns = 10

// chatClient is the slice of the OpenAI client the assistant uses.
// Narrowed to an interface so tests can substitute a fake.
type chatClient interface {
	CreateChatCompletion(ctx context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error)
}

// Home is the slice of the home registry the assistant needs: the
// device inventory for the system prompt and criteria resolution, and
// the mutation entry point.
type Home interface {
	Rooms() []*home.Room
	RoomNames() []string
	UpdateDevice(ctx context.Context, deviceID string, change home.StateChange) error
}

// Assistant is the conversational fallback client.
//
// All methods are safe for concurrent use; a new Ask cancels any
// request still in flight (most recent wins).
type Assistant struct {
	client        chatClient
	home          Home
	log           *logging.Logger
	cfg           config.LLMConfig
	roomThreshold float64

	mu      sync.Mutex
	history []openai.ChatCompletionMessage
	cancel  context.CancelFunc
}

// New creates the assistant from configuration. roomThreshold governs
// fuzzy room resolution in tool calls; values <= 0 fall back to
// fuzzy.DefaultThreshold.
//
// A disabled config or missing API key yields an assistant that only
// ever produces canned replies, so callers need no nil checks.
func New(cfg config.LLMConfig, h Home, log *logging.Logger, roomThreshold float64) *Assistant {
	if log == nil {
		log = logging.Default()
	}
	if roomThreshold <= 0 {
		roomThreshold = fuzzy.DefaultThreshold
	}

	a := &Assistant{
		home:          h,
		log:           log,
		cfg:           cfg,
		roomThreshold: roomThreshold,
	}

	if cfg.Enabled && cfg.APIKey != "" {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		a.client = openai.NewClientWithConfig(clientCfg)
	}

	return a
}

// Enabled reports whether a remote model is configured.
func (a *Assistant) Enabled() bool {
	return a.client != nil
}

// Ask sends the text to the model and returns the reply.
//
// Never returns an error and never surfaces provider errors: any
// failure produces a canned local reply instead.
func (a *Assistant) Ask(ctx context.Context, text string) string {
	if a.client == nil {
		return a.canned(text)
	}

	ctx, cancel := context.WithTimeout(ctx, a.cfg.GetRequestTimeout())

	// Most recent request wins: cancel whatever is still in flight.
	a.mu.Lock()
	if a.cancel != nil {
		a.cancel()
	}
	a.cancel = cancel
	messages := a.buildMessages(text)
	a.mu.Unlock()

	defer cancel()

	resp, err := a.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    a.cfg.Model,
		Messages: messages,
		Tools: []openai.Tool{{
			Type:     openai.ToolTypeFunction,
			Function: controlFunction(),
		}},
	})
	if err != nil {
		a.log.Warn("assistant request failed", "error", err)
		return a.canned(text)
	}
	if len(resp.Choices) == 0 {
		a.log.Warn("assistant returned no choices")
		return a.canned(text)
	}

	msg := resp.Choices[0].Message

	var reply string
	if call := findControlCall(msg); call != nil {
		reply = a.handleControlCall(ctx, call.Function.Arguments)
	} else {
		reply = a.withFollowUp(strings.TrimSpace(msg.Content))
	}
	if reply == "" {
		return a.canned(text)
	}

	a.remember(text, reply)
	return reply
}

// buildMessages assembles system prompt, bounded history and the new
// user turn. Caller holds the mutex.
func (a *Assistant) buildMessages(text string) []openai.ChatCompletionMessage {
	messages := make([]openai.ChatCompletionMessage, 0, len(a.history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: a.systemPrompt(),
	})
	messages = append(messages, a.history...)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: text,
	})
	return messages
}

// remember appends the exchange to the bounded history.
func (a *Assistant) remember(userText, reply string) {
	turns := a.cfg.HistoryTurns
	if turns <= 0 {
		turns = defaultHistoryTurns
	}

	a.mu.Lock()
	defer a.mu.Unlock()

	a.history = append(a.history,
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: userText},
		openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: reply},
	)
	if limit := turns * 2; len(a.history) > limit {
		a.history = a.history[len(a.history)-limit:]
	}
}

// systemPrompt enumerates the live device inventory so the model can
// target real devices.
func (a *Assistant) systemPrompt() string {
	var b strings.Builder
	b.WriteString("You are a friendly smart home assistant. ")
	b.WriteString("When the user wants to control devices, call the control_devices function instead of describing what you would do. ")
	b.WriteString("Keep spoken replies short.\n\nThe home contains:\n")

	for _, room := range a.home.Rooms() {
		fmt.Fprintf(&b, "- %s:", room.Name)
		if len(room.Devices) == 0 {
			b.WriteString(" (no devices)")
		}
		for i := range room.Devices {
			d := &room.Devices[i]
			state := "off"
			if d.On {
				state = "on"
			}
			fmt.Fprintf(&b, " %s (%s, %s);", d.Name, d.Type, state)
		}
		b.WriteString("\n")
	}

	return b.String()
}

func findControlCall(msg openai.ChatCompletionMessage) *openai.ToolCall {
	for i := range msg.ToolCalls {
		if msg.ToolCalls[i].Function.Name == controlFunctionName {
			return &msg.ToolCalls[i]
		}
	}
	return nil
}

// followUps are appended to plain replies now and then to keep the
// conversation moving.
var followUps = []string{
	"Is there anything else you'd like me to adjust?",
	"Anything else I can help with?",
	"Would you like me to change anything else?",
}

// withFollowUp appends a scripted follow-up question unless the reply
// already invites one.
func (a *Assistant) withFollowUp(reply string) string {
	if reply == "" {
		return reply
	}
	lower := strings.ToLower(reply)
	if strings.Contains(reply, "?") || strings.Contains(lower, "would you like") {
		return reply
	}
	return reply + " " + followUps[rand.Intn(len(followUps))]
}

// canned produces the local fallback reply used whenever the remote
// model is unavailable or misbehaves.
func (a *Assistant) canned(text string) string {
	lower := strings.ToLower(text)
	for _, greeting := range []string{"hello", "hi ", "hey", "good morning", "good evening"} {
		if strings.HasPrefix(lower, greeting) || lower == strings.TrimSpace(greeting) {
			return "Hello! I'm your home assistant. I can control lights, climate and more - please configure my cloud connection to unlock full conversations."
		}
	}
	return "I'm having trouble reaching my assistant service right now. Please try again in a moment."
}
