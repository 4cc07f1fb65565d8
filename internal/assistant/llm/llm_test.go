package llm

import (
	"context"
	"errors"
	"strings"
	"testing"

	openai "github.com/sashabaranov/go-openai"

	"github.com/argentmirror/argent-core/internal/home"
	"github.com/argentmirror/argent-core/internal/infrastructure/config"
)

// fakeChat implements chatClient with a scripted response.
type fakeChat struct {
	resp     openai.ChatCompletionResponse
	err      error
	requests []openai.ChatCompletionRequest
}

func (f *fakeChat) CreateChatCompletion(_ context.Context, req openai.ChatCompletionRequest) (openai.ChatCompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return openai.ChatCompletionResponse{}, f.err
	}
	return f.resp, nil
}

// fakeHome implements Home with a single light.
type fakeHome struct {
	rooms  []*home.Room
	writes []string
}

func (f *fakeHome) Rooms() []*home.Room { return f.rooms }

func (f *fakeHome) RoomNames() []string {
	names := make([]string, len(f.rooms))
	for i, r := range f.rooms {
		names[i] = r.Name
	}
	return names
}

func (f *fakeHome) UpdateDevice(_ context.Context, deviceID string, _ home.StateChange) error {
	f.writes = append(f.writes, deviceID)
	return nil
}

func testHome() *fakeHome {
	return &fakeHome{
		rooms: []*home.Room{
			{
				ID:   "room-living",
				Name: "Living Room",
				Devices: []home.Device{
					{ID: "d1", Name: "Ceiling Light", Type: home.DeviceTypeLight, On: false},
				},
			},
		},
	}
}

func testAssistant(chat chatClient) (*Assistant, *fakeHome) {
	h := testHome()
	a := New(config.LLMConfig{Enabled: true, APIKey: "test", Model: "test-model"}, h, nil, 0)
	a.client = chat
	return a, h
}

func textResponse(content string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role:    openai.ChatMessageRoleAssistant,
				Content: content,
			},
		}},
	}
}

func toolResponse(arguments string) openai.ChatCompletionResponse {
	return openai.ChatCompletionResponse{
		Choices: []openai.ChatCompletionChoice{{
			Message: openai.ChatCompletionMessage{
				Role: openai.ChatMessageRoleAssistant,
				ToolCalls: []openai.ToolCall{{
					Type: openai.ToolTypeFunction,
					Function: openai.FunctionCall{
						Name:      controlFunctionName,
						Arguments: arguments,
					},
				}},
			},
		}},
	}
}

func TestAsk_ErrorProducesCannedReply(t *testing.T) {
	a, _ := testAssistant(&fakeChat{err: errors.New("connection refused: 10.0.0.5:443")})

	reply := a.Ask(context.Background(), "what's the weather like")

	if reply == "" {
		t.Fatal("Ask returned empty reply on error")
	}
	if strings.Contains(reply, "connection refused") || strings.Contains(reply, "10.0.0.5") {
		t.Errorf("reply leaked the raw error: %q", reply)
	}
}

func TestAsk_GreetingFallback(t *testing.T) {
	a := New(config.LLMConfig{}, testHome(), nil, 0)

	if a.Enabled() {
		t.Fatal("assistant without credentials should be disabled")
	}

	reply := a.Ask(context.Background(), "hello there")
	if !strings.Contains(strings.ToLower(reply), "hello") {
		t.Errorf("greeting reply = %q, want a greeting", reply)
	}
}

func TestAsk_PlainReply(t *testing.T) {
	a, _ := testAssistant(&fakeChat{resp: textResponse("The living room light is off.")})

	reply := a.Ask(context.Background(), "is the light on?")
	if !strings.Contains(reply, "The living room light is off.") {
		t.Errorf("reply = %q", reply)
	}
}

func TestAsk_SkipsFollowUpOnQuestions(t *testing.T) {
	a, _ := testAssistant(&fakeChat{resp: textResponse("Would you like the light on?")})

	reply := a.Ask(context.Background(), "hmm")
	if reply != "Would you like the light on?" {
		t.Errorf("reply = %q, want no appended follow-up", reply)
	}
}

func TestAsk_ControlCall(t *testing.T) {
	chat := &fakeChat{resp: toolResponse(`{"action":"turn_on","device_type":"light","room":"living room"}`)}
	a, h := testAssistant(chat)

	reply := a.Ask(context.Background(), "make it bright in here")

	if len(h.writes) != 1 || h.writes[0] != "d1" {
		t.Fatalf("writes = %v, want [d1]", h.writes)
	}
	if !strings.Contains(reply, "✅") {
		t.Errorf("reply = %q, want per-device outcome lines", reply)
	}
	if !strings.Contains(reply, "Ceiling Light") {
		t.Errorf("reply = %q, want device name", reply)
	}
}

func TestAsk_ControlCall_AlreadyInState(t *testing.T) {
	chat := &fakeChat{resp: toolResponse(`{"action":"turn_off","device_type":"light"}`)}
	a, h := testAssistant(chat)

	reply := a.Ask(context.Background(), "lights off please")

	if len(h.writes) != 0 {
		t.Errorf("writes = %v, want none for already-off device", h.writes)
	}
	if !strings.Contains(reply, "already off") {
		t.Errorf("reply = %q, want already-off narration", reply)
	}
}

func TestAsk_ControlCall_NoMatches(t *testing.T) {
	chat := &fakeChat{resp: toolResponse(`{"action":"turn_on","device_type":"sauna"}`)}
	a, _ := testAssistant(chat)

	reply := a.Ask(context.Background(), "turn on the sauna")
	if !strings.Contains(reply, "couldn't find") {
		t.Errorf("reply = %q, want couldn't-find phrasing", reply)
	}
}

func TestAsk_ControlCall_RoomThresholdConfigured(t *testing.T) {
	// "livng rom" misses "Living Room" by two edits, scoring around
	// 0.82: close enough for the default threshold, not for a strict
	// one.
	args := `{"action":"turn_on","device_type":"light","room":"livng rom"}`

	t.Run("default threshold resolves", func(t *testing.T) {
		chat := &fakeChat{resp: toolResponse(args)}
		h := testHome()
		a := New(config.LLMConfig{Enabled: true, APIKey: "test"}, h, nil, 0)
		a.client = chat

		a.Ask(context.Background(), "lights on in the livng rom")
		if len(h.writes) != 1 || h.writes[0] != "d1" {
			t.Errorf("writes = %v, want [d1]", h.writes)
		}
	})

	t.Run("strict threshold rejects", func(t *testing.T) {
		chat := &fakeChat{resp: toolResponse(args)}
		h := testHome()
		a := New(config.LLMConfig{Enabled: true, APIKey: "test"}, h, nil, 0.9)
		a.client = chat

		reply := a.Ask(context.Background(), "lights on in the livng rom")
		if len(h.writes) != 0 {
			t.Errorf("writes = %v, want none below threshold", h.writes)
		}
		if !strings.Contains(reply, "couldn't find") {
			t.Errorf("reply = %q, want couldn't-find phrasing", reply)
		}
	})
}

func TestAsk_ControlCall_MalformedArguments(t *testing.T) {
	chat := &fakeChat{resp: toolResponse(`{"action":`)}
	a, _ := testAssistant(chat)

	reply := a.Ask(context.Background(), "turn on the lights")
	if reply == "" {
		t.Fatal("Ask returned empty reply for malformed tool call")
	}
	if strings.Contains(reply, "unexpected end") {
		t.Errorf("reply leaked a JSON parse error: %q", reply)
	}
}

func TestAsk_HistoryBounded(t *testing.T) {
	chat := &fakeChat{resp: textResponse("Sure thing?")}
	h := testHome()
	a := New(config.LLMConfig{Enabled: true, APIKey: "test", HistoryTurns: 2}, h, nil, 0)
	a.client = chat

	for i := 0; i < 10; i++ {
		a.Ask(context.Background(), "and another thing")
	}

	// 2 turns = 4 messages, plus system prompt and the new user turn.
	last := chat.requests[len(chat.requests)-1]
	if len(last.Messages) > 6 {
		t.Errorf("request carried %d messages, want at most 6", len(last.Messages))
	}
	if last.Messages[0].Role != openai.ChatMessageRoleSystem {
		t.Errorf("first message role = %q, want system", last.Messages[0].Role)
	}
}

func TestSystemPromptListsDevices(t *testing.T) {
	a, _ := testAssistant(&fakeChat{resp: textResponse("ok?")})

	prompt := a.systemPrompt()
	if !strings.Contains(prompt, "Living Room") || !strings.Contains(prompt, "Ceiling Light") {
		t.Errorf("system prompt missing inventory:\n%s", prompt)
	}
}
