package assistant

import (
	"context"

	"github.com/argentmirror/argent-core/internal/assistant/dispatch"
	"github.com/argentmirror/argent-core/internal/assistant/intent"
	"github.com/argentmirror/argent-core/internal/infrastructure/logging"
)

// Default pipeline tuning, used when configuration supplies zeroes.
const (
	// DefaultConfidenceThreshold is the parser confidence above which a
	// command is dispatched locally without consulting the model.
	DefaultConfidenceThreshold = 0.8
)

// Reply sources.
const (
	// SourceIntent marks replies produced by the local pipeline.
	SourceIntent = "intent"

	// SourceFallback marks replies produced by the conversational model.
	SourceFallback = "fallback"
)

// Fallback is the conversational path for low-confidence input.
// Satisfied by the llm assistant.
type Fallback interface {
	Ask(ctx context.Context, text string) string
}

// Reply is the pipeline's answer to one command.
type Reply struct {
	// Text is the natural-language response to speak and display.
	Text string `json:"text"`

	// Source records which path produced the reply.
	Source string `json:"source"`

	// Action is the recognised action, ActionUnknown on the fallback path.
	Action intent.Action `json:"action"`

	// Outcome is the dispatch outcome; empty on the fallback path.
	Outcome dispatch.Outcome `json:"outcome,omitempty"`

	// Changed counts mutated devices on the local path.
	Changed int `json:"changed"`
}

// CommandObserver is invoked after every handled command, for metrics.
type CommandObserver func(action string, source string, changed int)

// Service routes commands between the local pipeline and the fallback.
type Service struct {
	parser     *intent.Parser
	dispatcher *dispatch.Dispatcher
	fallback   Fallback
	log        *logging.Logger
	threshold  float64
	observe    CommandObserver
}

// New creates the pipeline service. threshold is the minimum parser
// confidence for local dispatch; zero selects the default.
func New(parser *intent.Parser, dispatcher *dispatch.Dispatcher, fallback Fallback, log *logging.Logger, threshold float64) *Service {
	if threshold <= 0 {
		threshold = DefaultConfidenceThreshold
	}
	if log == nil {
		log = logging.Default()
	}
	return &Service{
		parser:     parser,
		dispatcher: dispatcher,
		fallback:   fallback,
		log:        log,
		threshold:  threshold,
	}
}

// SetObserver installs the per-command metrics hook.
func (s *Service) SetObserver(observe CommandObserver) {
	s.observe = observe
}

// Handle processes one command end to end and always produces a reply.
func (s *Service) Handle(ctx context.Context, text string) Reply {
	parsed := s.parser.Parse(text)

	if parsed.Action != intent.ActionUnknown && parsed.Confidence > s.threshold {
		result := s.dispatcher.Execute(ctx, parsed.Action, parsed.Params)

		reply := Reply{
			Text:    result.Response,
			Source:  SourceIntent,
			Action:  parsed.Action,
			Outcome: result.Outcome,
			Changed: result.Changed,
		}
		s.emit(reply)
		return reply
	}

	s.log.Debug("falling back to conversational model",
		"confidence", parsed.Confidence,
		"action", string(parsed.Action),
	)

	reply := Reply{
		Text:   s.fallback.Ask(ctx, text),
		Source: SourceFallback,
		Action: intent.ActionUnknown,
	}
	s.emit(reply)
	return reply
}

func (s *Service) emit(reply Reply) {
	if s.observe != nil {
		s.observe(string(reply.Action), reply.Source, reply.Changed)
	}
}
