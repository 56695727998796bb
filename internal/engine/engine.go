// Package engine implements the dialogue state machine that walks a user from
// patient intake through code confirmation to a finished claim.
package engine

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"unicode"

	"github.com/Veraticus/medicoder/internal/catalog"
	"github.com/Veraticus/medicoder/internal/matcher"
	"github.com/Veraticus/medicoder/internal/model"
)

// Reply is what one turn produced for the user.
type Reply struct {
	Stage    model.Stage
	Messages []string
	Done     bool
}

// Text joins the reply's messages into one block.
func (r Reply) Text() string {
	return strings.Join(r.Messages, "\n\n")
}

// Options holds the collaborators an Engine needs. Recorder is optional.
type Options struct {
	Generator Generator
	Catalog   *catalog.Catalog
	Extractor Extractor
	Assembler Assembler
	Recorder  ClaimRecorder
	Logger    *slog.Logger
	Threshold int
}

type handlerFunc func(e *Engine, t *turn, input string) error

// Engine owns one conversation. Turns are serialized.
type Engine struct {
	generator Generator
	catalog   *catalog.Catalog
	extractor Extractor
	assembler Assembler
	recorder  ClaimRecorder
	logger    *slog.Logger
	state     *model.ConversationState
	handlers  map[model.Stage]handlerFunc
	threshold int
	mu        sync.Mutex
}

// turn carries the state a handler may mutate and collects its output.
type turn struct {
	ctx      context.Context
	state    *model.ConversationState
	messages []string
}

// New creates an engine positioned at the greeting. Call Start to open the conversation.
func New(opts Options) *Engine {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	cat := opts.Catalog
	if cat == nil {
		cat = catalog.New(nil, nil)
	}
	threshold := opts.Threshold
	if threshold <= 0 {
		threshold = matcher.DefaultThreshold
	}

	return &Engine{
		generator: opts.Generator,
		catalog:   cat,
		extractor: opts.Extractor,
		assembler: opts.Assembler,
		recorder:  opts.Recorder,
		logger:    logger,
		threshold: threshold,
		state:     model.NewConversationState(),
		handlers: map[model.Stage]handlerFunc{
			model.StageGreeting:                (*Engine).handleGreeting,
			model.StageCollectingPatientInfo:   (*Engine).handlePatientInfo,
			model.StageCollectingClinicalNotes: (*Engine).handleClinicalNotes,
			model.StageConfirmingCodes:         (*Engine).handleConfirmCodes,
			model.StageReviewingClaim:          (*Engine).handleReviewClaim,
			model.StagePostClaimMenu:           (*Engine).handlePostClaimMenu,
			model.StageCollectingSummary:       (*Engine).handleSummary,
			model.StageCodeLookup:              (*Engine).handleCodeLookup,
			model.StageProcessingDocument:      (*Engine).handleDocument,
			model.StageLearning:                (*Engine).handleLearning,
		},
	}
}

// Start seeds the transcript with the persona and greeting.
func (e *Engine) Start() Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.start()
}

func (e *Engine) start() Reply {
	e.state.AddMessage(model.RoleSystem, personaPrompt)
	e.state.AddMessage(model.RoleAssistant, greetingMessage)
	return Reply{Messages: []string{greetingMessage}, Stage: e.state.Stage}
}

// Reset discards the conversation and opens a fresh one.
func (e *Engine) Reset() Reply {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.state = model.NewConversationState()
	return e.start()
}

// State returns a copy of the current conversation state.
func (e *Engine) State() *model.ConversationState {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.Clone()
}

// Handle processes one line of user input. The only error it returns is
// model.ErrUnknownStage; every other failure becomes an assistant message.
func (e *Engine) Handle(ctx context.Context, input string) (Reply, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	input = strings.TrimSpace(input)
	if input == "" {
		return Reply{Messages: []string{emptyInput}, Stage: e.state.Stage}, nil
	}
	if matchesChoice(strings.ToLower(input), exitWords) {
		return Reply{Messages: []string{goodbye}, Stage: e.state.Stage, Done: true}, nil
	}

	handler, ok := e.handlers[e.state.Stage]
	if !ok {
		return Reply{Stage: e.state.Stage}, fmt.Errorf("%w: %q", model.ErrUnknownStage, e.state.Stage)
	}

	e.state.AddMessage(model.RoleUser, input)
	snapshot := e.state.Clone()

	t := &turn{ctx: ctx, state: e.state}
	if err := handler(e, t, input); err != nil {
		e.logger.Warn("Turn failed",
			"stage", snapshot.Stage,
			"error", err)
		e.state = snapshot
		e.state.AddMessage(model.RoleAssistant, turnError)
		return Reply{Messages: []string{turnError}, Stage: e.state.Stage}, nil
	}

	return Reply{Messages: t.messages, Stage: e.state.Stage}, nil
}

// say appends an assistant turn and shows it to the user.
func (t *turn) say(text string) {
	t.state.AddMessage(model.RoleAssistant, text)
	t.messages = append(t.messages, text)
}

func (t *turn) sayf(format string, args ...any) {
	t.say(fmt.Sprintf(format, args...))
}

// generate sends the transcript plus instruction to the generator and records
// the reply as an assistant turn. On failure an apology is recorded and shown
// instead, and ok is false.
func (e *Engine) generate(t *turn, instruction string, show bool) (string, bool) {
	messages := make([]model.Message, 0, len(t.state.History)+1)
	messages = append(messages, t.state.History...)
	if instruction != "" {
		messages = append(messages, model.Message{Role: model.RoleSystem, Content: instruction})
	}

	if e.generator == nil {
		text := fmt.Sprintf(generateError, "no text generator configured")
		t.say(text)
		return text, false
	}

	text, err := e.generator.Generate(t.ctx, messages)
	if err != nil {
		e.logger.Warn("Text generation failed",
			"stage", t.state.Stage,
			"error", err)
		text = fmt.Sprintf(generateError, err)
		t.say(text)
		return text, false
	}

	if show {
		t.say(text)
	} else {
		t.state.AddMessage(model.RoleAssistant, text)
	}
	return text, true
}

// matchesChoice reports whether input is exactly one of choices.
func matchesChoice(input string, choices []string) bool {
	for _, c := range choices {
		if input == c {
			return true
		}
	}
	return false
}

// minStemLength is the shortest phrase word that also matches its inflections
// ("confirm" matches "confirmed"). Shorter words such as "no" and "ok" must
// match whole.
const minStemLength = 4

// containsPhrase reports whether any phrase appears in input as a run of
// words. The last word of a phrase may be a stem of the input word.
func containsPhrase(input string, phrases []string) bool {
	words := splitWords(input)
	for _, phrase := range phrases {
		if phraseAt(words, splitWords(phrase)) {
			return true
		}
	}
	return false
}

func splitWords(s string) []string {
	s = strings.ReplaceAll(strings.ToLower(s), "’", "'")
	return strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func phraseAt(words, phrase []string) bool {
	if len(phrase) == 0 {
		return false
	}
	last := len(phrase) - 1
	for i := 0; i+len(phrase) <= len(words); i++ {
		matched := true
		for j, p := range phrase {
			w := words[i+j]
			if j == last && len(p) >= minStemLength {
				matched = strings.HasPrefix(w, p)
			} else {
				matched = w == p
			}
			if !matched {
				break
			}
		}
		if matched {
			return true
		}
	}
	return false
}

func fieldDescriptions(fields []model.EssentialField) string {
	descriptions := make([]string, len(fields))
	for i, f := range fields {
		descriptions[i] = f.Description
	}
	return strings.Join(descriptions, ", ")
}
