package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"
)

// Apology is returned whenever the completion API cannot answer.
const Apology = "I apologize, but I'm having trouble processing your request. " +
	"Please try again or consult a medical professional for immediate assistance."

// SystemPrompt frames every forwarded question.
const SystemPrompt = "You are a medical assistant chatbot. Provide helpful, accurate medical information " +
	"while emphasizing that you are not a substitute for professional medical advice. " +
	"For serious conditions, always recommend seeking professional medical help."

// Completer answers free text with a chat completion.
type Completer interface {
	Complete(ctx context.Context, system, message string) (string, error)
}

// Relay answers from the knowledge table first and falls back to a Completer.
// It keeps no state between messages.
type Relay struct {
	knowledge Knowledge
	completer Completer
	log       *zap.Logger
}

func NewRelay(knowledge Knowledge, completer Completer, log *zap.Logger) *Relay {
	return &Relay{knowledge: knowledge, completer: completer, log: log}
}

// Respond never fails: completion errors become Apology.
func (r *Relay) Respond(ctx context.Context, message string) string {
	if answer, ok := r.knowledge.Lookup(message); ok {
		return answer
	}

	reply, err := r.completer.Complete(ctx, SystemPrompt, message)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = ErrEmptyReply
	}
	if err != nil {
		r.log.Warn("chat completion failed", zap.Error(err))
		return Apology
	}
	return reply
}
