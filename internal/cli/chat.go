package cli

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Veraticus/medicoder/internal/engine"
)

// Conversation is the dialogue the chat loop drives.
type Conversation interface {
	Start() engine.Reply
	Handle(ctx context.Context, input string) (engine.Reply, error)
}

// Chat runs a conversation over line-oriented input and output.
type Chat struct {
	conversation Conversation
	reader       *NonBlockingReader
	out          io.Writer
}

// NewChat creates a chat loop reading from in and writing to out.
func NewChat(conversation Conversation, in io.Reader, out io.Writer) *Chat {
	return &Chat{
		conversation: conversation,
		reader:       NewNonBlockingReader(in),
		out:          out,
	}
}

// Run greets the user and processes lines until the conversation ends, input
// runs out or ctx is canceled.
func (c *Chat) Run(ctx context.Context) error {
	c.println(FormatTitle("Medical Coding Assistant"))
	c.show(c.conversation.Start())

	for {
		c.print(FormatPrompt("You"))

		line, err := c.reader.ReadLine(ctx)
		switch {
		case errors.Is(err, ErrInputCancelled):
			return nil
		case errors.Is(err, io.EOF):
			c.println("\n" + FormatInfo("Input stream ended. Exiting..."))
			return nil
		case err != nil:
			return fmt.Errorf("failed to read input: %w", err)
		}

		reply, err := c.conversation.Handle(ctx, line)
		if err != nil {
			return fmt.Errorf("conversation failed: %w", err)
		}
		c.show(reply)
		if reply.Done {
			return nil
		}
	}
}

func (c *Chat) show(reply engine.Reply) {
	for _, message := range reply.Messages {
		c.println(FormatAssistant(message) + "\n")
	}
}

func (c *Chat) print(s string) {
	_, _ = fmt.Fprint(c.out, s)
}

func (c *Chat) println(s string) {
	_, _ = fmt.Fprintln(c.out, s)
}
