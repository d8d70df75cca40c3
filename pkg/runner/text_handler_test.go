package runner

import (
	"bytes"
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/abacus/pkg/domain"
)

func TestTextHandler_Output(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf)

	rec := &domain.Evaluation{Expression: "1 + 1", Result: "2"}
	if err := handler.Output(context.Background(), rec, nil); err != nil {
		t.Fatalf("Output failed: %v", err)
	}
	if err := handler.Output(context.Background(), nil, errors.New("division by zero")); err != nil {
		t.Fatalf("Output failed: %v", err)
	}

	expected := "= 2\nerror: division by zero\n"
	if outBuf.String() != expected {
		t.Errorf("Expected %q, got %q", expected, outBuf.String())
	}
}

func TestTextHandler_Highlight(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader(""), outBuf, WithTextHandlerHighlight(func(line string, failed bool) string {
		if failed {
			return "!" + line
		}
		return "*" + line
	}))

	handler.Output(context.Background(), &domain.Evaluation{Result: "6"}, nil)
	handler.Output(context.Background(), nil, errors.New("boom"))

	if got := outBuf.String(); got != "*= 6\n!error: boom\n" {
		t.Errorf("unexpected output %q", got)
	}
}

func TestTextHandler_Input(t *testing.T) {
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("  my user input \nsecond"), outBuf)

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "my user input" {
		t.Errorf("Expected 'my user input', got '%s'", val)
	}

	// Last line without newline is still delivered.
	val, err = handler.Input(context.Background())
	if err != nil || val != "second" {
		t.Fatalf("Expected 'second', got %q (%v)", val, err)
	}

	if _, err := handler.Input(context.Background()); !errors.Is(err, io.EOF) {
		t.Errorf("Expected EOF, got %v", err)
	}

	// Verify Prompt was written for each read
	if prompt := outBuf.String(); prompt != "> > > " {
		t.Errorf("Expected three prompts, got '%s'", prompt)
	}
}

func TestTextHandler_InputSanitizes(t *testing.T) {
	t.Setenv(EnvMaxInputSize, "5")
	outBuf := &bytes.Buffer{}
	handler := NewTextHandler(strings.NewReader("1+1+1+1\n1\x1b+1\n"), outBuf, WithTextHandlerPrompt(""))

	val, err := handler.Input(context.Background())
	if err != nil {
		t.Fatalf("Input failed: %v", err)
	}
	if val != "1+1" {
		t.Errorf("Expected control characters stripped, got %q", val)
	}
	if !strings.Contains(outBuf.String(), "Please try again") {
		t.Errorf("Expected retry message, got %q", outBuf.String())
	}
}

func TestTextHandler_InputCancel(t *testing.T) {
	pr, pw := io.Pipe()
	defer pw.Close()
	handler := NewTextHandler(pr, io.Discard)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := handler.Input(ctx)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("Expected context.Canceled, got %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Input did not return after cancel")
	}
}

func TestTextHandler_History(t *testing.T) {
	list := []domain.Evaluation{
		{Expression: "1 / 0", Error: "division by zero", CreatedAt: time.Now()},
		{Expression: "2 * 3", Result: "6", Kind: "int", CreatedAt: time.Now()},
	}

	t.Run("plain", func(t *testing.T) {
		outBuf := &bytes.Buffer{}
		handler := NewTextHandler(nil, outBuf)
		if err := handler.History(context.Background(), list); err != nil {
			t.Fatal(err)
		}
		expected := "1 / 0  error: division by zero\n2 * 3 = 6\n"
		if outBuf.String() != expected {
			t.Errorf("Expected %q, got %q", expected, outBuf.String())
		}
	})

	t.Run("rendered", func(t *testing.T) {
		outBuf := &bytes.Buffer{}
		var markdown string
		handler := NewTextHandler(nil, outBuf, WithTextHandlerRenderer(func(s string) (string, error) {
			markdown = s
			return "TABLE\n", nil
		}))
		if err := handler.History(context.Background(), list); err != nil {
			t.Fatal(err)
		}
		if outBuf.String() != "TABLE\n" {
			t.Errorf("Expected rendered output, got %q", outBuf.String())
		}
		if !strings.Contains(markdown, "| 2 | `2 * 3` | `6` | int |") {
			t.Errorf("Unexpected markdown %q", markdown)
		}
		if !strings.Contains(markdown, "**error:** division by zero") {
			t.Errorf("Unexpected markdown %q", markdown)
		}
	})

	t.Run("empty", func(t *testing.T) {
		outBuf := &bytes.Buffer{}
		handler := NewTextHandler(nil, outBuf)
		handler.History(context.Background(), nil)
		if !strings.Contains(outBuf.String(), "history is empty") {
			t.Errorf("unexpected output %q", outBuf.String())
		}
	})
}
