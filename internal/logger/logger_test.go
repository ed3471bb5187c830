package logger

import (
	"bytes"
	"errors"
	"strings"
	"testing"
	"time"
)

type fakeSink struct {
	sent chan string
}

func (f *fakeSink) SendMessage(chatID int64, text string) error {
	f.sent <- text
	return nil
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "warn", "text")
	t.Cleanup(func() { Init("info", "text") })

	Info("hidden")
	Error("shown", "song_id", "abc")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info record written at warn level:\n%s", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "song_id=abc") {
		t.Errorf("error record missing:\n%s", out)
	}
}

func TestJSONFormat(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "json")
	t.Cleanup(func() { Init("info", "text") })

	Success("saved", "title", "Bésame")

	out := buf.String()
	for _, want := range []string{`"msg":"saved"`, `"success":true`, `"title":"Bésame"`} {
		if !strings.Contains(out, want) {
			t.Errorf("output %q should contain %q", out, want)
		}
	}
}

func TestSink(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "debug", "text")
	sink := &fakeSink{sent: make(chan string, 1)}
	SetSink(sink, 42)
	t.Cleanup(func() {
		SetSink(nil, 0)
		Init("info", "text")
	})

	Debug("render", "format", "html")

	select {
	case msg := <-sink.sent:
		if !strings.Contains(msg, "DEBUG") || !strings.Contains(msg, "render") || !strings.Contains(msg, "format: html") {
			t.Errorf("unexpected sink message %q", msg)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("sink never received the log line")
	}
}

func TestLogWithErr(t *testing.T) {
	var buf bytes.Buffer
	InitWithWriter(&buf, "info", "text")
	t.Cleanup(func() { Init("info", "text") })

	if err := LogWithErr("ok", nil); err != nil {
		t.Errorf("LogWithErr(nil) = %v", err)
	}

	cause := errors.New("boom")
	err := LogWithErr("save song", cause)
	if !errors.Is(err, cause) {
		t.Errorf("wrapped error %v should unwrap to cause", err)
	}
	if !strings.Contains(err.Error(), "save song") {
		t.Errorf("error %q should carry the message", err)
	}
}
