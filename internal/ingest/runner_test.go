package ingest

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

func newTestBot(t *testing.T) *tgbotapi.BotAPI {
	t.Helper()
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch {
		case strings.HasSuffix(r.URL.Path, "/getMe"):
			fmt.Fprint(w, `{"ok":true,"result":{"id":1,"is_bot":true,"first_name":"clips","username":"clipsbot"}}`)
		default:
			fmt.Fprint(w, `{"ok":true,"result":[]}`)
		}
	}))
	t.Cleanup(api.Close)

	bot, err := tgbotapi.NewBotAPIWithClient("test-token", api.URL+"/bot%s/%s", api.Client())
	if err != nil {
		t.Fatalf("NewBotAPIWithClient: %v", err)
	}
	return bot
}

func TestRunnerStopAfterStart(t *testing.T) {
	bot := newTestBot(t)
	resolver := &stubResolver{dir: t.TempDir()}
	h := newTestHandler(t, false, resolver, &stubBlobs{}, &stubVideos{}, nil)

	runner := NewRunner(nil, bot, h)
	runner.Start(context.Background())
	runner.Stop()

	// Give the poll goroutine time to observe the shutdown; a second
	// close of the bot's shutdown channel would panic here.
	time.Sleep(100 * time.Millisecond)
}

func TestRunnerStopIsIdempotent(t *testing.T) {
	bot := newTestBot(t)
	resolver := &stubResolver{dir: t.TempDir()}
	h := newTestHandler(t, false, resolver, &stubBlobs{}, &stubVideos{}, nil)

	runner := NewRunner(nil, bot, h)
	runner.Start(context.Background())
	runner.Stop()
	runner.Stop()
}
