package thumbnail

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

// BotFetcher downloads Telegram files over the bot file-delivery endpoint.
type BotFetcher struct {
	bot    *tgbotapi.BotAPI
	client *http.Client
}

// NewBotFetcher creates a fetcher over an authorized bot connection.
func NewBotFetcher(bot *tgbotapi.BotAPI) *BotFetcher {
	return &BotFetcher{
		bot:    bot,
		client: http.DefaultClient,
	}
}

// Fetch resolves the file's download URL and streams it into a temporary
// file with the given suffix. The caller removes the file when done.
func (f *BotFetcher) Fetch(ctx context.Context, fileID, suffix string) (string, error) {
	url, err := f.bot.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("resolve file url: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return "", err
	}
	resp, err := f.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("download file: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download file: unexpected status %d", resp.StatusCode)
	}

	tmp, err := os.CreateTemp("", "teleclip-*"+suffix)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(tmp, resp.Body); err != nil {
		_ = tmp.Close()
		_ = os.Remove(tmp.Name())
		return "", fmt.Errorf("write temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
