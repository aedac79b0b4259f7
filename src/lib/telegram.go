package lib

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
)

// TelegramSendMessage posts to the Telegram bot sendMessage endpoint. No
// client library is used since the surface is a single JSON POST.
func TelegramSendMessage(chatId string, message string) error {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	if token == "" {
		return fmt.Errorf("TELEGRAM_BOT_TOKEN is not set")
	}
	url := fmt.Sprintf("https://api.telegram.org/bot%s/sendMessage", token)
	body, err := json.Marshal(map[string]string{
		"chat_id": chatId,
		"text":    message,
	})
	if err != nil {
		return err
	}
	res, err := http.Post(url, "application/json", bytes.NewReader(body))
	if err != nil {
		log.Printf("Error sending telegram message: %s\n", err.Error())
		return err
	}
	defer res.Body.Close()
	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("telegram API responded with status %d", res.StatusCode)
	}
	return nil
}
