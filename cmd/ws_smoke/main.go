package main

import (
	"bytes"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"time"

	"alchemy_webapp/internal/domain"
	"alchemy_webapp/internal/logger"
	"alchemy_webapp/internal/telegram"
	"alchemy_webapp/internal/ws"

	"github.com/gorilla/websocket"
)

// ws_smoke логинит двух пользователей через /api/auth, подключает B к /ws
// и проверяет, что подарок света от A приходит B событием light_received.
func main() {
	addr := flag.String("addr", "127.0.0.1:8080", "server host:port")
	flag.Parse()

	logger.Init("info", false)

	// в DEV_MODE сервер примет любую подпись
	botToken := os.Getenv("BOT_TOKEN")

	tokenA := login(*addr, botToken, 3001, "smokeA")
	tokenB := login(*addr, botToken, 3002, "smokeB")

	wsURL := fmt.Sprintf("ws://%s/ws?token=%s", *addr, url.QueryEscape(tokenB))
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		logger.Fatal("dial ws", "error", err)
	}
	defer conn.Close()

	if _, ok := waitFor(conn, ws.MsgReady, 2*time.Second); !ok {
		logger.Fatal("no ready message from server")
	}

	body, _ := json.Marshal(map[string]int64{"to_user_id": 3002, "amount": 1})
	resp := post(*addr, "/api/light/send", tokenA, body)
	logger.Info("light sent", "response", string(resp))

	event, ok := waitFor(conn, domain.EventLightReceived, 3*time.Second)
	if !ok {
		logger.Fatal("light_received event not delivered")
	}
	logger.Info("B got event", "event", string(event))
	logger.Info("smoke test finished")
}

func login(addr, botToken string, id int64, username string) string {
	user, _ := json.Marshal(map[string]any{"id": id, "first_name": username, "username": username})
	initData := telegram.SignInitData(url.Values{
		"user":      {string(user)},
		"auth_date": {strconv.FormatInt(time.Now().Unix(), 10)},
	}, botToken)

	body, _ := json.Marshal(map[string]string{"init_data": initData})
	var res struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(post(addr, "/api/auth", "", body), &res); err != nil || res.Token == "" {
		logger.Fatal("auth failed", "user_id", id, "error", err)
	}
	return res.Token
}

func post(addr, path, token string, body []byte) []byte {
	req, err := http.NewRequest(http.MethodPost, "http://"+addr+path, bytes.NewReader(body))
	if err != nil {
		logger.Fatal("build request", "error", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		logger.Fatal("request failed", "path", path, "error", err)
	}
	defer resp.Body.Close()

	var buf bytes.Buffer
	_, _ = buf.ReadFrom(resp.Body)
	if resp.StatusCode != http.StatusOK {
		logger.Fatal("unexpected status", "path", path, "status", resp.StatusCode, "body", buf.String())
	}
	return buf.Bytes()
}

// waitFor читает сообщения до нужного типа или таймаута
func waitFor(conn *websocket.Conn, typ string, timeout time.Duration) ([]byte, bool) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		_ = conn.SetReadDeadline(deadline)
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return nil, false
		}
		var env ws.Envelope
		if json.Unmarshal(msg, &env) == nil && env.Type == typ {
			return msg, true
		}
	}
	return nil, false
}
