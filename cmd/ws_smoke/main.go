package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/websocket"
)

// Smoke test against a running server: two players register, pair, connect
// over websocket and the first player rolls.
func main() {
	port := os.Getenv("APP_PORT")
	if port == "" {
		port = "8008"
	}
	// use 127.0.0.1 to prefer IPv4 (avoid resolving to [::1])
	base := "127.0.0.1:" + port
	suffix := fmt.Sprintf("%d", time.Now().UnixNano()%100000)

	post := func(path string, body any) map[string]any {
		b, _ := json.Marshal(body)
		res, err := http.Post("http://"+base+path, "application/json", bytes.NewReader(b))
		if err != nil {
			log.Fatalf("%s: %v", path, err)
		}
		defer res.Body.Close()
		var out map[string]any
		_ = json.NewDecoder(res.Body).Decode(&out)
		if res.StatusCode != http.StatusOK {
			log.Fatalf("%s: status %d: %v", path, res.StatusCode, out)
		}
		return out
	}

	nickA, nickB := "smokeA"+suffix, "smokeB"+suffix
	tokenA := post("/register", map[string]string{"nick": nickA, "password": "pw"})["token"].(string)
	tokenB := post("/register", map[string]string{"nick": nickB, "password": "pw"})["token"].(string)

	game := post("/join", map[string]any{"group": 99, "nick": nickA, "password": "pw", "size": 7})["game"].(string)
	post("/join", map[string]any{"group": 99, "nick": nickB, "password": "pw", "size": 7})
	log.Printf("paired in game %s", game)

	dialer := websocket.DefaultDialer
	connA, _, err := dialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s&game=%s", base, tokenA, game), nil)
	if err != nil {
		log.Fatalf("dial A: %v", err)
	}
	defer connA.Close()

	connB, _, err := dialer.Dial(fmt.Sprintf("ws://%s/ws?token=%s&game=%s", base, tokenB, game), nil)
	if err != nil {
		log.Fatalf("dial B: %v", err)
	}
	defer connB.Close()

	readUpdate := func(conn *websocket.Conn, name string) map[string]any {
		conn.SetReadDeadline(time.Now().Add(3 * time.Second))
		var msg struct {
			Type    string         `json:"type"`
			Payload map[string]any `json:"payload"`
		}
		if err := conn.ReadJSON(&msg); err != nil {
			log.Fatalf("%s read: %v", name, err)
		}
		log.Printf("%s got %s: %v", name, msg.Type, msg.Payload)
		return msg.Payload
	}

	snap := readUpdate(connA, "A")
	readUpdate(connB, "B")

	first := connA
	if snap["turn"] == nickB {
		first = connB
	}
	if err := first.WriteJSON(map[string]string{"type": "roll"}); err != nil {
		log.Fatalf("write roll: %v", err)
	}

	readUpdate(connA, "A")
	readUpdate(connB, "B")

	log.Println("smoke test finished")
}
